package sixel

// paintColumn writes an N-pixel-wide run into the six rows of the current
// band according to a 6-bit mask, leaving rows whose bit is unset
// untouched. This is the decoder's one performance-critical hot path:
// everything else in the parser is a straightforward byte-at-a-time state
// machine, but this routine runs once per sixel data byte times its
// repeat count, so it is kept allocation-free and delegates the innermost
// fill to an architecture-specific implementation (see span_wide.go /
// span_generic.go) behind the single fillPixels entry point.
func (c *canvas) paintColumn(mask uint8, n int, color rgba) {
	if n <= 0 {
		return
	}
	baseY := c.band * bandHeight
	xOffset := c.x * 4
	for bit := 0; bit < bandHeight; bit++ {
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		row := c.row(baseY + bit)
		fillPixels(row[xOffset:xOffset+n*4], color)
	}
}
