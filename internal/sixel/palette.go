package sixel

// paletteSize is the number of addressable palette entries. Palette
// indices saturate to paletteSize-1.
const paletteSize = 256

// rgba is a packed R,G,B,A pixel; alpha is 0xFF for every opaque palette
// entry and 0x00 only for the reserved fully-transparent value produced by
// an untouched canvas cell.
type rgba struct {
	r, g, b, a uint8
}

var opaqueRGBA = func(r, g, b uint8) rgba { return rgba{r, g, b, 0xFF} }

// vt340Palette holds the sixteen classic VT340 colors as 0-255 RGB bytes,
// as specified by spec.md §6.
var vt340Palette = [16][3]uint8{
	{0, 0, 0},       // 0 Black
	{0, 0, 204},     // 1 Blue
	{204, 0, 0},     // 2 Red
	{0, 204, 0},     // 3 Green
	{204, 0, 204},   // 4 Magenta
	{0, 204, 204},   // 5 Cyan
	{204, 204, 0},   // 6 Yellow
	{128, 128, 128}, // 7 Gray-50
	{128, 128, 128}, // 8 Gray-25 (matches spec.md §6 table exactly)
	{128, 128, 255}, // 9 LightBlue
	{255, 128, 128}, // 10 LightRed
	{128, 255, 128}, // 11 LightGreen
	{255, 128, 255}, // 12 LightMagenta
	{128, 255, 255}, // 13 LightCyan
	{255, 255, 128}, // 14 Yellow-bright
	{255, 255, 255}, // 15 White
}

// palette is a fixed-size, indexable table of RGBA entries paired with a
// denormalized cache that tracks the color currently selected for writes.
// The cache must always agree with table[current] at every point between
// commands; refreshCache() re-establishes that invariant after any store.
type palette struct {
	table   [paletteSize]rgba
	current int
	cache   rgba
}

// newPalette builds the default palette: indices 0-15 are the VT340
// sixteen-color set (spec.md §6), 16-255 are filled by the deterministic
// stopgap rule in spec.md §6 so no index is ever indeterminate.
func newPalette() *palette {
	p := &palette{}
	for i, c := range vt340Palette {
		p.table[i] = opaqueRGBA(c[0], c[1], c[2])
	}
	for i := 16; i < paletteSize; i++ {
		idx := i - 16
		r := uint8((idx & 0x03) * 85)
		g := uint8(((idx >> 2) & 0x07) * 36)
		b := uint8(((idx >> 5) & 0x07) * 36)
		p.table[i] = opaqueRGBA(r, g, b)
	}
	p.current = 0
	p.refreshCache()
	return p
}

// clampIndex saturates a raw palette index (which may exceed paletteSize)
// to a valid table slot.
func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= paletteSize {
		return paletteSize - 1
	}
	return i
}

// refreshCache re-reads table[current] into cache. Every mutation of
// p.current or p.table[p.current] must be followed by this call.
func (p *palette) refreshCache() {
	p.cache = p.table[p.current]
}

// selectIndex sets the current color to the palette entry at i, without
// modifying the table.
func (p *palette) selectIndex(i int) {
	p.current = clampIndex(i)
	p.refreshCache()
}

// setRGBPercent defines table[i] from three 0-100 percent components
// (spec.md §4.5, Pu=2) and makes i the current color.
func (p *palette) setRGBPercent(i, rPct, gPct, bPct int) {
	idx := clampIndex(i)
	p.table[idx] = opaqueRGBA(percentToByte(rPct), percentToByte(gPct), percentToByte(bPct))
	p.current = idx
	p.refreshCache()
}

// setHLS defines table[i] from a DEC HLS triple (spec.md §4.5, Pu=1) and
// makes i the current color.
func (p *palette) setHLS(i, hueDeg, lightPct, satPct int) {
	idx := clampIndex(i)
	r, g, b := hlsToRGB(hueDeg, lightPct, satPct)
	p.table[idx] = opaqueRGBA(r, g, b)
	p.current = idx
	p.refreshCache()
}

// percentToByte clamps a 0-100 percent value and scales it to 0-255,
// rounding to nearest.
func percentToByte(pct int) uint8 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return uint8((pct*255 + 50) / 100)
}

// hlsToRGB converts DEC HLS (hue in degrees with 0=blue per DEC convention,
// lightness and saturation in 0-100 percent) to 0-255 RGB using the
// standard HSL algorithm after rotating the hue by -120 degrees so that
// 0 -> blue, 120 -> red, 240 -> green.
func hlsToRGB(hueDeg, lightPct, satPct int) (r, g, b uint8) {
	if satPct <= 0 {
		gray := percentToByte(lightPct)
		return gray, gray, gray
	}
	// Rotate DEC hue (0=blue) to standard hue (0=red) by adding 240
	// degrees, mirroring the -120 degree rotation described in spec.md.
	hue := ((hueDeg%360)+360+240) % 360
	h := float64(hue) / 360.0
	l := clampPercent(lightPct) / 100.0
	s := clampPercent(satPct) / 100.0

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	rf := hueToChannel(p, q, h+1.0/3.0)
	gf := hueToChannel(p, q, h)
	bf := hueToChannel(p, q, h-1.0/3.0)

	return floatToByte(rf), floatToByte(gf), floatToByte(bf)
}

func clampPercent(pct int) float64 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return float64(pct)
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

func floatToByte(v float64) uint8 {
	scaled := v*255.0 + 0.5
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 255 {
		scaled = 255
	}
	return uint8(scaled)
}
