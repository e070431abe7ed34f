package sixel

const (
	sixelLow  = 0x3F // '?'
	sixelHigh = 0x7E // '~'

	cmdRepeat  = '!'
	cmdColor   = '#'
	cmdRaster  = '"'
	cmdCR      = '$'
	cmdLF      = '-'

	maxRepeat = 32767
)

func isSixelByte(b byte) bool {
	return b >= sixelLow && b <= sixelHigh
}

// bodyParser is the central state machine described in spec.md §4.4. It
// owns the canvas and palette it mutates and is discarded once a decode
// completes.
type bodyParser struct {
	canvas *canvas
	pal    *palette
}

func newBodyParser() *bodyParser {
	return &bodyParser{
		canvas: newCanvas(),
		pal:    newPalette(),
	}
}

// run consumes data byte by byte, dispatching on the command table in
// spec.md §4.4. It returns as soon as it hits a fatal error; any other
// condition (unknown bytes, missing sub-parameters, running off the end of
// data) is tolerated and simply ends the loop successfully.
func (p *bodyParser) run(data []byte) error {
	c := newCursor(data)
	for {
		b, ok := c.peek()
		if !ok {
			return nil
		}
		switch {
		case isSixelByte(b):
			c.advance()
			if err := p.handleSixel(b, 1); err != nil {
				return err
			}
		case b == cmdRepeat:
			c.advance()
			if err := p.handleRepeat(c); err != nil {
				return err
			}
		case b == cmdColor:
			c.advance()
			if err := p.handleColor(c); err != nil {
				return err
			}
		case b == cmdRaster:
			c.advance()
			if err := p.handleRaster(c); err != nil {
				return err
			}
		case b == cmdCR:
			c.advance()
			p.canvas.x = 0
		case b == cmdLF:
			c.advance()
			if err := p.handleLineFeed(); err != nil {
				return err
			}
		case b == '\r' || b == '\n' || b == ' ' || b == '\t':
			c.advance()
		default:
			// Unknown command byte: permissive, matches widespread
			// real-world producers (spec.md §4.4).
			c.advance()
		}
	}
}

func (p *bodyParser) handleSixel(b byte, count int) error {
	mask := b - sixelLow
	if err := p.canvas.reserveForWrite(count); err != nil {
		return err
	}
	p.canvas.paintColumn(mask, count, p.pal.cache)
	p.canvas.x += count
	return nil
}

// handleRepeat implements '!N' + one sixel byte. If N has no digits it
// defaults to 1; it saturates at maxRepeat. If the byte following the
// count is not itself a sixel data byte, the whole repeat is dropped and
// parsing resumes from that byte (spec.md §4.4 "Repeat bounds").
func (p *bodyParser) handleRepeat(c *cursor) error {
	n, hasDigits := c.parseUint()
	if !hasDigits {
		n = 1
	}
	if n > maxRepeat {
		n = maxRepeat
	}
	b, ok := c.peek()
	if !ok || !isSixelByte(b) {
		return nil
	}
	c.advance()
	return p.handleSixel(b, n)
}

// handleColor implements '#Pc' select, or '#Pc;Pu;Px;Py;Pz' definition,
// per spec.md §4.5.
func (p *bodyParser) handleColor(c *cursor) error {
	pc, hasDigits := c.parseUint()
	if pc > 255 {
		pc = 255
	}
	next, hasNext := c.peek()
	if !hasDigits {
		if hasNext && next == ';' {
			pc = 0 // empty Pc before a definition saturates to 0
		} else if !hasNext || isTerminatorLike(next) {
			// Premature end of input right after '#': tolerated.
			return nil
		} else if next != ';' {
			return newError(ErrMalformedParameter, "'#' not followed by a digit")
		}
	}

	if !c.skipByte(';') {
		p.pal.selectIndex(pc)
		return nil
	}

	params := parseParamList(c)
	pu := paramAt(params, 0, 0)
	px := paramAt(params, 1, 0)
	py := paramAt(params, 2, 0)
	pz := paramAt(params, 3, 0)

	switch pu {
	case 1:
		p.pal.setHLS(pc, px, py, pz)
	case 2:
		p.pal.setRGBPercent(pc, px, py, pz)
	default:
		// Unknown color-space selector: still selects Pc, matching the
		// permissive spirit of unknown-byte handling elsewhere.
		p.pal.selectIndex(pc)
	}
	return nil
}

// handleRaster implements '"Pan;Pad;Ph;Pv'. Ph/Pv pre-size canvas
// capacity only; logical width/height still come from actual writes
// (spec.md §4.4, §4.8 edge cases).
func (p *bodyParser) handleRaster(c *cursor) error {
	params := parseParamList(c)
	ph := paramAt(params, 2, 0)
	pv := paramAt(params, 3, 0)
	if ph > MaxDimension || pv > MaxDimension {
		return newError(ErrDimensionTooLarge, "raster attributes request %dx%d", ph, pv)
	}
	if ph <= 0 && pv <= 0 {
		return nil
	}
	targetWidth := ph
	if targetWidth < p.canvas.capWidth {
		targetWidth = p.canvas.capWidth
	}
	targetHeight := pv
	if targetHeight < p.canvas.capHeight {
		targetHeight = p.canvas.capHeight
	}
	return p.canvas.growTo(targetWidth, targetHeight)
}

func (p *bodyParser) handleLineFeed() error {
	p.canvas.x = 0
	p.canvas.band++
	// Pre-grow capacity only; logical height advances on the next write.
	return p.canvas.growTo(p.canvas.capWidth, (p.canvas.band+1)*bandHeight)
}

func isTerminatorLike(b byte) bool {
	return b == esc || b == bel || b == stC1
}
