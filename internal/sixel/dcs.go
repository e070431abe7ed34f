package sixel

const (
	esc        = 0x1B
	dcsC1      = 0x90 // single-byte C1 Device Control String introducer
	stC1       = 0x9C // single-byte C1 String Terminator
	bel        = 0x07
	dcsFinal   = 'q'
	introducer = 'P'
	backslash  = '\\'
)

// envelope is the result of stripping the DCS introducer/parameters and
// locating the payload and terminator.
type envelope struct {
	// params holds up to three parsed DCS parameters (macro parameter,
	// background select, horizontal grid), validated for shape only —
	// spec.md §4.2 says the decoder ignores their values semantically at
	// the envelope layer. DecodeResult surfaces the ones original_source
	// gives meaning to (aspect ratio, transparency).
	params  []int
	payload []byte
}

// parseEnvelope locates the SIXEL payload inside ESC P ... ST (or the C1
// equivalents), per spec.md §4.2. End of input before a terminator is
// tolerated: payload runs to the end of the input in that case.
func parseEnvelope(data []byte) (envelope, error) {
	c := newCursor(data)
	c.skipWhitespace()

	switch {
	case c.skipByte(esc):
		if !c.skipByte(introducer) {
			return envelope{}, newError(ErrMissingDCS, "ESC not followed by 'P'")
		}
	case c.skipByte(dcsC1):
		// single-byte C1 introducer, nothing more to skip
	default:
		return envelope{}, newError(ErrMissingDCS, "input does not begin with a DCS introducer")
	}

	params := parseParamList(c)
	if len(params) > 3 {
		params = params[:3]
	}

	b, ok := c.peek()
	if !ok || b != dcsFinal {
		got := "end of input"
		if ok {
			got = string(rune(b))
		}
		return envelope{}, newError(ErrBadDCSFinal, "expected 'q', got %s", got)
	}
	c.advance()

	payload := findPayload(data[c.pos:])
	return envelope{params: params, payload: payload}, nil
}

// findPayload returns the bytes up to (not including) the string
// terminator: ESC \, the C1 ST, or BEL. If no terminator is found, the
// entire remainder is returned — spec.md §4.2 tolerates truncated input.
func findPayload(data []byte) []byte {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case bel, stC1:
			return data[:i]
		case esc:
			if i+1 < len(data) && data[i+1] == backslash {
				return data[:i]
			}
		}
	}
	return data
}
