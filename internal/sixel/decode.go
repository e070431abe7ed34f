package sixel

// AspectRatio is the pixel aspect ratio carried by a SIXEL DCS sequence's
// first parameter (P1), supplemented from original_source/icy_sixel since
// spec.md leaves the decoder responsible only for reporting it, not
// applying it.
type AspectRatio struct {
	Pan uint16
	Pad uint16
}

// aspectRatioFromP1 mirrors icy_sixel::decoder's P1 -> (Pan, Pad) lookup:
// 0/1 -> 2:1, 2 -> 1:5, 3/4 -> 1:4, 5/6 -> 1:3, 7/8 -> 1:2, 9 -> 1:1,
// anything else (including no P1 at all) defaults to 2:1.
func aspectRatioFromP1(p1 int, hasP1 bool) AspectRatio {
	if !hasP1 {
		return AspectRatio{Pan: 2, Pad: 1}
	}
	switch p1 {
	case 0, 1:
		return AspectRatio{Pan: 2, Pad: 1}
	case 2:
		return AspectRatio{Pan: 1, Pad: 5}
	case 3, 4:
		return AspectRatio{Pan: 1, Pad: 4}
	case 5, 6:
		return AspectRatio{Pan: 1, Pad: 3}
	case 7, 8:
		return AspectRatio{Pan: 1, Pad: 2}
	case 9:
		return AspectRatio{Pan: 1, Pad: 1}
	default:
		return AspectRatio{Pan: 2, Pad: 1}
	}
}

// DecodeResult is the richer return value of DecodeInfo/DecodeFromDCSInfo:
// spec.md's (rgba, width, height) tuple plus the aspect ratio and
// transparency metadata original_source's icy_sixel decoder also exposes.
type DecodeResult struct {
	RGBA        []byte
	Width       int
	Height      int
	AspectRatio AspectRatio
	Transparent bool
}

// Decode runs the DCS envelope parser then the body parser over a
// complete SIXEL sequence (ESC P ... ST, or the C1 equivalents) and
// returns the trimmed RGBA raster with its dimensions. It is the direct
// counterpart of spec.md §4.8's decode(bytes).
func Decode(data []byte) (rgbaBytes []byte, width, height int, err error) {
	result, err := DecodeInfo(data)
	if err != nil {
		return nil, 0, 0, err
	}
	return result.RGBA, result.Width, result.Height, nil
}

// DecodeInfo is Decode's richer sibling; see DecodeResult.
func DecodeInfo(data []byte) (DecodeResult, error) {
	env, err := parseEnvelope(data)
	if err != nil {
		return DecodeResult{}, err
	}
	return decodeBody(env.params, env.payload)
}

// DecodeFromDCS bypasses the envelope parser: the caller has already
// consumed ESC P ... q and stripped the trailing ST. params are the (up
// to three) DCS parameters the caller parsed itself. This is spec.md
// §4.8's decode_from_dcs(params, payload).
func DecodeFromDCS(params []int, payload []byte) (rgbaBytes []byte, width, height int, err error) {
	result, err := DecodeFromDCSInfo(params, payload)
	if err != nil {
		return nil, 0, 0, err
	}
	return result.RGBA, result.Width, result.Height, nil
}

// DecodeFromDCSInfo is DecodeFromDCS's richer sibling; see DecodeResult.
func DecodeFromDCSInfo(params []int, payload []byte) (DecodeResult, error) {
	return decodeBody(params, payload)
}

func decodeBody(params []int, payload []byte) (DecodeResult, error) {
	p1, hasP1 := 0, len(params) > 0
	if hasP1 {
		p1 = params[0]
	}
	transparent := len(params) > 1 && params[1] == 1

	bp := newBodyParser()
	if err := bp.run(payload); err != nil {
		return DecodeResult{}, err
	}

	c := bp.canvas
	if c.width == 0 || c.height == 0 {
		return DecodeResult{
			RGBA:        []byte{},
			AspectRatio: aspectRatioFromP1(p1, hasP1),
			Transparent: transparent,
		}, nil
	}

	// Cells the body parser never wrote are already alpha 0 (canvas.go
	// zero-fills new capacity), so transparent mode needs no extra pass.
	rgbaBytes := c.trim()

	return DecodeResult{
		RGBA:        rgbaBytes,
		Width:       c.width,
		Height:      c.height,
		AspectRatio: aspectRatioFromP1(p1, hasP1),
		Transparent: transparent,
	}, nil
}

