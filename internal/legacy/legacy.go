// Package legacy wraps the third-party github.com/mattn/go-sixel decoder so
// it can be run side by side with internal/sixel for comparison. It is the
// "legacy libsixel-derived decoder retained only for comparison" spec.md
// keeps as an out-of-scope external collaborator.
package legacy

import (
	"bytes"
	"errors"
	"image"

	"github.com/mattn/go-sixel"
)

// Decode runs go-sixel's decoder over a complete DCS SIXEL sequence and
// returns RGBA bytes in the same row-major, non-premultiplied layout
// internal/sixel.Decode returns, so the two can be compared pixel for
// pixel.
func Decode(data []byte) (rgbaBytes []byte, width, height int, err error) {
	decoder := sixel.NewDecoder(bytes.NewReader(data))
	var img image.Image
	if err := decoder.Decode(&img); err != nil {
		return nil, 0, 0, err
	}
	if img == nil {
		return nil, 0, 0, errors.New("legacy: decoder returned nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out[i] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
			out[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out, w, h, nil
}
