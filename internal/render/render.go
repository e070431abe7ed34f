// Package render converts a decoded SIXEL raster into a PNG-encoded byte
// slice, the same conversion the teacher's cmd.sixelToPNG previously did
// with github.com/mattn/go-sixel plus image/png.
package render

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/hnw/sixelbridge/internal/sixel"
)

// ErrEmptyImage is returned when the decoder produced a zero-sized raster.
var ErrEmptyImage = errors.New("render: decoded image has zero dimensions")

// ToImage wraps a sixel.DecodeResult's raw RGBA bytes in an image.NRGBA,
// since the decoder's alpha channel is meaningful (transparent cells carry
// alpha 0, not premultiplied).
func ToImage(result sixel.DecodeResult) (*image.NRGBA, error) {
	if result.Width == 0 || result.Height == 0 {
		return nil, ErrEmptyImage
	}
	return &image.NRGBA{
		Pix:    result.RGBA,
		Stride: result.Width * 4,
		Rect:   image.Rect(0, 0, result.Width, result.Height),
	}, nil
}

// Encode decodes a raw SIXEL byte stream and encodes the result as PNG.
func Encode(sixelData []byte) ([]byte, error) {
	result, err := sixel.DecodeInfo(sixelData)
	if err != nil {
		return nil, err
	}
	img, err := ToImage(result)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRGBA encodes an already-decoded RGBA raster (e.g. from
// internal/legacy) as PNG, downscaling exactly as EncodeThumbnail does.
func EncodeRGBA(rgba []byte, width, height int) ([]byte, error) {
	return encodeThumbnail(sixel.DecodeResult{RGBA: rgba, Width: width, Height: height})
}

// encodeThumbnail is EncodeThumbnail's shared implementation, taking an
// already-decoded result instead of raw SIXEL bytes.
func encodeThumbnail(result sixel.DecodeResult) ([]byte, error) {
	src, err := ToImage(result)
	if err != nil {
		return nil, err
	}

	img := image.Image(src)
	if result.Width > maxPostedDimension || result.Height > maxPostedDimension {
		img = scaleDown(src, maxPostedDimension)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// maxPostedDimension bounds the longest edge of an image before it is
// attached to a chat message; oversized decoded images (raster attributes
// can request up to the decoder's own sixel.MaxDimension) are downscaled rather
// than rejected.
const maxPostedDimension = 2000

// EncodeThumbnail behaves like Encode but downscales the decoded image with
// golang.org/x/image/draw's bilinear scaler when either edge exceeds
// maxPostedDimension, preserving aspect ratio.
func EncodeThumbnail(sixelData []byte) ([]byte, error) {
	result, err := sixel.DecodeInfo(sixelData)
	if err != nil {
		return nil, err
	}
	return encodeThumbnail(result)
}

func scaleDown(src *image.NRGBA, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := float64(maxEdge) / float64(w)
	if hScale := float64(maxEdge) / float64(h); hScale < scale {
		scale = hScale
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
