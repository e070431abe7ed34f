package sixel

import "testing"

func TestFillPixelsFillsEntireBuffer(t *testing.T) {
	buf := make([]byte, 4*7)
	fillPixels(buf, rgba{1, 2, 3, 4})
	for i := 0; i < len(buf); i += 4 {
		px := buf[i : i+4]
		if px[0] != 1 || px[1] != 2 || px[2] != 3 || px[3] != 4 {
			t.Fatalf("pixel %d = %v, want [1 2 3 4]", i/4, px)
		}
	}
}

func TestFillPixelsEmptyBuffer(t *testing.T) {
	fillPixels(nil, rgba{1, 2, 3, 4}) // must not panic
	fillPixels([]byte{}, rgba{1, 2, 3, 4})
}

func TestPaintColumnRespectsMask(t *testing.T) {
	c := newCanvas()
	if err := c.growTo(1, bandHeight); err != nil {
		t.Fatal(err)
	}
	c.width, c.height = 1, bandHeight
	c.paintColumn(0b101010, 1, rgba{9, 9, 9, 255})
	for row := 0; row < bandHeight; row++ {
		px := c.row(row)[:4]
		wantSet := row%2 == 1
		isSet := px[3] == 255
		if isSet != wantSet {
			t.Errorf("row %d: set=%v, want %v", row, isSet, wantSet)
		}
	}
}
