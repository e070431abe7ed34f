package sixel

import "testing"

func TestCanvasGrowToZeroFills(t *testing.T) {
	c := newCanvas()
	if err := c.growTo(4, 6); err != nil {
		t.Fatalf("growTo: %v", err)
	}
	for _, b := range c.pixels {
		if b != 0 {
			t.Fatal("newly grown canvas must be zero-filled")
		}
	}
}

func TestCanvasGrowToPreservesExistingPixels(t *testing.T) {
	c := newCanvas()
	if err := c.growTo(2, 2); err != nil {
		t.Fatal(err)
	}
	row0 := c.row(0)
	row0[0], row0[1], row0[2], row0[3] = 10, 20, 30, 255

	if err := c.growTo(10, 10); err != nil {
		t.Fatal(err)
	}
	row0 = c.row(0)
	if row0[0] != 10 || row0[1] != 20 || row0[2] != 30 || row0[3] != 255 {
		t.Fatalf("pixel lost across reallocation: %v", row0[:4])
	}
}

func TestCanvasGrowToRejectsOversizedDimensions(t *testing.T) {
	c := newCanvas()
	err := c.growTo(MaxDimension+1, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Kind != ErrDimensionTooLarge {
		t.Fatalf("got %v, want ErrDimensionTooLarge", err)
	}
}

func TestCanvasReserveForWriteAdvancesLogicalDims(t *testing.T) {
	c := newCanvas()
	if err := c.reserveForWrite(3); err != nil {
		t.Fatal(err)
	}
	if c.width != 3 || c.height != bandHeight {
		t.Fatalf("got %dx%d, want 3x%d", c.width, c.height, bandHeight)
	}
}

func TestCanvasTrimDropsSpareCapacity(t *testing.T) {
	c := newCanvas()
	if err := c.growTo(10, 10); err != nil {
		t.Fatal(err)
	}
	c.width, c.height = 2, 2
	out := c.trim()
	if len(out) != 2*2*4 {
		t.Fatalf("trim len = %d, want %d", len(out), 2*2*4)
	}
}

func TestCanvasGrowToToleratesZeroHeight(t *testing.T) {
	c := newCanvas()
	if err := c.growTo(100, 0); err != nil {
		t.Fatalf("growTo(100, 0): %v", err)
	}
	if c.capWidth != 100 || c.capHeight != 0 {
		t.Fatalf("got capacity %dx%d, want 100x0", c.capWidth, c.capHeight)
	}
	if err := c.growTo(0, 640); err != nil {
		t.Fatalf("growTo(0, 640): %v", err)
	}
	if c.capHeight != 640 {
		t.Fatalf("got capHeight %d, want 640", c.capHeight)
	}
}

func TestGrowCapacityPolicy(t *testing.T) {
	if got := growCapacity(0, 5); got != 5 {
		t.Errorf("growCapacity(0,5) = %d, want 5", got)
	}
	if got := growCapacity(10, 5); got != 15 {
		t.Errorf("growCapacity(10,5) = %d, want 15", got)
	}
	if got := growCapacity(10, 100); got != 100 {
		t.Errorf("growCapacity(10,100) = %d, want 100", got)
	}
}
