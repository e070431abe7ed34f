package sixel

import "testing"

func TestCursorParseUint(t *testing.T) {
	c := newCursor([]byte("123abc"))
	v, ok := c.parseUint()
	if !ok || v != 123 {
		t.Fatalf("got %d,%v want 123,true", v, ok)
	}
	b, _ := c.peek()
	if b != 'a' {
		t.Fatalf("cursor left at %q, want 'a'", b)
	}
}

func TestCursorParseUintNoDigits(t *testing.T) {
	c := newCursor([]byte("abc"))
	v, ok := c.parseUint()
	if ok || v != 0 {
		t.Fatalf("got %d,%v want 0,false", v, ok)
	}
}

func TestCursorParseUintSaturates(t *testing.T) {
	c := newCursor([]byte("999999999999"))
	v, ok := c.parseUint()
	if !ok || v != maxUint {
		t.Fatalf("got %d,%v want %d,true", v, ok, maxUint)
	}
}

func TestCursorSkipWhitespace(t *testing.T) {
	c := newCursor([]byte("  \t\r\nx"))
	c.skipWhitespace()
	b, ok := c.peek()
	if !ok || b != 'x' {
		t.Fatalf("got %q,%v want 'x',true", b, ok)
	}
}

func TestCursorEOF(t *testing.T) {
	c := newCursor(nil)
	if !c.eof() {
		t.Fatal("empty cursor should be eof")
	}
	if _, ok := c.peek(); ok {
		t.Fatal("peek on empty cursor should fail")
	}
	c.advance() // must not panic
}
