//go:build amd64 || arm64

package sixel

import "unsafe"

// fillPixels is the amd64/arm64 fast path. Real SSE2 intrinsics are not
// reachable from pure Go without a hand-written assembly file, which this
// module deliberately avoids (see DESIGN.md) — instead this reinterprets
// the destination as a slice of uint32 words (safe: buf's length is always
// a multiple of 4, guaranteed by paintColumn) and fills it with a
// doubling copy, the same "SIMD-friendly, wide-word" access pattern spec.md
// §4.7 asks for, without unaligned-store assumptions that would need
// per-CPU feature detection.
func fillPixels(buf []byte, c rgba) {
	if len(buf) == 0 {
		return
	}
	packed := uint32(c.r) | uint32(c.g)<<8 | uint32(c.b)<<16 | uint32(c.a)<<24
	words := unsafe.Slice((*uint32)(unsafe.Pointer(&buf[0])), len(buf)/4)
	if len(words) == 0 {
		return
	}
	words[0] = packed
	written := 1
	for written < len(words) {
		copy(words[written:], words[:written])
		written *= 2
	}
}
