// Package compare cross-checks internal/sixel against internal/legacy over
// the same input, the Go-native counterpart to
// original_source's decoder_benchmark.rs cross-validation.
package compare

import (
	"fmt"

	"github.com/hnw/sixelbridge/internal/legacy"
	"github.com/hnw/sixelbridge/internal/sixel"
)

// tolerance is the maximum per-channel difference allowed between the two
// decoders' pixel values before it is reported as a mismatch. go-sixel's
// color reduction and internal/sixel's percent-to-byte rounding can differ
// by a few levels on the same input without indicating a real decode bug.
const tolerance = 8

// Equal decodes data with both internal/sixel and internal/legacy and
// reports whether their outputs agree. Dimension disagreements are always
// reported as a mismatch; pixel differences within tolerance are not.
func Equal(data []byte) (bool, string, error) {
	rgba1, w1, h1, err := sixel.Decode(data)
	if err != nil {
		return false, "", fmt.Errorf("internal/sixel: %w", err)
	}
	rgba2, w2, h2, err := legacy.Decode(data)
	if err != nil {
		return false, "", fmt.Errorf("internal/legacy: %w", err)
	}
	if w1 != w2 || h1 != h2 {
		return false, fmt.Sprintf("dimension mismatch: %dx%d vs %dx%d", w1, h1, w2, h2), nil
	}
	if len(rgba1) != len(rgba2) {
		return false, fmt.Sprintf("buffer length mismatch: %d vs %d", len(rgba1), len(rgba2)), nil
	}
	mismatches := 0
	var firstAt int
	for i := range rgba1 {
		if absDiff(rgba1[i], rgba2[i]) > tolerance {
			if mismatches == 0 {
				firstAt = i
			}
			mismatches++
		}
	}
	if mismatches > 0 {
		return false, fmt.Sprintf("%d byte(s) differ beyond tolerance, first at offset %d", mismatches, firstAt), nil
	}
	return true, "", nil
}

func absDiff(a, b byte) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
