// Command sixelcat decodes a DEC SIXEL stream from a file (or stdin) and
// writes it out as PNG, the way `cat foo.six | sixelcat > foo.png` would.
// It also exposes the legacy github.com/mattn/go-sixel decoder and a
// cross-check between the two, for debugging decoder disagreements.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hnw/sixelbridge/internal/compare"
	"github.com/hnw/sixelbridge/internal/legacy"
	"github.com/hnw/sixelbridge/internal/render"
)

func main() {
	var (
		legacyFlag  = flag.Bool("legacy", false, "decode with the legacy go-sixel decoder instead")
		compareFlag = flag.Bool("compare", false, "decode with both decoders and report any disagreement instead of writing PNG")
	)
	flag.Parse()

	data, err := readInput(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sixelcat: %v\n", err)
		os.Exit(1)
	}

	if *compareFlag {
		ok, detail, err := compare.Equal(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sixelcat: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "sixelcat: decoders disagree: %s\n", detail)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "sixelcat: decoders agree")
		return
	}

	pngBytes, err := decode(data, *legacyFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sixelcat: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stdout.Write(pngBytes); err != nil {
		fmt.Fprintf(os.Stderr, "sixelcat: writing stdout: %v\n", err)
		os.Exit(1)
	}
}

func decode(data []byte, useLegacy bool) ([]byte, error) {
	if useLegacy {
		return legacyToPNG(data)
	}
	return render.Encode(data)
}

func legacyToPNG(data []byte) ([]byte, error) {
	rgba, w, h, err := legacy.Decode(data)
	if err != nil {
		return nil, err
	}
	return render.EncodeRGBA(rgba, w, h)
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
