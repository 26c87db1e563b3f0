package main

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/util-go/xmain"

	"github.com/pixelflip/pixelflip/lib/version"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--fps=10] [--scale=8] [--fg=#000000] [--bg=#RRGGBB] frames.txt [frames.gif]
  %[1]s version

%[1]s encodes a plain-text two-color pixel animation to an animated GIF.
It defaults to writing the input path with a .gif extension if an output
path is not provided.

Use - to have %[1]s read from stdin or write to stdout.

The input format is one character per pixel: '.' for an off pixel, 'x' for
an on pixel, one line per row, frames separated by blank lines. Lines
starting with // are comments. Off pixels are transparent unless --bg is
given.

Flags:
%[3]s
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}
