// Package frameparse reads the plain-text animation format:
//
//	.x.
//	x.x
//	.x.
//
//	xxx
//	x.x
//	xxx
//
// One character per pixel: '.' is an off pixel, 'x' (or 'X') is on. Rows are
// lines, frames are separated by one or more blank lines, and lines starting
// with // are comments. Every frame must have the same dimensions as the
// first.
package frameparse

import (
	"fmt"
	"strings"

	"oss.terrastruct.com/util-go/xdefer"
)

// Parse parses input into on/off pixel grids. Errors carry 1-based line
// numbers.
func Parse(input string) (width, height int, frames [][][]bool, err error) {
	defer xdefer.Errorf(&err, "failed to parse frames")

	var frame [][]bool
	frameStart := 0

	flush := func() error {
		if len(frame) == 0 {
			return nil
		}
		if len(frames) == 0 {
			width, height = len(frame[0]), len(frame)
		} else if len(frame) != height {
			return fmt.Errorf("line %d: frame %d has %d rows, want %d", frameStart, len(frames)+1, len(frame), height)
		}
		frames = append(frames, frame)
		frame = nil
		return nil
	}

	for i, line := range strings.Split(input, "\n") {
		lineno := i + 1
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return 0, 0, nil, err
			}
			continue
		}

		if len(frame) == 0 {
			frameStart = lineno
		}
		if len(frames) > 0 && len(line) != width {
			return 0, 0, nil, fmt.Errorf("line %d: row has %d pixels, want %d", lineno, len(line), width)
		}
		if len(frame) > 0 && len(line) != len(frame[0]) {
			return 0, 0, nil, fmt.Errorf("line %d: row has %d pixels, want %d", lineno, len(line), len(frame[0]))
		}

		row := make([]bool, len(line))
		for j, c := range line {
			switch c {
			case '.':
			case 'x', 'X':
				row[j] = true
			default:
				return 0, 0, nil, fmt.Errorf("line %d:%d: unexpected character %q (want '.' or 'x')", lineno, j+1, c)
			}
		}
		frame = append(frame, row)
	}
	if err := flush(); err != nil {
		return 0, 0, nil, err
	}

	if len(frames) == 0 {
		return 0, 0, nil, fmt.Errorf("no frames found")
	}
	return width, height, frames, nil
}
