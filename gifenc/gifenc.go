// Package gifenc serializes two-color pixel animations as GIF89a files.
// The resulting files have the following properties:
//  1. A 4-entry global color table: background (or transparent), foreground,
//     and two unused white filler entries.
//  2. One graphics control extension + image descriptor + LZW-compressed
//     image data block per input frame, looping forever.
//  3. Every source pixel expanded into a Scale x Scale block.
//
// Encoding is a pure, deterministic, single pass over the animation; the
// same Animation always produces the same bytes. Independent encodes may run
// concurrently without coordination.
package gifenc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"cdr.dev/slog"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/pixelflip/pixelflip/lib/color"
	"github.com/pixelflip/pixelflip/lib/log"
)

const (
	// DefaultScale is the pixel expansion factor used when Animation.Scale
	// is left unset.
	DefaultScale = 8

	// InfiniteLoop is the Netscape extension loop count for looping forever.
	InfiniteLoop = 0

	minFPS = 1
	maxFPS = 100
)

// Section introducers and extension labels.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2C
	sTrailer         = 0x3B

	eGraphicControl = 0xF9
	eApplication    = 0xFF
)

// Screen descriptor and graphics control fields.
const (
	fColorTable  = 1 << 7
	gctSizeField = 1 // 2^(1+1) = 4 entries

	// colorResolution is the declared bits per primary channel.
	colorResolution = 2

	// disposalBackground restores the frame area to the background color
	// before the next frame draws, so transparent regions don't smear.
	disposalBackground = 2
	fTransparent       = 1 << 0
)

// Animation is a two-color, multi-frame pixel animation to encode.
// It is read-only for the duration of an Encode call.
type Animation struct {
	Width  int
	Height int

	// Frames are on/off pixel grids, Height rows by Width columns each.
	// All frames must share the same dimensions.
	Frames [][][]bool

	// FPS is the playback rate in frames per second, clamped to [1, 100].
	FPS float64

	// Scale expands every source pixel into a Scale x Scale block of output
	// pixels. Values below 1 fall back to DefaultScale.
	Scale int

	// Foreground is the color of on pixels, as "#RRGGBB" (leading # optional).
	Foreground string

	// Background is the color of off pixels. When empty, off pixels are
	// transparent instead.
	Background string
}

func (a *Animation) validate() error {
	if a.Width < 1 || a.Height < 1 {
		return fmt.Errorf("animation dimensions must be at least 1x1, got %dx%d", a.Width, a.Height)
	}
	if len(a.Frames) == 0 {
		return errors.New("animation must have at least one frame")
	}
	for i, frame := range a.Frames {
		if len(frame) != a.Height {
			return fmt.Errorf("frame %d has %d rows, want %d", i, len(frame), a.Height)
		}
		for y, row := range frame {
			if len(row) != a.Width {
				return fmt.Errorf("frame %d row %d has %d pixels, want %d", i, y, len(row), a.Width)
			}
		}
	}
	return nil
}

func (a *Animation) scaleOrDefault() int {
	if a.Scale < 1 {
		return DefaultScale
	}
	return a.Scale
}

// DelayCS is the per-frame delay in hundredths of a second after clamping
// FPS to [1, 100]. FPS 0 behaves like 1 (delay 100), FPS 200 like 100
// (delay 1).
func (a *Animation) DelayCS() int {
	fps := a.FPS
	if !(fps >= minFPS) {
		fps = minFPS
	} else if fps > maxFPS {
		fps = maxFPS
	}
	return int(math.Round(100 / fps))
}

// Encode assembles the complete GIF89a byte stream for anim: header, logical
// screen descriptor, global color table, looping application extension, one
// graphics-control + image-descriptor + compressed-data triple per frame, and
// the trailer. It fails before writing anything if the animation shape or a
// color string is invalid. The context is only consulted between frames.
func Encode(ctx context.Context, anim *Animation) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to encode animation")

	if err := anim.validate(); err != nil {
		return nil, err
	}

	fg, err := color.Resolve(anim.Foreground)
	if err != nil {
		return nil, fmt.Errorf("bad foreground: %w", err)
	}
	hasBackground := anim.Background != ""
	var bg color.RGB
	if hasBackground {
		bg, err = color.Resolve(anim.Background)
		if err != nil {
			return nil, fmt.Errorf("bad background: %w", err)
		}
	}

	scale := anim.scaleOrDefault()
	sw, sh := anim.Width*scale, anim.Height*scale
	delay := anim.DelayCS()

	s := newByteStream(64 + len(anim.Frames)*(32+sw*sh/4))

	s.writeString("GIF89a")

	// Logical screen descriptor.
	s.writeUint16(sw)
	s.writeUint16(sh)
	s.writeByte(fColorTable | (colorResolution-1)<<4 | gctSizeField)
	s.writeByte(0x00) // background color index
	s.writeByte(0x00) // pixel aspect ratio

	// Global color table, always exactly 4 entries (12 bytes). Index 0 is
	// the background slot even when it's rendered transparent.
	s.writeBytes([]byte{bg.R, bg.G, bg.B})
	s.writeBytes([]byte{fg.R, fg.G, fg.B})
	s.writeBytes([]byte{color.White.R, color.White.G, color.White.B})
	s.writeBytes([]byte{color.White.R, color.White.G, color.White.B})

	// Netscape looping application extension.
	s.writeByte(sExtension)
	s.writeByte(eApplication)
	s.writeByte(0x0B)
	s.writeString("NETSCAPE2.0")
	s.writeByte(0x03)
	s.writeByte(0x01)
	s.writeUint16(InfiniteLoop)
	s.writeByte(0x00)

	for i, frame := range anim.Frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Graphics control extension.
		s.writeByte(sExtension)
		s.writeByte(eGraphicControl)
		s.writeByte(0x04)
		packed := disposalBackground << 2
		if !hasBackground {
			packed |= fTransparent
		}
		s.writeByte(packed)
		s.writeUint16(delay)
		s.writeByte(0x00) // transparent color index, meaningful only with fTransparent
		s.writeByte(0x00) // block terminator

		// Image descriptor: full-screen frame, no local table, no interlace.
		s.writeByte(sImageDescriptor)
		s.writeUint16(0)
		s.writeUint16(0)
		s.writeUint16(sw)
		s.writeUint16(sh)
		s.writeByte(0x00)

		s.writeByte(minCodeSize)
		writeSubBlocks(s, compress(expandFrame(frame, anim.Width, anim.Height, scale)))

		log.Debug(ctx, "frame encoded",
			slog.F("frame", i),
			slog.F("total_bytes", len(s.bytes())))
	}

	s.writeByte(sTrailer)
	return s.bytes(), nil
}

// expandFrame flattens a pixel grid into palette indices at the given scale,
// row-major: each source pixel becomes a scale x scale block of 1s (on) or
// 0s (off).
func expandFrame(grid [][]bool, w, h, scale int) []byte {
	sw := w * scale
	out := make([]byte, 0, sw*h*scale)
	row := make([]byte, sw)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(0)
			if grid[y][x] {
				v = 1
			}
			for i := 0; i < scale; i++ {
				row[x*scale+i] = v
			}
		}
		for i := 0; i < scale; i++ {
			out = append(out, row...)
		}
	}
	return out
}
