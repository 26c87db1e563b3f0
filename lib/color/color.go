// Package color resolves user-supplied color strings into the 8-bit RGB
// triples stored in a GIF color table.
package color

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// RGB is an 8-bit-per-channel color, one global color table entry.
type RGB struct {
	R, G, B uint8
}

// White fills the unused color table slots.
var White = RGB{0xFF, 0xFF, 0xFF}

// Resolve parses a "#RRGGBB" string; the leading # is optional. Shorthand
// forms, named colors and malformed input are errors rather than silently
// producing a corrupt color table.
func Resolve(s string) (RGB, error) {
	normalized := s
	if len(s) > 0 && s[0] != '#' {
		normalized = "#" + s
	}
	if len(normalized) != 7 {
		return RGB{}, fmt.Errorf("expected a 6 hex digit color, got %q", s)
	}
	c, err := csscolorparser.Parse(normalized)
	if err != nil {
		return RGB{}, err
	}
	return RGB{
		R: uint8(math.Round(c.R * 255)),
		G: uint8(math.Round(c.G * 255)),
		B: uint8(math.Round(c.B * 255)),
	}, nil
}

// Luminance is the perceived brightness of c in [0, 1].
func Luminance(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// LowContrast reports whether two colors are hard to tell apart, by
// perceptual (CIE Lab) distance. Useful for warning before encoding an
// animation whose on and off pixels look identical.
func LowContrast(a, b RGB) bool {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	return ca.DistanceLab(cb) < 0.1
}
