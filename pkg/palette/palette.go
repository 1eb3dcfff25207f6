// Package palette resolves palette specifications into ordered color
// sequences for hue mapping and side-color tracks.
//
// A specification is either a named palette ("deep", "rainbow", "heat"), an
// explicit label→color mapping, or just a count (the default palette cycled
// to length). Hue colors are assigned positionally: color i belongs to hue
// label i for the lifetime of a grid.
package palette

import (
	"image/color"

	"gonum.org/v1/plot/palette"

	"github.com/trellisplot/trellis/pkg/errors"
)

// DefaultName is the palette used when no specification is given.
const DefaultName = "deep"

// deep is the default qualitative palette: six well-separated hues.
var deep = []color.Color{
	color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}, // blue
	color.RGBA{R: 0x55, G: 0xa8, B: 0x68, A: 0xff}, // green
	color.RGBA{R: 0xc4, G: 0x4e, B: 0x52, A: 0xff}, // red
	color.RGBA{R: 0x81, G: 0x72, B: 0xb4, A: 0xff}, // purple
	color.RGBA{R: 0xcc, G: 0xb9, B: 0x74, A: 0xff}, // sand
	color.RGBA{R: 0x64, G: 0xb5, B: 0xcd, A: 0xff}, // cyan
}

// Colors returns n colors from the named palette. Qualitative palettes cycle
// when n exceeds their length; gradient palettes are sampled at n points.
func Colors(name string, n int) ([]color.Color, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "need a positive color count, got %d", n)
	}
	switch name {
	case "", DefaultName:
		return cycle(deep, n), nil
	case "rainbow":
		return palette.Rainbow(n, palette.Red, palette.Magenta, 1, 1, 1).Colors(), nil
	case "heat":
		return palette.Heat(n, 1).Colors(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q", name)
	}
}

// ForLabels resolves an explicit label→color mapping into the positional
// color sequence for the given label order. Every label must be present in
// the mapping.
func ForLabels(byLabel map[string]color.Color, labels []string) ([]color.Color, error) {
	out := make([]color.Color, len(labels))
	for i, l := range labels {
		c, ok := byLabel[l]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidPalette, "no color for label %q", l)
		}
		out[i] = c
	}
	return out, nil
}

// Default returns n colors from the default palette.
func Default(n int) []color.Color {
	return cycle(deep, n)
}

func cycle(src []color.Color, n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		out[i] = src[i%len(src)]
	}
	return out
}
