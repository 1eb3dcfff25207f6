// Package render turns composed figures into output artifacts. Vector and
// raster output goes through gonum/plot's vg canvases; interactive HTML goes
// through go-echarts; dendrogram trees can also be exported as Graphviz DOT.
package render

import (
	"bytes"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/trellisplot/trellis/pkg/errors"
)

// Format identifies an output format.
type Format string

// Supported output formats.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatHTML, FormatDOT, FormatJSON}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q", name)
}

// Figure is anything that can draw itself at a preferred size. Both facet
// grids and clustermaps implement it.
type Figure interface {
	FigureSize() (w, h vg.Length)
	Draw(dc draw.Canvas) error
}

// LegendMeasurer is implemented by figures whose outside legend grows the
// figure. The sink measures on a draft canvas and widens the final one.
type LegendMeasurer interface {
	LegendWidth(dc draw.Canvas) vg.Length
}

// figureExtent resolves the final canvas size, accounting for outside
// legend growth.
func figureExtent(fig Figure) (w, h vg.Length) {
	w, h = fig.FigureSize()
	if lm, ok := fig.(LegendMeasurer); ok {
		draft := draw.New(vgimg.New(w, h))
		w += lm.LegendWidth(draft)
	}
	return w, h
}

// SVG renders the figure to SVG bytes.
func SVG(fig Figure) ([]byte, error) {
	w, h := figureExtent(fig)
	c := vgsvg.New(w, h)
	if err := fig.Draw(draw.New(c)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNG renders the figure to PNG bytes.
func PNG(fig Figure) ([]byte, error) {
	w, h := figureExtent(fig)
	c := vgimg.New(w, h)
	if err := fig.Draw(draw.New(c)); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSVG renders the figure as SVG to w.
func WriteSVG(fig Figure, w io.Writer) error {
	data, err := SVG(fig)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WritePNG renders the figure as PNG to w.
func WritePNG(fig Figure, w io.Writer) error {
	data, err := PNG(fig)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
