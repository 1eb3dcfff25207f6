package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	corecluster "github.com/trellisplot/trellis/pkg/core/cluster"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/errors"
	"github.com/trellisplot/trellis/pkg/facet"
	"github.com/trellisplot/trellis/pkg/heatmap"
)

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"svg", "png", "html", "dot", "json"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("ParseFormat(%q) returned error: %v", name, err)
		}
	}
	_, err := ParseFormat("gif")
	if errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("ParseFormat(gif) code = %v, want INVALID_FORMAT", errors.GetCode(err))
	}
}

func testGrid(t *testing.T) *facet.Grid {
	t.Helper()
	ds, err := dataset.New(
		dataset.Floats("x", []float64{1, 2, 3, 4}),
		dataset.Floats("y", []float64{1, 4, 9, 16}),
		dataset.Strings("g", []string{"a", "a", "b", "b"}),
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	g, err := facet.New(ds, facet.Hue("g"), facet.LegendOut(true))
	if err != nil {
		t.Fatalf("facet.New: %v", err)
	}
	if _, err := g.Map(facet.Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	return g
}

func TestSVGFromGrid(t *testing.T) {
	data, err := SVG(testGrid(t))
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output does not look like SVG")
	}
}

func TestPNGFromGrid(t *testing.T) {
	data, err := PNG(testGrid(t))
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	// PNG magic bytes.
	if len(data) < 8 || data[1] != 'P' || data[2] != 'N' || data[3] != 'G' {
		t.Error("output does not look like PNG")
	}
}

func testClustermap(t *testing.T) *heatmap.Clustermap {
	t.Helper()
	m := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		7, 8, 9,
		1, 2, 4,
	})
	cm, err := heatmap.New(m, heatmap.Config{
		RowLabels: []string{"r0", "r1", "r2"},
		ColLabels: []string{"c0", "c1", "c2"},
	})
	if err != nil {
		t.Fatalf("heatmap.New: %v", err)
	}
	return cm
}

func TestSVGFromClustermap(t *testing.T) {
	data, err := SVG(testClustermap(t))
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output does not look like SVG")
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTML(testClustermap(t), HTMLOptions{Title: "test"}, &buf)
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "echarts") {
		t.Error("HTML output should embed echarts")
	}
	if !strings.Contains(out, "heatmap") {
		t.Error("HTML output should declare a heatmap series")
	}
}

func TestDOTToSVG(t *testing.T) {
	l := corecluster.Linkage{
		{Left: 0, Right: 1, Distance: 1, Size: 2},
	}
	dot := DendrogramToDOT(l, []string{"a", "b"})
	data, err := DOTToSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("DOTToSVG: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output does not look like SVG")
	}
}

func TestDendrogramToDOT(t *testing.T) {
	l := corecluster.Linkage{
		{Left: 0, Right: 1, Distance: 1, Size: 2},
		{Left: 2, Right: 3, Distance: 2, Size: 3},
	}
	dot := DendrogramToDOT(l, []string{"alpha", "beta", "gamma"})
	for _, want := range []string{
		"digraph dendrogram",
		`leaf0 [label="alpha"]`,
		`leaf2 [label="gamma"]`,
		"merge0 ->",
		"merge1 -> merge0;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
