package facet

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/errors"
)

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.Floats("x", []float64{1, 2, 3, 4, 5, 6}),
		dataset.Floats("y", []float64{2, 4, 6, 8, 10, 12}),
		dataset.Strings("region", []string{"east", "east", "east", "west", "west", "west"}),
		dataset.Strings("species", []string{"a", "b", "a", "b", "a", "b"}),
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestNewShape(t *testing.T) {
	g, err := New(testData(t), Col("region"), Hue("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := g.Shape()
	if s.Rows != 1 || s.Cols != 2 {
		t.Errorf("shape = %dx%d, want 1x2", s.Rows, s.Cols)
	}
	if len(g.HueColors()) != 2 {
		t.Errorf("hue colors = %d, want 2", len(g.HueColors()))
	}
	if len(g.ColLabels()) != 2 {
		t.Errorf("col labels = %d, want 2", len(g.ColLabels()))
	}
}

func TestNewColWrapWithRow(t *testing.T) {
	_, err := New(testData(t), Row("region"), Col("species"), ColWrap(2))
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestNewUnknownColumn(t *testing.T) {
	_, err := New(testData(t), Col("missing"))
	if errors.GetCode(err) != errors.ErrCodeColumnNotFound {
		t.Errorf("code = %v, want COLUMN_NOT_FOUND", errors.GetCode(err))
	}
}

func TestMapVisitsNonEmptySubsets(t *testing.T) {
	g, err := New(testData(t), Col("region"), Hue("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	visits := 0
	var labels []string
	fn := func(c *Cell, vectors [][]float64, st Style) error {
		visits++
		labels = append(labels, st.Label)
		if len(vectors) != 2 {
			t.Errorf("got %d vectors, want 2", len(vectors))
		}
		if st.Color == nil {
			t.Error("hue subsets should carry a palette color")
		}
		return Scatter(c, vectors, st)
	}
	if _, err := g.Map(fn, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}

	// 2 regions x 2 species, all combinations present.
	if visits != 4 {
		t.Errorf("visits = %d, want 4", visits)
	}
	for _, l := range labels {
		if l != "a" && l != "b" {
			t.Errorf("unexpected hue label %q", l)
		}
	}
}

func TestMapSkipsEmptySubsets(t *testing.T) {
	ds, err := dataset.New(
		dataset.Floats("x", []float64{1, 2, 3}),
		dataset.Floats("y", []float64{1, 2, 3}),
		dataset.Strings("g", []string{"p", "p", "q"}),
		dataset.Strings("h", []string{"u", "u", "v"}),
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	// (q, u) and (p, v) are empty combinations.
	g, err := New(ds, Col("g"), Hue("h"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	visits := 0
	fn := func(c *Cell, vectors [][]float64, st Style) error {
		visits++
		return nil
	}
	if _, err := g.Map(fn, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if visits != 2 {
		t.Errorf("visits = %d, want 2 (empty subsets skipped)", visits)
	}
}

func TestMapSetsAxisLabelsOnEdges(t *testing.T) {
	g, err := New(testData(t), Row("region"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	// Bottom cell carries the x label, top cell does not.
	if got := g.Cell(1, 0).X.Label.Text; got != "x" {
		t.Errorf("bottom x label = %q, want x", got)
	}
	if got := g.Cell(0, 0).X.Label.Text; got != "" {
		t.Errorf("top x label = %q, want empty", got)
	}
	if got := g.Cell(0, 0).Y.Label.Text; got != "y" {
		t.Errorf("left y label = %q, want y", got)
	}
}

func TestMapWithColorOverride(t *testing.T) {
	g, err := New(testData(t), Hue("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := color.RGBA{R: 200, A: 255}
	fn := func(c *Cell, vectors [][]float64, st Style) error {
		if st.Color != want {
			t.Errorf("style color = %v, want override %v", st.Color, want)
		}
		return nil
	}
	if _, err := g.MapWith(fn, MapOptions{Color: want}, "x", "y"); err != nil {
		t.Fatalf("MapWith: %v", err)
	}
}

func TestMapUnknownVariable(t *testing.T) {
	g, err := New(testData(t), Col("region"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = g.Map(Scatter, "x", "nope")
	if errors.GetCode(err) != errors.ErrCodeColumnNotFound {
		t.Errorf("code = %v, want COLUMN_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLegendAccumulator(t *testing.T) {
	g, err := New(testData(t), Col("region"), Hue("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Two mapping passes: labels stay unique, handles come from the last.
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map scatter: %v", err)
	}
	if _, err := g.Map(Line, "x", "y"); err != nil {
		t.Fatalf("Map line: %v", err)
	}
	if len(g.legendLabels) != 2 {
		t.Errorf("legend labels = %v, want 2 unique entries", g.legendLabels)
	}
	for _, l := range g.legendLabels {
		if len(g.legendThumbs[l]) != 1 {
			t.Errorf("label %q has %d handles, want 1 (last write wins)", l, len(g.legendThumbs[l]))
		}
	}
	if !g.HasLegend() {
		t.Error("HasLegend should be true with an active hue")
	}
}

func TestHasLegendFalseWhenHueIsCol(t *testing.T) {
	g, err := New(testData(t), Col("species"), Hue("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	if g.HasLegend() {
		t.Error("legend should be suppressed when hue equals the col variable")
	}
}

func TestSetTitlesMargin(t *testing.T) {
	g, err := New(testData(t), Row("region"), Col("species"), MarginTitles())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.SetTitles(TitleOptions{})
	if len(g.marginRowTitles) != 2 {
		t.Fatalf("margin row titles = %d, want 2", len(g.marginRowTitles))
	}
	if g.marginRowTitles[0] != "region = east" {
		t.Errorf("margin title = %q, want %q", g.marginRowTitles[0], "region = east")
	}
	if got := g.Cell(0, 0).Title.Text; got != "species = a" {
		t.Errorf("top-left title = %q, want %q", got, "species = a")
	}
	if got := g.Cell(1, 0).Title.Text; got != "" {
		t.Errorf("second-row title = %q, want empty under margin titles", got)
	}
}

func TestSetTitlesJoined(t *testing.T) {
	g, err := New(testData(t), Row("region"), Col("species"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	g.SetTitles(TitleOptions{})
	want := "region = east | species = a"
	if got := g.Cell(0, 0).Title.Text; got != want {
		t.Errorf("title = %q, want %q", got, want)
	}
}

func TestEachUnderWrap(t *testing.T) {
	ds, err := dataset.New(
		dataset.Floats("x", []float64{1, 2, 3, 4, 5}),
		dataset.Floats("y", []float64{1, 2, 3, 4, 5}),
		dataset.Strings("g", []string{"a", "b", "c", "d", "e"}),
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	g, err := New(ds, Col("g"), ColWrap(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := g.Shape()
	if s.Rows != 3 || s.Cols != 2 {
		t.Fatalf("shape = %dx%d, want 3x2", s.Rows, s.Cols)
	}
	count := 0
	g.Each(func(c *Cell) { count++ })
	if count != 5 {
		t.Errorf("Each visited %d cells, want 5 active", count)
	}
}

func TestDrawSmoke(t *testing.T) {
	g, err := New(testData(t), Col("region"), Hue("species"), LegendOut(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}

	w, h := g.FigureSize()
	img := vgimg.New(w, h)
	dc := draw.New(img)

	if lw := g.LegendWidth(dc); lw <= 0 {
		t.Error("outside legend should have positive width")
	}
	if err := g.Draw(dc); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if w <= 0 || h <= 0 {
		t.Errorf("figure size = %v x %v, want positive", w, h)
	}
}

func TestDespine(t *testing.T) {
	g, err := New(testData(t), Col("region"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	g.Despine()
	g.Each(func(c *Cell) {
		if c.X.LineStyle.Width != 0 {
			t.Errorf("cell (%d,%d) x spine width = %v, want 0", c.row, c.col, c.X.LineStyle.Width)
		}
		if c.Y.LineStyle.Width != 0 {
			t.Errorf("cell (%d,%d) y spine width = %v, want 0", c.row, c.col, c.Y.LineStyle.Width)
		}
	})
}

func TestSetTickFormat(t *testing.T) {
	g, err := New(testData(t), Col("region"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Map(Scatter, "x", "y"); err != nil {
		t.Fatalf("Map: %v", err)
	}
	g.SetTickFormat("x", func(v float64) string {
		return fmt.Sprintf("%.0f units", v)
	})

	ticks := g.Cell(0, 0).X.Tick.Marker.Ticks(0, 10)
	labeled := 0
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		labeled++
		if !strings.HasSuffix(tk.Label, " units") {
			t.Errorf("tick label = %q, want %q suffix", tk.Label, " units")
		}
	}
	if labeled == 0 {
		t.Error("no labeled ticks produced")
	}

	// The y axis keeps default formatting.
	for _, tk := range g.Cell(0, 0).Y.Tick.Marker.Ticks(0, 10) {
		if strings.HasSuffix(tk.Label, " units") {
			t.Errorf("y tick label %q should be untouched", tk.Label)
		}
	}
}

func TestSharedRangesWhenNothingDrawn(t *testing.T) {
	g, err := New(testData(t), Col("region"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	noop := func(c *Cell, sub *dataset.Dataset, st Style) error { return nil }
	if _, err := g.MapDataset(noop, "x", "y"); err != nil {
		t.Fatalf("MapDataset: %v", err)
	}
	c := g.Cell(0, 0)
	if c.X.Min == 0 && c.X.Max == 0 {
		t.Error("x range collapsed to (0, 0) with no drawn cells")
	}
	if !math.IsInf(c.X.Min, 1) || !math.IsInf(c.X.Max, -1) {
		t.Errorf("x range = (%v, %v), want untouched defaults", c.X.Min, c.X.Max)
	}
}
