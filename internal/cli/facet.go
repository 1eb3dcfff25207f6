package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trellisplot/trellis/pkg/cache"
	"github.com/trellisplot/trellis/pkg/dataset"
	"github.com/trellisplot/trellis/pkg/pipeline"
)

// facetOpts holds the command-line flags for the facet command.
type facetOpts struct {
	output       string  // output file path, or base path for multiple formats
	formats      string  // comma-separated output formats
	plot         string  // panel plot function: scatter or line
	x, y         string  // variables mapped to the axes
	row, col     string  // grid partition variables
	hue          string  // color partition variable
	colWrap      int     // wrap the column dimension at this width
	size         float64 // panel height in inches
	aspect       float64 // panel width / height
	palette      string  // hue palette name
	dropNA       bool    // drop rows with null grouping values
	marginTitles bool    // draw row titles in the right margin
	legendIn     bool    // draw the legend inside the first panel
}

// newFacetCmd creates the facet command for building panel grids from CSV
// input.
func newFacetCmd() *cobra.Command {
	var opts facetOpts

	cmd := &cobra.Command{
		Use:   "facet [file.csv]",
		Short: "Build a faceted grid of panels from tidy data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFacet(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png (comma-separated)")
	cmd.Flags().StringVar(&opts.plot, "plot", "", "panel plot: scatter (default), line")
	cmd.Flags().StringVarP(&opts.x, "x", "x", "", "variable on the x axis (required)")
	cmd.Flags().StringVarP(&opts.y, "y", "y", "", "variable on the y axis (required)")
	cmd.Flags().StringVar(&opts.row, "row", "", "variable partitioning the rows")
	cmd.Flags().StringVar(&opts.col, "col", "", "variable partitioning the columns")
	cmd.Flags().StringVar(&opts.hue, "hue", "", "variable partitioning colors within panels")
	cmd.Flags().IntVar(&opts.colWrap, "col-wrap", 0, "wrap the column dimension at this width")
	cmd.Flags().Float64Var(&opts.size, "size", 0, "panel height in inches")
	cmd.Flags().Float64Var(&opts.aspect, "aspect", 0, "panel width/height ratio")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "hue palette: deep (default), rainbow, heat")
	cmd.Flags().BoolVar(&opts.dropNA, "drop-na", false, "drop rows with null grouping values")
	cmd.Flags().BoolVar(&opts.marginTitles, "margin-titles", false, "draw row titles in the right margin")
	cmd.Flags().BoolVar(&opts.legendIn, "legend-in", false, "draw the legend inside the first panel")

	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	return cmd
}

func runFacet(cmd *cobra.Command, input string, opts *facetOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	ds, err := loadCSV(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded %s: %d rows, %d columns", input, ds.Len(), len(ds.Names()))

	size := cfg.Facet.Size
	if opts.size > 0 {
		size = opts.size
	}
	aspect := cfg.Facet.Aspect
	if opts.aspect > 0 {
		aspect = opts.aspect
	}
	palette := cfg.Facet.Palette
	if opts.palette != "" {
		palette = opts.palette
	}

	runner := pipeline.NewRunner(cache.NewNullCache(), logger)
	tracker := newProgress(logger)
	res, err := runner.Execute(ctx, ds, pipeline.Options{
		Kind:         pipeline.KindFacet,
		Plot:         opts.plot,
		X:            opts.x,
		Y:            opts.y,
		Row:          opts.row,
		Col:          opts.col,
		Hue:          opts.hue,
		ColWrap:      opts.colWrap,
		Size:         size,
		Aspect:       aspect,
		Palette:      palette,
		DropNA:       opts.dropNA,
		MarginTitles: opts.marginTitles,
		LegendOut:    !opts.legendIn,
		Formats:      parseFormats(opts.formats, cfg.Output.Format),
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	shape := res.Grid.Shape()
	tracker.done(fmt.Sprintf("Built %d×%d grid", shape.Rows, shape.Cols))

	if err := writeArtifacts(res.Artifacts, opts.output, input); err != nil {
		return err
	}

	printSuccess("Faceted %s", input)
	printGridStats(shape.Rows, shape.Cols, shape.Rows*shape.Cols)
	return nil
}

// loadCSV reads a tidy dataset from a CSV file.
func loadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.FromCSV(f)
}

// parseFormats splits the --format flag, falling back to the configured
// default format.
func parseFormats(s, fallback string) []string {
	if s == "" {
		if fallback == "" {
			return nil
		}
		return []string{fallback}
	}
	return strings.Split(s, ",")
}

// writeArtifacts writes every rendered artifact next to the input file, or
// to the explicit output path when only one format was rendered. An output
// of "-" streams a single artifact to stdout.
func writeArtifacts(artifacts map[string][]byte, output, input string) error {
	multiple := len(artifacts) > 1
	for format, data := range artifacts {
		path := outputPath(output, input, format, multiple)
		if output == "-" && !multiple {
			path = ""
		}
		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		if path != "" {
			printFile(path)
		}
	}
	return nil
}
