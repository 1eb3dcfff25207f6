package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/trellisplot/trellis/pkg/errors"
)

// FromCSV reads a dataset from CSV with a header row. A column is numeric
// when every non-empty cell parses as a float; otherwise it is categorical.
// Empty cells become nulls in both cases.
func FromCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv")
	}
	if len(records) < 2 {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "csv needs a header and at least one row")
	}

	header := records[0]
	rows := records[1:]
	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = buildColumn(name, rows, j)
	}
	return New(cols...)
}

// buildColumn infers the kind of column j from the raw records and builds it.
func buildColumn(name string, rows [][]string, j int) *Column {
	numeric := true
	for _, row := range rows {
		cell := cellAt(row, j)
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
	}

	if numeric {
		vals := make([]float64, len(rows))
		for i, row := range rows {
			cell := cellAt(row, j)
			if cell == "" {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = strconv.ParseFloat(cell, 64)
		}
		return Floats(name, vals)
	}

	vals := make([]string, len(rows))
	valid := make([]bool, len(rows))
	for i, row := range rows {
		cell := cellAt(row, j)
		vals[i] = cell
		valid[i] = cell != ""
	}
	return StringsWithNulls(name, vals, valid)
}

func cellAt(row []string, j int) string {
	if j >= len(row) {
		return ""
	}
	return row[j]
}
