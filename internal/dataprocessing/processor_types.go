package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
)

// Table is an indicator file as read from disk: a header row and string
// cells. Rows are padded or truncated to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColumnIndex returns the position of a header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Record is one country row of a cleaned indicator.
type Record struct {
	CountryName   string
	CountryCode   string
	IndicatorName string
	IndicatorCode string
	// Values is aligned with Indicator.Years; NaN marks a missing observation.
	Values []float64
}

// Indicator is a cleaned dataset restricted to the analysed year range.
type Indicator struct {
	Key     string
	Years   []int
	Records []Record
}

// YearIndex returns the position of year in Years, or -1.
func (ind *Indicator) YearIndex(year int) int {
	for i, y := range ind.Years {
		if y == year {
			return i
		}
	}
	return -1
}

// Column returns every record's value for year, in record order. Years
// outside the analysed range yield NaN.
func (ind *Indicator) Column(year int) []float64 {
	idx := ind.YearIndex(year)
	col := make([]float64, len(ind.Records))
	for i, rec := range ind.Records {
		if idx < 0 {
			col[i] = math.NaN()
			continue
		}
		col[i] = rec.Values[idx]
	}
	return col
}

// FillMode selects how missing cells are forward filled.
type FillMode string

const (
	// FillRows copies the previous row's value in the same column, in file
	// order. A country's gap therefore takes the value of the country above it.
	FillRows FillMode = "rows"
	// FillYears copies the previous year's value within the same country.
	FillYears FillMode = "years"
	// FillNone leaves gaps as NaN.
	FillNone FillMode = "none"
)

// ParseFillMode validates a configured fill mode.
func ParseFillMode(s string) (FillMode, error) {
	switch m := FillMode(s); m {
	case FillRows, FillYears, FillNone:
		return m, nil
	case "":
		return FillRows, nil
	default:
		return "", fmt.Errorf("unknown fill mode %q", s)
	}
}

// ProcessingOptions configures cleaning behavior
type ProcessingOptions struct {
	// FillMode selects the forward-fill strategy
	FillMode FillMode

	// Years are the year columns kept and coerced to numbers
	Years []int

	// DropColumns are removed in addition to every unnamed column
	DropColumns []string
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	years := make([]int, 0, 31)
	for y := 1990; y <= 2020; y++ {
		years = append(years, y)
	}
	return ProcessingOptions{
		FillMode: FillRows,
		Years:    years,
	}
}

// CleanStats reports what cleaning changed in a table
type CleanStats struct {
	Rows           int
	ColumnsDropped []string
	CellsFilled    int
	CellsCoerced   int // non-missing cells that were not numbers
	MissingYears   []int
}

// naValues are the cell contents treated as missing.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell holds no observation.
func IsMissing(cell string) bool {
	_, ok := naValues[cell]
	return ok
}

// parseNumber converts a raw cell; missing or malformed cells become NaN.
func parseNumber(cell string) (v float64, coerced bool) {
	if IsMissing(cell) {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(trimCell(cell), 64)
	if err != nil {
		return math.NaN(), true
	}
	return f, false
}
