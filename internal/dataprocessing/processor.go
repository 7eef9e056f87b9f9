package dataprocessing

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"energyreport/internal/config"
	"energyreport/internal/errors"
)

// ForwardFillProcessor cleans raw indicator tables: it drops unnamed columns,
// forward fills gaps and coerces the analysed years to numbers.
type ForwardFillProcessor struct {
	opts   ProcessingOptions
	logger *slog.Logger
}

// NewForwardFillProcessor creates a new forward-fill processor
func NewForwardFillProcessor(opts ProcessingOptions, logger *slog.Logger) *ForwardFillProcessor {
	if opts.FillMode == "" {
		opts.FillMode = FillRows
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ForwardFillProcessor{opts: opts, logger: logger}
}

// Process runs the full cleaning sequence on t and returns the typed
// indicator. t is not modified.
func (f *ForwardFillProcessor) Process(key string, t *Table) (*Indicator, CleanStats, error) {
	var stats CleanStats

	if t.ColumnIndex(config.ColumnCountryName) < 0 {
		return nil, stats, errors.NewMissingColumnError(key, config.ColumnCountryName)
	}
	if t.ColumnIndex(config.ColumnCountryCode) < 0 {
		return nil, stats, errors.NewMissingColumnError(key, config.ColumnCountryCode)
	}
	if len(t.Rows) == 0 {
		return nil, stats, errors.NewEmptyDatasetError(key)
	}

	cleaned, dropped := DropColumns(t, f.opts.DropColumns)
	stats.ColumnsDropped = dropped

	stats.CellsFilled = ForwardFill(cleaned, f.opts.FillMode)

	ind, coerced, missing := Coerce(key, cleaned, f.opts.Years)
	stats.Rows = len(ind.Records)
	stats.CellsCoerced = coerced
	stats.MissingYears = missing

	f.logger.Debug("Indicator cleaned",
		slog.String("dataset", key),
		slog.Int("rows", stats.Rows),
		slog.Any("dropped_columns", stats.ColumnsDropped),
		slog.Int("cells_filled", stats.CellsFilled),
		slog.Int("cells_coerced", stats.CellsCoerced))
	if len(missing) > 0 {
		f.logger.Warn("Year columns absent from dataset, treated as missing",
			slog.String("dataset", key),
			slog.Any("years", missing))
	}

	return ind, stats, nil
}

// DropColumns returns a copy of t without its unnamed columns and without
// any of extra. Names in extra that are not present are ignored.
func DropColumns(t *Table, extra []string) (*Table, []string) {
	drop := make(map[string]bool, len(extra))
	for _, name := range extra {
		drop[name] = true
	}

	var keep []int
	var dropped []string
	for i, h := range t.Header {
		if strings.HasPrefix(h, config.UnnamedColumnPrefix) || drop[h] {
			dropped = append(dropped, h)
			continue
		}
		keep = append(keep, i)
	}

	out := &Table{Name: t.Name, Header: make([]string, len(keep)), Rows: make([][]string, len(t.Rows))}
	for j, i := range keep {
		out.Header[j] = t.Header[i]
	}
	for r, row := range t.Rows {
		newRow := make([]string, len(keep))
		for j, i := range keep {
			newRow[j] = row[i]
		}
		out.Rows[r] = newRow
	}
	return out, dropped
}

// ForwardFill replaces missing cells in place and returns how many were
// filled. Cells with no earlier value stay missing.
func ForwardFill(t *Table, mode FillMode) int {
	switch mode {
	case FillRows:
		return fillDown(t)
	case FillYears:
		return fillAcross(t)
	default:
		return 0
	}
}

// fillDown propagates each column's last observed value to the rows below it.
func fillDown(t *Table) int {
	filled := 0
	for c := range t.Header {
		last, seen := "", false
		for _, row := range t.Rows {
			if IsMissing(row[c]) {
				if seen {
					row[c] = last
					filled++
				}
				continue
			}
			last, seen = row[c], true
		}
	}
	return filled
}

// fillAcross propagates each row's last observed value along its year
// columns, in header order.
func fillAcross(t *Table) int {
	var yearCols []int
	for i, h := range t.Header {
		if _, err := strconv.Atoi(h); err == nil {
			yearCols = append(yearCols, i)
		}
	}

	filled := 0
	for _, row := range t.Rows {
		last, seen := "", false
		for _, c := range yearCols {
			if IsMissing(row[c]) {
				if seen {
					row[c] = last
					filled++
				}
				continue
			}
			last, seen = row[c], true
		}
	}
	return filled
}

// Coerce builds the typed indicator for years. Cells that are missing or not
// numbers become NaN; years with no column at all are returned in missing.
func Coerce(key string, t *Table, years []int) (ind *Indicator, coerced int, missing []int) {
	nameIdx := t.ColumnIndex(config.ColumnCountryName)
	codeIdx := t.ColumnIndex(config.ColumnCountryCode)
	indNameIdx := t.ColumnIndex(config.ColumnIndicatorName)
	indCodeIdx := t.ColumnIndex(config.ColumnIndicatorCode)

	yearIdx := make([]int, len(years))
	for i, y := range years {
		yearIdx[i] = t.ColumnIndex(strconv.Itoa(y))
		if yearIdx[i] < 0 {
			missing = append(missing, y)
		}
	}

	ind = &Indicator{
		Key:     key,
		Years:   append([]int(nil), years...),
		Records: make([]Record, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		rec := Record{
			CountryName:   cell(row, nameIdx),
			CountryCode:   cell(row, codeIdx),
			IndicatorName: cell(row, indNameIdx),
			IndicatorCode: cell(row, indCodeIdx),
			Values:        make([]float64, len(years)),
		}
		for i, c := range yearIdx {
			if c < 0 {
				rec.Values[i] = math.NaN()
				continue
			}
			v, bad := parseNumber(row[c])
			if bad {
				coerced++
			}
			rec.Values[i] = v
		}
		ind.Records = append(ind.Records, rec)
	}
	return ind, coerced, missing
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
