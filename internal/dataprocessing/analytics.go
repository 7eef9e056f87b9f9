package dataprocessing

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// TimeSeries selects the rows of ind whose country name is in countries and
// pivots them into one series per country. Rows keep file order. Years in
// which every selected series is missing are dropped.
func TimeSeries(ind *Indicator, countries []string) *SeriesSet {
	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[c] = true
	}

	set := &SeriesSet{}
	for _, rec := range ind.Records {
		if !wanted[rec.CountryName] {
			continue
		}
		set.Series = append(set.Series, Series{
			Country: rec.CountryName,
			Values:  append([]float64(nil), rec.Values...),
		})
	}
	if len(set.Series) == 0 {
		return set
	}

	var keep []int
	for i := range ind.Years {
		for _, s := range set.Series {
			if !math.IsNaN(s.Values[i]) {
				keep = append(keep, i)
				break
			}
		}
	}

	set.Years = make([]int, len(keep))
	for j, i := range keep {
		set.Years[j] = ind.Years[i]
	}
	for si := range set.Series {
		vals := make([]float64, len(keep))
		for j, i := range keep {
			vals[j] = set.Series[si].Values[i]
		}
		set.Series[si].Values = vals
	}
	return set
}

// MergedColumnName is the combined-table name of an indicator's year column.
func MergedColumnName(year int, key string) string {
	return strconv.Itoa(year) + "_" + key
}

// Merge inner-joins indicators, in order, on (country name, country code).
// Row order follows the leftmost table; a key present several times on both
// sides yields every pairing.
func Merge(indicators ...*Indicator) (*Merged, error) {
	if len(indicators) == 0 {
		return nil, fmt.Errorf("merge requires at least one indicator")
	}

	first := indicators[0]
	m := &Merged{Columns: mergedColumns(first)}
	for _, rec := range first.Records {
		m.Rows = append(m.Rows, MergedRow{
			CountryName: rec.CountryName,
			CountryCode: rec.CountryCode,
			Values:      append([]float64(nil), rec.Values...),
		})
	}

	for _, ind := range indicators[1:] {
		index := make(map[countryKey][]int, len(ind.Records))
		for i, rec := range ind.Records {
			k := countryKey{rec.CountryName, rec.CountryCode}
			index[k] = append(index[k], i)
		}

		joined := make([]MergedRow, 0, len(m.Rows))
		for _, row := range m.Rows {
			for _, i := range index[countryKey{row.CountryName, row.CountryCode}] {
				values := make([]float64, 0, len(row.Values)+len(ind.Years))
				values = append(values, row.Values...)
				values = append(values, ind.Records[i].Values...)
				joined = append(joined, MergedRow{
					CountryName: row.CountryName,
					CountryCode: row.CountryCode,
					Values:      values,
				})
			}
		}
		m.Rows = joined
		m.Columns = append(m.Columns, mergedColumns(ind)...)
	}

	return m, nil
}

type countryKey struct {
	name, code string
}

func mergedColumns(ind *Indicator) []string {
	cols := make([]string, len(ind.Years))
	for i, y := range ind.Years {
		cols[i] = MergedColumnName(y, ind.Key)
	}
	return cols
}

// KeyColumns lists the merged columns for keyYears grouped by indicator:
// every key year of the first key, then of the second, and so on.
func KeyColumns(keys []string, keyYears []int) []string {
	cols := make([]string, 0, len(keys)*len(keyYears))
	for _, k := range keys {
		for _, y := range keyYears {
			cols = append(cols, MergedColumnName(y, k))
		}
	}
	return cols
}

// Correlate computes pairwise Pearson coefficients between columns of m. Each
// pair uses only the rows where both values are present.
func Correlate(m *Merged, columns []string) (*CorrelationMatrix, error) {
	data := make([][]float64, len(columns))
	for i, name := range columns {
		col, ok := m.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not in merged table", name)
		}
		data[i] = col
	}

	n := len(columns)
	cm := &CorrelationMatrix{
		Labels: append([]string(nil), columns...),
		Values: make([][]float64, n),
	}
	for i := range cm.Values {
		cm.Values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := pairwiseCorrelation(data[i], data[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			cm.Values[i][j] = r
			cm.Values[j][i] = r
		}
	}
	return cm, nil
}

func pairwiseCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 || isConstant(xs) || isConstant(ys) {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	switch {
	case math.IsNaN(r):
		return r
	case r > 1:
		return 1
	case r < -1:
		return -1
	}
	return r
}

func isConstant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
