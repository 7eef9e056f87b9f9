package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Describe computes count, mean, sample standard deviation, min, quartiles
// and max for each of years over every record of ind. Missing values are
// excluded; a column with no values reports count 0 and NaN elsewhere.
func Describe(ind *Indicator, years []int, title string) *Summary {
	s := &Summary{Key: ind.Key, Title: title, Columns: make([]ColumnStats, 0, len(years))}
	for _, y := range years {
		s.Columns = append(s.Columns, describeColumn(y, ind.Column(y)))
	}
	return s
}

func describeColumn(year int, col []float64) ColumnStats {
	vals := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}

	cs := ColumnStats{Year: year, Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		cs.Mean, cs.Std, cs.Min, cs.Q25, cs.Q50, cs.Q75, cs.Max = nan, nan, nan, nan, nan, nan, nan
		return cs
	}

	sort.Float64s(vals)
	cs.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		cs.Std = stat.StdDev(vals, nil)
	} else {
		cs.Std = nan
	}
	cs.Min = vals[0]
	cs.Max = vals[len(vals)-1]
	cs.Q25 = quantile(vals, 0.25)
	cs.Q50 = quantile(vals, 0.5)
	cs.Q75 = quantile(vals, 0.75)
	return cs
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
