package dataprocessing

// Series is one country's values across SeriesSet.Years.
type Series struct {
	Country string
	Values  []float64
}

// SeriesSet is the chart-ready view of an indicator: one series per selected
// country, restricted to years where at least one series has a value.
type SeriesSet struct {
	Years  []int
	Series []Series
}

// Empty reports whether no selected country had any data.
func (s *SeriesSet) Empty() bool {
	return s == nil || len(s.Series) == 0 || len(s.Years) == 0
}

// MergedRow is one country row of the combined table.
type MergedRow struct {
	CountryName string
	CountryCode string
	// Values is aligned with Merged.Columns.
	Values []float64
}

// Merged is the inner join of several indicators on country name and code.
// Columns are named "<year>_<key>".
type Merged struct {
	Columns []string
	Rows    []MergedRow
}

// ColumnIndex returns the position of a merged column, or -1.
func (m *Merged) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every row's value for the named column.
func (m *Merged) Column(name string) ([]float64, bool) {
	idx := m.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	col := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		col[i] = row.Values[idx]
	}
	return col, true
}

// CorrelationMatrix is a symmetric matrix of Pearson coefficients. Cells
// with too few paired observations, or a constant column, are NaN.
type CorrelationMatrix struct {
	Labels []string
	Values [][]float64
}

// At returns the coefficient for labels i and j.
func (c *CorrelationMatrix) At(i, j int) float64 {
	return c.Values[i][j]
}

// StatNames are the row labels of a Summary, in display order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// ColumnStats describes one year column.
type ColumnStats struct {
	Year  int
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Values returns the statistics in StatNames order.
func (c ColumnStats) Values() []float64 {
	return []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q25, c.Q50, c.Q75, c.Max}
}

// Summary holds descriptive statistics for several year columns of one indicator.
type Summary struct {
	Key     string
	Title   string
	Columns []ColumnStats
}
