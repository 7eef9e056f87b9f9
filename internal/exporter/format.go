package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a value for CSV output at full precision. Missing
// values are written as empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatNumber formats a value for console tables with six significant
// digits, switching to exponent notation for very large or small magnitudes.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}
