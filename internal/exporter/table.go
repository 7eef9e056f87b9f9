package exporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"energyreport/internal/dataprocessing"
)

// RenderTable writes a bordered table with every cell centred:
//
//	+-------+------+
//	|       | 1990 |
//	+-------+------+
//	| count | 217  |
//	+-------+------+
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	var sb strings.Builder
	border := func() {
		sb.WriteByte('+')
		for _, width := range widths {
			sb.WriteString(strings.Repeat("-", width+2))
			sb.WriteByte('+')
		}
		sb.WriteByte('\n')
	}
	line := func(row []string) {
		sb.WriteByte('|')
		for i, width := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteByte(' ')
			sb.WriteString(center(cell, width))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	border()
	line(headers)
	border()
	for _, row := range rows {
		line(row)
	}
	border()

	_, err := io.WriteString(w, sb.String())
	return err
}

func center(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// SummaryTable lays out a summary with one column per year and one row per
// statistic.
func SummaryTable(s *dataprocessing.Summary) (headers []string, rows [][]string) {
	headers = make([]string, 0, len(s.Columns)+1)
	headers = append(headers, "")
	for _, c := range s.Columns {
		headers = append(headers, strconv.Itoa(c.Year))
	}

	rows = make([][]string, len(dataprocessing.StatNames))
	for i, name := range dataprocessing.StatNames {
		row := make([]string, 0, len(s.Columns)+1)
		row = append(row, name)
		for _, c := range s.Columns {
			row = append(row, FormatNumber(c.Values()[i]))
		}
		rows[i] = row
	}
	return headers, rows
}

// PrintSummary writes the heading and table for one indicator summary.
func PrintSummary(w io.Writer, s *dataprocessing.Summary) error {
	if _, err := fmt.Fprintf(w, "\nSummary Statistics for %s\n\n", s.Title); err != nil {
		return err
	}
	headers, rows := SummaryTable(s)
	return RenderTable(w, headers, rows)
}
