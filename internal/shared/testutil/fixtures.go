package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Country is one row of an indicator fixture
type Country struct {
	Name string
	Code string
}

// DefaultCountries covers the configured default countries plus one extra
var DefaultCountries = []Country{
	{"Aruba", "ABW"},
	{"Brazil", "BRA"},
	{"China", "CHN"},
	{"India", "IND"},
	{"United States", "USA"},
}

// Dataset describes a World Bank style indicator download
type Dataset struct {
	FileName      string // base name inside the target directory
	IndicatorName string
	IndicatorCode string

	Countries []Country // nil means DefaultCountries
	FirstYear int       // zero means 1960
	LastYear  int       // zero means 2022
	Seed      int       // varies the generated values between datasets
	Gaps      bool      // leave roughly one cell in seven empty
}

func (d Dataset) years() (int, int) {
	first, last := d.FirstYear, d.LastYear
	if first == 0 {
		first = 1960
	}
	if last == 0 {
		last = 2022
	}
	return first, last
}

// Value is the generated cell for country index c in year y
func (d Dataset) Value(c, y int) (float64, bool) {
	if d.Gaps && (y+c+d.Seed)%7 == 0 {
		return 0, false
	}
	return float64(10*(c+1)) + float64((y-1960)*(c+d.Seed+1))/3, true
}

// Records builds the table: four preamble lines, the header with a trailing
// empty column and one row per country.
func (d Dataset) Records() [][]string {
	countries := d.Countries
	if countries == nil {
		countries = DefaultCountries
	}
	first, last := d.years()

	records := [][]string{
		{"Data Source", "World Development Indicators", ""},
		{},
		{"Last Updated Date", "2024-06-28", ""},
		{},
	}

	header := []string{"Country Name", "Country Code", "Indicator Name", "Indicator Code"}
	for y := first; y <= last; y++ {
		header = append(header, strconv.Itoa(y))
	}
	records = append(records, append(header, ""))

	for c, country := range countries {
		row := []string{country.Name, country.Code, d.IndicatorName, d.IndicatorCode}
		for y := first; y <= last; y++ {
			v, ok := d.Value(c, y)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		records = append(records, append(row, ""))
	}
	return records
}

// WriteCSV writes the dataset as a BOM-prefixed CSV file and returns its path
func WriteCSV(t *testing.T, dir string, d Dataset) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(d.Records()))

	path := filepath.Join(dir, d.FileName)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

// WriteXLSX writes the dataset to sheet of a workbook named after FileName
// with an .xlsx extension and returns its path.
func WriteXLSX(t *testing.T, dir, sheet string, d Dataset) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}

	for i, rec := range d.Records() {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	base := strings.TrimSuffix(d.FileName, filepath.Ext(d.FileName))
	path := filepath.Join(dir, base+".xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
