package dataprocessing

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"energyreport/internal/errors"
)

const worldBankCSV = "\ufeff\"Data Source\",\"World Development Indicators\",\n" +
	"\n" +
	"\"Last Updated Date\",\"2024-06-28\",\n" +
	"\n" +
	"\"Country Name\",\"Country Code\",\"Indicator Name\",\"Indicator Code\",\"1990\",\"1991\",\n" +
	"\"Aruba\",\"ABW\",\"Access to electricity\",\"EG.ELC.ACCS.ZS\",\"\",\"88.5\",\n" +
	"\"Brazil\",\"BRA\",\"Access to electricity\",\"EG.ELC.ACCS.ZS\",\"87.5\",\"\",\n"

func TestParseCSV_WorldBankLayout(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(worldBankCSV), "access", ParseOptions{SkipRows: 4})
	require.NoError(t, err)

	assert.Equal(t, []string{"Country Name", "Country Code", "Indicator Name", "Indicator Code", "1990", "1991", "Unnamed: 6"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Aruba", table.Rows[0][0])
	assert.Equal(t, "", table.Rows[0][4])
	assert.Equal(t, "87.5", table.Rows[1][4])
	assert.Len(t, table.Rows[1], len(table.Header))
}

func TestParseCSV_NoSkip(t *testing.T) {
	input := "\ufeffCountry Name,Country Code,2000\nChina,CHN,1.5\n"
	table, err := ParseCSV(strings.NewReader(input), "x", ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Country Name", table.Header[0], "byte order mark is stripped")
	assert.Equal(t, [][]string{{"China", "CHN", "1.5"}}, table.Rows)
}

func TestParseCSV_ShortAndLongRows(t *testing.T) {
	input := "a,b,c\n1\n1,2,3,4\n"
	table, err := ParseCSV(strings.NewReader(input), "x", ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
}

func TestParseCSV_DuplicateAndBlankHeaders(t *testing.T) {
	input := "x,,x,,x\n1,2,3,4,5\n"
	table, err := ParseCSV(strings.NewReader(input), "x", ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "Unnamed: 1", "x.1", "Unnamed: 3", "x.2"}, table.Header)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		skip  int
	}{
		{"empty input", "", 0},
		{"preamble longer than file", "one\ntwo\n", 4},
		{"only preamble", "one\ntwo\nthree\nfour\n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input), "x", ParseOptions{SkipRows: tt.skip})
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidFormat))
		})
	}
}

func TestParseFile_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseFile(filepath.Join(dir, "missing.csv"), ParseOptions{})
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))

	_, err = ParseFile(filepath.Join(dir, "missing.xlsx"), ParseOptions{})
	assert.True(t, stderrors.Is(err, errors.ErrFileNotFound))
}

func TestParseFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.csv")
	require.NoError(t, os.WriteFile(path, []byte(worldBankCSV), 0644))

	table, err := ParseFile(path, ParseOptions{SkipRows: 4})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, path, table.Name)
}

func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestParseXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "co2.xlsx")
	writeWorkbook(t, path, "Data", [][]interface{}{
		{"Data Source", "World Development Indicators"},
		{"Last Updated Date", "2024-06-28"},
		{"Country Name", "Country Code", "Indicator Name", "Indicator Code", "1990", "1991"},
		{"China", "CHN", "CO2", "EN.ATM.CO2E.PC", 2.1, 2.2},
	})

	table, err := ParseXLSXFile(path, ParseOptions{SkipRows: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"Country Name", "Country Code", "Indicator Name", "Indicator Code", "1990", "1991"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "China", table.Rows[0][0])
	assert.Equal(t, "2.1", table.Rows[0][4])
}

func TestParseXLSXFile_FirstSheetFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"Country Name", "Country Code", "2000"},
		{"India", "IND", 400},
	})

	table, err := ParseFile(path, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "India", table.Rows[0][0])
}

func TestParseXLSXFile_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0644))

	_, err := ParseXLSXFile(path, ParseOptions{})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidFormat))
}
