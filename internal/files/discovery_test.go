package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyreport/internal/errors"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestNewDiscovery(t *testing.T) {
	discovery := NewDiscovery("/test/base")
	assert.Equal(t, "/test/base", discovery.basePath)
}

func TestFindDataset(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		files    []string
		request  string
		expected string
		wantErr  bool
	}{
		{
			name:     "csv present",
			files:    []string{"co2.csv", "co2.xlsx"},
			request:  "co2.csv",
			expected: "co2.csv",
		},
		{
			name:     "falls back to xlsx",
			files:    []string{"co2.xlsx"},
			request:  "co2.csv",
			expected: "co2.xlsx",
		},
		{
			name:     "falls back to xlsm",
			files:    []string{"co2.xlsm"},
			request:  "co2.csv",
			expected: "co2.xlsm",
		},
		{
			name:     "names with dots and parentheses",
			files:    []string{"Access to Electricity (% of Population).xlsx"},
			request:  "Access to Electricity (% of Population).csv",
			expected: "Access to Electricity (% of Population).xlsx",
		},
		{
			name:    "nothing found",
			files:   []string{"other.csv"},
			request: "co2.csv",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f, now)
			}

			found, err := NewDiscovery(dir).FindDataset(tt.request)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrFileNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, found.Name)
			assert.Equal(t, filepath.Join(dir, tt.expected), found.Path)
			assert.Equal(t, int64(1), found.Size)
		})
	}
}

func TestFindDataset_AbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "energy.csv", time.Now())

	found, err := NewDiscovery("/elsewhere").FindDataset(path)
	require.NoError(t, err)
	assert.Equal(t, path, found.Path)
	assert.False(t, found.IsWorkbook())
}

func TestFindExcelFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, dir, "newer.xlsx", base.Add(2*time.Minute))
	touch(t, dir, "older.XLSX", base)
	touch(t, dir, "macro.xlsm", base.Add(time.Minute))
	touch(t, dir, "~$older.xlsx", base)
	touch(t, dir, "data.csv", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xlsx"), 0755))

	found, err := NewDiscovery(dir).FindExcelFiles(".")
	require.NoError(t, err)

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.Name
		assert.True(t, f.IsWorkbook())
	}
	assert.Equal(t, []string{"older.XLSX", "macro.xlsm", "newer.xlsx"}, names)
}

func TestFindCSVFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "b.csv", now)
	touch(t, dir, "a.CSV", now)
	touch(t, dir, "c.xlsx", now)

	found, err := NewDiscovery("").FindCSVFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a.CSV", found[0].Name)
	assert.Equal(t, "b.csv", found[1].Name)
}

func TestFindFiles_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindCSVFiles("missing")
	assert.Error(t, err)
}
