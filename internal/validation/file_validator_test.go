package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyreport/internal/errors"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		pattern   string
		wantErr   error
	}{
		{
			name: "directory with matching files",
			setupFunc: func(t *testing.T) string {
				dir := t.TempDir()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "co2.csv"), []byte("x"), 0644))
				return dir
			},
			pattern: "*.csv",
		},
		{
			name: "directory without matching files",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			pattern: "*.csv",
		},
		{
			name: "missing directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
			wantErr: errors.ErrFileNotFound,
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "file.txt")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr: errors.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(quietLogger())
			err := v.ValidateInputDirectory(tt.setupFunc(t), tt.pattern)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "output", "reports")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	err := v.ValidateOutputDirectory(filepath.Join(file, "sub"))
	assert.ErrorIs(t, err, errors.ErrExport)
}

func TestFileValidator_ValidateExcelFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"xlsx", write("data.xlsx"), nil},
		{"xlsm upper case", write("data.XLSM"), nil},
		{"csv", write("data.csv"), errors.ErrInvalidFormat},
		{"lock file", write("~$data.xlsx"), errors.ErrInvalidFormat},
		{"missing", filepath.Join(dir, "missing.xlsx"), errors.ErrFileNotFound},
		{"directory", dir, errors.ErrInvalidFormat},
	}

	v := NewFileValidator(quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExcelFile(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFileValidator_CountFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "c.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.csv"), 0755))

	v := NewFileValidator(quietLogger())
	count, err := v.CountFiles(dir, "*.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = v.CountFiles(dir, "[")
	assert.Error(t, err)
}
