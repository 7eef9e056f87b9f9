package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewEmptyDatasetError("co2"),
			want: "[EMPTY_DATASET] co2 has no data rows",
		},
		{
			name: "with cause",
			err:  NewFileNotFoundError("a.csv", fs.ErrNotExist),
			want: "[FILE_NOT_FOUND] file a.csv not found: file does not exist",
		},
		{
			name: "missing column",
			err:  NewMissingColumnError("access", "Country Code"),
			want: `[MISSING_COLUMN] access: required column "Country Code" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	err := fmt.Errorf("load step: %w", NewFileNotFoundError("x.csv", fs.ErrNotExist))

	assert.True(t, stderrors.Is(err, ErrFileNotFound))
	assert.False(t, stderrors.Is(err, ErrInvalidFormat))
	assert.True(t, stderrors.Is(err, fs.ErrNotExist), "cause stays reachable")
	assert.True(t, IsType(err, ErrTypeFileNotFound))
	assert.False(t, IsType(stderrors.New("plain"), ErrTypeFileNotFound))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewRenderError("heatmap", nil)
	assert.Equal(t, "heatmap", err.Context["chart"])

	var bare AppError
	bare.WithContext("k", 1)
	assert.Equal(t, 1, bare.Context["k"])
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", stderrors.New("boom"), ExitFailure},
		{"config", NewConfigError("bad", nil), ExitConfig},
		{"missing file", NewFileNotFoundError("a", nil), ExitInput},
		{"missing column", fmt.Errorf("wrap: %w", NewMissingColumnError("d", "c")), ExitInput},
		{"render", NewRenderError("c", nil), ExitOutput},
		{"export", NewExportError("p", nil), ExitOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
