package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFileNotFound  ErrorType = "FILE_NOT_FOUND"
	ErrTypeInvalidFormat ErrorType = "INVALID_FORMAT"
	ErrTypeMissingColumn ErrorType = "MISSING_COLUMN"
	ErrTypeEmptyDataset  ErrorType = "EMPTY_DATASET"
	ErrTypeConfig        ErrorType = "INVALID_CONFIG"
	ErrTypeRender        ErrorType = "RENDER_FAILED"
	ErrTypeExport        ErrorType = "EXPORT_FAILED"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type, so sentinel values such as
// ErrFileNotFound can be used with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Sentinels for errors.Is checks.
var (
	ErrFileNotFound  = &AppError{Type: ErrTypeFileNotFound}
	ErrInvalidFormat = &AppError{Type: ErrTypeInvalidFormat}
	ErrMissingColumn = &AppError{Type: ErrTypeMissingColumn}
	ErrEmptyDataset  = &AppError{Type: ErrTypeEmptyDataset}
	ErrConfig        = &AppError{Type: ErrTypeConfig}
	ErrRender        = &AppError{Type: ErrTypeRender}
	ErrExport        = &AppError{Type: ErrTypeExport}
)

// NewFileNotFoundError creates an error for a missing input file
func NewFileNotFoundError(path string, cause error) *AppError {
	return NewAppError(ErrTypeFileNotFound, fmt.Sprintf("file %s not found", path), cause).
		WithContext("path", path)
}

// NewInvalidFormatError creates an error for an unreadable input file
func NewInvalidFormatError(path string, cause error) *AppError {
	return NewAppError(ErrTypeInvalidFormat, fmt.Sprintf("cannot parse %s", path), cause).
		WithContext("path", path)
}

// NewMissingColumnError creates an error for a required column absent from a table
func NewMissingColumnError(dataset, column string) *AppError {
	return NewAppError(ErrTypeMissingColumn, fmt.Sprintf("%s: required column %q not found", dataset, column), nil).
		WithContext("dataset", dataset).
		WithContext("column", column)
}

// NewEmptyDatasetError creates an error for a table without data rows
func NewEmptyDatasetError(dataset string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, fmt.Sprintf("%s has no data rows", dataset), nil).
		WithContext("dataset", dataset)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewRenderError creates a chart rendering error
func NewRenderError(chart string, cause error) *AppError {
	return NewAppError(ErrTypeRender, fmt.Sprintf("failed to render %s", chart), cause).
		WithContext("chart", chart)
}

// NewExportError creates a report export error
func NewExportError(path string, cause error) *AppError {
	return NewAppError(ErrTypeExport, fmt.Sprintf("failed to export %s", path), cause).
		WithContext("path", path)
}

// IsType reports whether err is, or wraps, an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Exit codes returned by the command line tools.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitInput       = 3
	ExitOutput      = 4
	ExitInterrupted = 130
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return ExitFailure
	}
	switch appErr.Type {
	case ErrTypeConfig:
		return ExitConfig
	case ErrTypeFileNotFound, ErrTypeInvalidFormat, ErrTypeMissingColumn, ErrTypeEmptyDataset:
		return ExitInput
	case ErrTypeRender, ErrTypeExport:
		return ExitOutput
	default:
		return ExitFailure
	}
}
