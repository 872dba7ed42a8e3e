package csvimport

import (
	"errors"
	"fmt"
)

// Import error codes
const (
	ErrCodeImportUnknown         = "ERR_IMPORT_UNKNOWN"
	ErrCodeImportEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportMissingHeader   = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportMissingColumn   = "ERR_IMPORT_MISSING_COLUMN"
	ErrCodeImportValidation      = "ERR_IMPORT_VALIDATION"
)

// Common import errors
var (
	// ErrEmptyFile is returned when the CSV file is empty
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrNoDataRows is returned when the CSV file has no data rows
	ErrNoDataRows = errors.New("CSV file contains no data rows")
)

// MissingColumnError is returned when a required column cannot be resolved
// from the header row. It fails the whole batch.
type MissingColumnError struct {
	Column string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q not found in header", e.Column)
}

// NewMissingColumnError creates a MissingColumnError for a column name
func NewMissingColumnError(column string) *MissingColumnError {
	return &MissingColumnError{Column: column}
}

// IsMissingColumn reports whether err is a MissingColumnError
func IsMissingColumn(err error) bool {
	var mc *MissingColumnError
	return errors.As(err, &mc)
}

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// ErrorCollection manages a bounded collection of row errors
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection, counting overflow without storing it
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Errors returns the stored errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns the total number of errors seen, including overflow
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any errors were recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// Truncated returns true if some errors were dropped due to the limit
func (ec *ErrorCollection) Truncated() bool {
	return ec.totalCount > len(ec.errors)
}
