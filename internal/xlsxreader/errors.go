// =============================================================================
// XLSX Record Reader - Error Kinds
// =============================================================================
//
// Every problem found while reading a workbook is one of the kinds below.
// Only ConfigError is ever returned as a Go error (from NewSheet); all other
// kinds are collected into Result.Errors or WorkbookResult.Errors and are
// rendered to human-readable strings with Messages().
//
//   Kind              Scope      Effect
//   ----------------  ---------  -----------------------------------------
//   ConfigError       setup      sheet cannot be constructed
//   OpenError         workbook   no sheet is read
//   MissingSheetError sheet      that sheet is skipped
//   HeaderError       sheet      data rows of that sheet are not scanned
//   FieldError        row        the row is dropped from the records
//   RowError          sheet      groups the FieldErrors of one row
//   ReadError         sheet/wb   unexpected failure, scan stops
//
// =============================================================================

package xlsxreader

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid sheet configuration")

// ConfigError reports a sheet definition that cannot be used.
type ConfigError struct {
	Sheet  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Reason)
	}
	return fmt.Sprintf("%s: sheet '%s': %s", ErrInvalidConfig, e.Sheet, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// OpenError reports a spreadsheet package that could not be opened or closed.
type OpenError struct {
	Source string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open workbook %s: %v", e.Source, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// MissingSheetError reports a configured sheet that is absent from the workbook.
type MissingSheetError struct {
	Sheet string
}

func (e *MissingSheetError) Error() string {
	return fmt.Sprintf("sheet '%s' does not exist", e.Sheet)
}

// HeaderError reports a header cell whose text differs from the expected label.
type HeaderError struct {
	Label string
	Cell  string
	Found string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header '%s' not found (cell %s)", e.Label, e.Cell)
}

// FieldErrorKind tells a missing value apart from an unconvertible one.
type FieldErrorKind int

const (
	// FieldRequired: a required cell was empty.
	FieldRequired FieldErrorKind = iota + 1
	// FieldInvalid: a cell had a value that could not be converted.
	FieldInvalid
)

func (k FieldErrorKind) String() string {
	switch k {
	case FieldRequired:
		return "required"
	case FieldInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FieldError reports one cell of one row.
type FieldError struct {
	Kind  FieldErrorKind
	Label string
	Cell  string

	// Value is the raw cell text for FieldInvalid; empty for FieldRequired.
	Value string

	// Err is the conversion error for FieldInvalid.
	Err error
}

func (e *FieldError) Error() string {
	if e.Kind == FieldRequired {
		return fmt.Sprintf("field '%s' is required and was not specified (cell %s)", e.Label, e.Cell)
	}
	return fmt.Sprintf("field '%s' is invalid (cell %s)", e.Label, e.Cell)
}

func (e *FieldError) Unwrap() error { return e.Err }

// RowError groups the field errors of a row that was dropped.
type RowError struct {
	Row    int
	Fields []*FieldError
}

func (e *RowError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "record at row %d has errors:", e.Row)
	for _, f := range e.Fields {
		b.WriteByte('\n')
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the field errors to errors.Is and errors.As.
func (e *RowError) Unwrap() []error {
	errs := make([]error, len(e.Fields))
	for i, f := range e.Fields {
		errs[i] = f
	}
	return errs
}

// ReadError wraps an unexpected failure: an error from the spreadsheet
// package while reading a cell, or a panic raised by a record decoder.
// Row is zero when the failure is not tied to a data row.
type ReadError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *ReadError) Error() string {
	switch {
	case e.Sheet == "":
		return e.Err.Error()
	case e.Row > 0:
		return fmt.Sprintf("read sheet '%s' at row %d: %v", e.Sheet, e.Row, e.Err)
	default:
		return fmt.Sprintf("read sheet '%s': %v", e.Sheet, e.Err)
	}
}

func (e *ReadError) Unwrap() error { return e.Err }

// messages renders errs in order.
func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
