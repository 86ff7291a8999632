package xlsxreader

import (
	"fmt"
	"strings"
)

// =============================================================================
// SHEET DEFINITION
// =============================================================================

// Default row positions used when a SheetSpec leaves them at zero.
const (
	DefaultHeaderRow    = 1
	DefaultFirstDataRow = 2
)

// SheetSpec describes where a sheet's data lives.
type SheetSpec struct {
	// Name is the worksheet name, matched case-insensitively.
	Name string

	// Headers are the expected labels of columns 1..n of the header row.
	Headers []string

	// HeaderRow is the 1-based row holding the labels. 0 means DefaultHeaderRow.
	HeaderRow int

	// FirstDataRow is the 1-based row of the first record. 0 means
	// DefaultFirstDataRow.
	FirstDataRow int
}

func (s SheetSpec) withDefaults() SheetSpec {
	if s.HeaderRow == 0 {
		s.HeaderRow = DefaultHeaderRow
	}
	if s.FirstDataRow == 0 {
		s.FirstDataRow = DefaultFirstDataRow
	}
	s.Headers = append([]string(nil), s.Headers...)
	return s
}

// validate expects defaults to be applied already.
func (s SheetSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ConfigError{Reason: "sheet name is blank"}
	}
	if len(s.Headers) == 0 {
		return &ConfigError{Sheet: s.Name, Reason: "no headers defined"}
	}
	for i, h := range s.Headers {
		if strings.TrimSpace(h) == "" {
			return &ConfigError{Sheet: s.Name, Reason: fmt.Sprintf("header %d is blank", i+1)}
		}
	}
	if s.HeaderRow < 1 {
		return &ConfigError{Sheet: s.Name, Reason: fmt.Sprintf("header row %d is not positive", s.HeaderRow)}
	}
	if s.FirstDataRow < 1 {
		return &ConfigError{Sheet: s.Name, Reason: fmt.Sprintf("first data row %d is not positive", s.FirstDataRow)}
	}
	return nil
}

// Sheet reads records of type R from one worksheet. A Sheet holds only its
// definition, so it can be read any number of times and from several
// goroutines at once.
type Sheet[R any] struct {
	spec   SheetSpec
	decode func(*Row) R
}

// NewSheet validates spec and binds it to a record decoder. decode must pull
// every field of R through the cell accessors, in column order.
func NewSheet[R any](spec SheetSpec, decode func(*Row) R) (*Sheet[R], error) {
	spec = spec.withDefaults()
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if decode == nil {
		return nil, &ConfigError{Sheet: spec.Name, Reason: "record decoder is nil"}
	}
	return &Sheet[R]{spec: spec, decode: decode}, nil
}

// Spec returns the sheet definition with defaults applied.
func (s *Sheet[R]) Spec() SheetSpec {
	spec := s.spec
	spec.Headers = append([]string(nil), s.spec.Headers...)
	return spec
}

// WithRows returns a copy of s with different row positions. A zero argument
// keeps the current value.
func (s *Sheet[R]) WithRows(headerRow, firstDataRow int) (*Sheet[R], error) {
	spec := s.Spec()
	if headerRow != 0 {
		spec.HeaderRow = headerRow
	}
	if firstDataRow != 0 {
		spec.FirstDataRow = firstDataRow
	}
	return NewSheet(spec, s.decode)
}

// =============================================================================
// SHEET RESULT
// =============================================================================

// Result is the outcome of reading one sheet.
type Result[R any] struct {
	// Sheet is the worksheet name.
	Sheet string

	// Records holds the valid records in row order.
	Records []R

	// RecordRows holds the worksheet row of each record in Records.
	RecordRows []int

	// Errors holds every problem found, in the order found.
	Errors []error

	// Failure is the unexpected error that stopped the read, if any. It is
	// also the last entry of Errors.
	Failure error
}

// Messages renders Errors.
func (r Result[R]) Messages() []string { return messages(r.Errors) }

// Valid reports whether the sheet was read without any error.
func (r Result[R]) Valid() bool { return len(r.Errors) == 0 }

func (r Result[R]) SheetName() string { return r.Sheet }
func (r Result[R]) Len() int          { return len(r.Records) }
func (r Result[R]) Issues() []error   { return r.Errors }
func (r Result[R]) Rows() []int       { return r.RecordRows }

// Values returns the records as a slice of any, for reporting.
func (r Result[R]) Values() []any {
	out := make([]any, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec
	}
	return out
}

func (r *Result[R]) fail(err error) {
	r.Failure = err
	r.Errors = append(r.Errors, err)
}

// =============================================================================
// SHEET READING
// =============================================================================

// Read extracts the records of the sheet from wb.
//
// Steps:
//  1. A missing worksheet yields a single MissingSheetError.
//  2. Every header label is compared with its cell; any mismatch stops the
//     read after all mismatches have been reported.
//  3. Rows are decoded from FirstDataRow on until the first blank row.
//     Valid rows become records; invalid rows become one RowError each.
//
// A collaborator error or a panic inside the decoder ends the read with a
// ReadError; the records collected up to that point are kept.
func (s *Sheet[R]) Read(wb Workbook) (res Result[R]) {
	res.Sheet = s.spec.Name
	current := 0

	defer func() {
		if p := recover(); p != nil {
			res.fail(&ReadError{Sheet: s.spec.Name, Row: current, Err: panicError(p)})
		}
	}()

	if !wb.HasSheet(s.spec.Name) {
		res.Errors = append(res.Errors, &MissingSheetError{Sheet: s.spec.Name})
		return res
	}

	if !s.checkHeaders(wb, &res) {
		return res
	}

	for current = s.spec.FirstDataRow; ; current++ {
		row := newRow(wb, s.spec.Name, current)
		rec := s.decode(row)

		if row.failure != nil {
			res.fail(&ReadError{Sheet: s.spec.Name, Row: current, Err: row.failure})
			return res
		}
		if row.Blank() {
			return res
		}
		if !row.Valid() {
			res.Errors = append(res.Errors, &RowError{Row: current, Fields: row.Errors()})
			continue
		}
		res.Records = append(res.Records, rec)
		res.RecordRows = append(res.RecordRows, current)
	}
}

// ReadSheet implements SheetReader.
func (s *Sheet[R]) ReadSheet(wb Workbook) Outcome {
	return s.Read(wb)
}

// checkHeaders reports whether every header label matched.
func (s *Sheet[R]) checkHeaders(wb Workbook, res *Result[R]) bool {
	ok := true
	for i, label := range s.spec.Headers {
		found, addr, err := wb.Cell(s.spec.Name, s.spec.HeaderRow, i+1)
		if err != nil {
			res.fail(&ReadError{Sheet: s.spec.Name, Err: err})
			return false
		}
		if found != label {
			res.Errors = append(res.Errors, &HeaderError{Label: label, Cell: addr, Found: found})
			ok = false
		}
	}
	return ok
}

func panicError(p any) error {
	if err, ok := p.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", p)
}
