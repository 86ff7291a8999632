package xlsxreader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// =============================================================================
// WORKBOOK READER
// =============================================================================
//
// A Reader is bound to a Layout: the ordered list of sheets that make up one
// workbook shape. Every Read* call opens the package, hands it to each sheet
// in turn and closes it again, whatever happens in between.
//
//   ReadBytes ─┐
//   ReadFile  ─┼─> open ─> ReadWorkbook ─> SheetReader.ReadSheet (each) ─> close
//   Read      ─┘
//
// =============================================================================

// Outcome is the type-erased view of a Result, used where sheets of
// different record types are handled together.
type Outcome interface {
	SheetName() string
	Len() int
	Issues() []error
	Values() []any
	Rows() []int
}

// SheetReader is implemented by *Sheet[R] for every R.
type SheetReader interface {
	Spec() SheetSpec
	ReadSheet(wb Workbook) Outcome
}

// Layout lists the sheets of one workbook shape, in reading order.
type Layout interface {
	Sheets() []SheetReader
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for read progress. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPassword opens encrypted workbooks with the given password.
func WithPassword(password string) Option {
	return func(r *Reader) { r.password = password }
}

// Reader reads workbooks of one Layout. It is safe for concurrent use.
type Reader struct {
	layout   Layout
	logger   *slog.Logger
	password string
}

// New creates a Reader for layout.
func New(layout Layout, opts ...Option) *Reader {
	r := &Reader{layout: layout, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WorkbookResult is the outcome of reading one workbook.
type WorkbookResult struct {
	// Source names where the workbook came from: a path, "(bytes)" or
	// "(stream)".
	Source string

	// Sheets holds one outcome per layout sheet, in layout order. Sheets
	// that could not be read at all are absent.
	Sheets []Outcome

	// Errors holds workbook-level problems: open and close failures and
	// failures that escaped a sheet.
	Errors []error
}

// Sheet returns the outcome of the named sheet.
func (w WorkbookResult) Sheet(name string) (Outcome, bool) {
	for _, s := range w.Sheets {
		if s.SheetName() == name {
			return s, true
		}
	}
	return nil, false
}

// Messages renders the workbook-level errors.
func (w WorkbookResult) Messages() []string { return messages(w.Errors) }

// Valid reports whether neither the workbook nor any sheet has an error.
func (w WorkbookResult) Valid() bool {
	if len(w.Errors) > 0 {
		return false
	}
	for _, s := range w.Sheets {
		if len(s.Issues()) > 0 {
			return false
		}
	}
	return true
}

// Records returns the typed records of the named sheet. ok is false when the
// sheet is absent from res or holds records of another type.
func Records[R any](res WorkbookResult, sheet string) (records []R, ok bool) {
	out, found := res.Sheet(sheet)
	if !found {
		return nil, false
	}
	typed, ok := out.(Result[R])
	if !ok {
		return nil, false
	}
	return typed.Records, true
}

// ReadBytes reads a workbook held in memory.
func (r *Reader) ReadBytes(data []byte) WorkbookResult {
	return r.open("(bytes)", func(opts excelize.Options) (*excelize.File, error) {
		return excelize.OpenReader(bytes.NewReader(data), opts)
	})
}

// ReadFile reads the workbook at path.
func (r *Reader) ReadFile(path string) WorkbookResult {
	return r.open(path, func(opts excelize.Options) (*excelize.File, error) {
		return excelize.OpenFile(path, opts)
	})
}

// Read reads a workbook from a stream. The stream is consumed but not closed.
func (r *Reader) Read(rd io.Reader) WorkbookResult {
	return r.open("(stream)", func(opts excelize.Options) (*excelize.File, error) {
		return excelize.OpenReader(rd, opts)
	})
}

func (r *Reader) open(source string, openFn func(excelize.Options) (*excelize.File, error)) (res WorkbookResult) {
	res.Source = source

	f, err := openFn(excelize.Options{Password: r.password})
	if err != nil {
		r.logger.Warn("cannot open workbook", "source", source, "error", err)
		res.Errors = append(res.Errors, &OpenError{Source: source, Err: err})
		return res
	}
	defer func() {
		if err := f.Close(); err != nil {
			res.Errors = append(res.Errors, &ReadError{Err: fmt.Errorf("close workbook %s: %w", source, err)})
		}
	}()

	read := r.ReadWorkbook(source, NewExcelWorkbook(f))
	res.Sheets = read.Sheets
	res.Errors = append(res.Errors, read.Errors...)
	return res
}

// ReadWorkbook reads every layout sheet from an already opened workbook.
func (r *Reader) ReadWorkbook(source string, wb Workbook) (res WorkbookResult) {
	res.Source = source

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("workbook read aborted", "source", source, "panic", p)
			res.Errors = append(res.Errors, &ReadError{Err: fmt.Errorf("read workbook %s: %w", source, panicError(p))})
		}
	}()

	for _, sheet := range r.layout.Sheets() {
		out, err := r.readSheet(sheet, wb)
		if err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Sheets = append(res.Sheets, out)
	}
	return res
}

// readSheet isolates one sheet so a panic cannot stop the others.
func (r *Reader) readSheet(sheet SheetReader, wb Workbook) (out Outcome, err error) {
	name := sheet.Spec().Name
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("sheet read aborted", "sheet", name, "panic", p)
			out, err = nil, &ReadError{Sheet: name, Err: panicError(p)}
		}
	}()

	r.logger.Debug("reading sheet", "sheet", name)
	out = sheet.ReadSheet(wb)
	r.logger.Debug("sheet read", "sheet", name, "records", out.Len(), "errors", len(out.Issues()))
	return out, nil
}
