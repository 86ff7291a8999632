package xlsxreader

import "strings"

// =============================================================================
// ROW AND CELL ACCESSORS
// =============================================================================
//
// A record decoder receives a *Row and pulls its fields through Text, Value
// and Enum, one call per column, in column order. Each accessor:
//
//   - reads the raw cell at (row, col)
//   - treats empty or whitespace-only text as "absent"
//   - absent + Required  -> FieldRequired error, returns nil
//   - absent + Optional  -> returns nil, no error
//   - present            -> converts; on failure FieldInvalid error, returns nil
//
// Errors are appended to the Row; extraction always continues with the next
// field so a single pass reports every bad cell of the row.
//
// =============================================================================

// Presence states whether a field must have a value.
type Presence bool

const (
	Optional Presence = false
	Required Presence = true
)

// Row is one worksheet row being decoded into a record.
type Row struct {
	wb    Workbook
	sheet string
	index int

	blank bool
	errs  []*FieldError

	// failure is set by the first collaborator error; later reads return
	// nothing and the sheet reader turns it into a ReadError.
	failure error
}

func newRow(wb Workbook, sheet string, index int) *Row {
	return &Row{wb: wb, sheet: sheet, index: index, blank: true}
}

// Index returns the 1-based worksheet row number.
func (r *Row) Index() int { return r.index }

// Sheet returns the worksheet name.
func (r *Row) Sheet() string { return r.sheet }

// Blank reports whether every cell read so far was empty.
func (r *Row) Blank() bool { return r.blank }

// Valid reports whether no field error was recorded.
func (r *Row) Valid() bool { return len(r.errs) == 0 }

// Errors returns the field errors in the order they were produced.
func (r *Row) Errors() []*FieldError {
	out := make([]*FieldError, len(r.errs))
	copy(out, r.errs)
	return out
}

// read fetches the raw text of one cell. ok is false after a collaborator
// failure.
func (r *Row) read(col int) (raw, addr string, ok bool) {
	if r.failure != nil {
		return "", "", false
	}
	raw, addr, err := r.wb.Cell(r.sheet, r.index, col)
	if err != nil {
		r.failure = err
		return "", "", false
	}
	if strings.TrimSpace(raw) != "" {
		r.blank = false
	}
	return raw, addr, true
}

// present reads a cell and applies the required/optional rule. It returns the
// trimmed text and true when the cell holds a value.
func (r *Row) present(col int, label string, p Presence) (raw, trimmed, addr string, ok bool) {
	raw, addr, ok = r.read(col)
	if !ok {
		return "", "", "", false
	}
	trimmed = strings.TrimSpace(raw)
	if trimmed == "" {
		if p == Required {
			r.errs = append(r.errs, &FieldError{Kind: FieldRequired, Label: label, Cell: addr})
		}
		return "", "", addr, false
	}
	return raw, trimmed, addr, true
}

func (r *Row) invalid(label, addr, raw string, err error) {
	r.errs = append(r.errs, &FieldError{Kind: FieldInvalid, Label: label, Cell: addr, Value: raw, Err: err})
}

// Text returns the cell text as stored, or nil when the cell is absent.
func Text(r *Row, col int, label string, p Presence) *string {
	raw, _, _, ok := r.present(col, label, p)
	if !ok {
		return nil
	}
	return &raw
}

// Value converts the trimmed cell text with dec.
func Value[T any](r *Row, col int, label string, p Presence, dec Decoder[T]) *T {
	raw, trimmed, addr, ok := r.present(col, label, p)
	if !ok {
		return nil
	}
	v, err := dec(trimmed)
	if err != nil {
		r.invalid(label, addr, raw, err)
		return nil
	}
	return &v
}

// Enum resolves the trimmed cell text against the members of enum.
func Enum[T Integer](r *Row, col int, label string, p Presence, enum *EnumType[T]) *T {
	raw, trimmed, addr, ok := r.present(col, label, p)
	if !ok {
		return nil
	}
	v, err := enum.Parse(trimmed)
	if err != nil {
		r.invalid(label, addr, raw, err)
		return nil
	}
	return &v
}
