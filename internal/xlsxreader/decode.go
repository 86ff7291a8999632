package xlsxreader

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// VALUE DECODERS
// =============================================================================
//
// A Decoder turns the trimmed raw text of a non-empty cell into a typed value.
// Any returned error marks the field invalid; the error itself is kept on the
// FieldError for callers that want the detail, but is not part of the message.
//
// CUSTOMIZATION:
//   Any func(string) (T, error) can be used as a decoder. The ones below cover
//   the value types that appear in spreadsheets.
//
// =============================================================================

// Decoder converts raw cell text into a value of type T.
type Decoder[T any] func(raw string) (T, error)

// Int decodes a whole number. Excel stores every number as a float, so "42"
// and "42.0" are both accepted; "42.5" is rejected.
func Int(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return n, nil
}

// Int64 is Int for 64-bit values.
func Int64(raw string) (int64, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, err
	}
	n := int64(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return n, nil
}

// Float decodes a decimal number.
func Float(raw string) (float64, error) {
	return cast.ToFloat64E(raw)
}

// Bool decodes "1"/"0" (the raw form of boolean cells) as well as the textual
// forms accepted by strconv.ParseBool.
func Bool(raw string) (bool, error) {
	return cast.ToBoolE(raw)
}

// String accepts any text. Useful with Value when a Decoder is required.
func String(raw string) (string, error) {
	return raw, nil
}

// Date decodes a date cell. Date-formatted cells carry an Excel serial number
// in their raw value; text cells are parsed with the usual layouts
// (RFC 3339, "2006-01-02", "02 Jan 2006", ...).
func Date(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	return cast.ToTimeE(raw)
}
