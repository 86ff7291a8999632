package xlsxreader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fixtureSheet is a worksheet to build: rows maps a 1-based row number to the
// values of columns A, B, C, ... A nil value leaves the cell empty.
type fixtureSheet struct {
	name string
	rows map[int][]any
}

func newFixture(t *testing.T, sheets ...fixtureSheet) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for row, values := range s.rows {
			for col, v := range values {
				if v == nil {
					continue
				}
				addr, err := excelize.CoordinatesToCellName(col+1, row)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(s.name, addr, v))
			}
		}
	}
	return f
}

func buildWorkbook(t *testing.T, sheets ...fixtureSheet) []byte {
	t.Helper()
	f := newFixture(t, sheets...)
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func saveWorkbook(t *testing.T, sheets ...fixtureSheet) string {
	t.Helper()
	f := newFixture(t, sheets...)
	defer f.Close()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func openWorkbook(t *testing.T, sheets ...fixtureSheet) Workbook {
	t.Helper()
	f := newFixture(t, sheets...)
	t.Cleanup(func() { f.Close() })
	return NewExcelWorkbook(f)
}

// =============================================================================
// TEST RECORD
// =============================================================================

type level int

const (
	junior level = 1
	senior level = 2
)

var levels = NewEnumType("level",
	EnumMember[level]{Name: "Junior", Value: junior},
	EnumMember[level]{Name: "Senior", Value: senior},
)

var memberHeaders = []string{"Login", "Level", "Age", "Active", "Since", "Note"}

type member struct {
	Login  string
	Level  level
	Age    *int
	Active *bool
	Since  *time.Time
	Note   *string
}

func decodeMember(r *Row) member {
	var m member
	if v := Text(r, 1, "Login", Required); v != nil {
		m.Login = *v
	}
	if v := Enum(r, 2, "Level", Required, levels); v != nil {
		m.Level = *v
	}
	m.Age = Value(r, 3, "Age", Optional, Int)
	m.Active = Value(r, 4, "Active", Optional, Bool)
	m.Since = Value(r, 5, "Since", Optional, Date)
	m.Note = Text(r, 6, "Note", Optional)
	return m
}

func memberSheet(t *testing.T) *Sheet[member] {
	t.Helper()
	s, err := NewSheet(SheetSpec{Name: "Members", Headers: memberHeaders}, decodeMember)
	require.NoError(t, err)
	return s
}

func memberFixture(rows map[int][]any) fixtureSheet {
	all := map[int][]any{1: {"Login", "Level", "Age", "Active", "Since", "Note"}}
	for k, v := range rows {
		all[k] = v
	}
	return fixtureSheet{name: "Members", rows: all}
}

// =============================================================================
// FAKE WORKBOOK
// =============================================================================

// memWorkbook serves cells from a map and fails on one chosen address.
type memWorkbook struct {
	sheet  string
	cells  map[string]string
	failAt string
}

var errCorrupt = errors.New("corrupt worksheet part")

func (m *memWorkbook) HasSheet(name string) bool { return strings.EqualFold(name, m.sheet) }

func (m *memWorkbook) Cell(_ string, row, col int) (string, string, error) {
	addr, err := CellAddress(row, col)
	if err != nil {
		return "", "", err
	}
	if addr == m.failAt {
		return "", addr, errCorrupt
	}
	return m.cells[addr], addr, nil
}
