package xlsxreader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{"-7", -7, false},
		{"42.0", 42, false},
		{"1e3", 1000, false},
		{"42.5", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Int(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt64(t *testing.T) {
	got, err := Int64("9007199254740993")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), got)

	_, err = Int64("1.25")
	assert.Error(t, err)
}

func TestFloat(t *testing.T) {
	got, err := Float("200.5")
	require.NoError(t, err)
	assert.InDelta(t, 200.5, got, 1e-9)

	_, err = Float("two")
	assert.Error(t, err)
}

func TestBool(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "0": false, "TRUE": true, "false": false} {
		got, err := Bool(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := Bool("maybe")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	got, err := Date("45306")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", got.Format("2006-01-02"))

	got, err = Date("45306.5")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())

	got, err = Date("2023-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.May, got.Month())

	_, err = Date("not a date")
	assert.Error(t, err)

	_, err = Date("-1")
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	got, err := String("as is")
	require.NoError(t, err)
	assert.Equal(t, "as is", got)
}
