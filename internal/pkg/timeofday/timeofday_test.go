package timeofday

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  TimeOfDay
	}{
		{"08:00:00", New(8, 0, 0)},
		{"07:58", New(7, 58, 0)},
		{"16:00:00.000000", New(16, 0, 0)},
		{" 20:15:30 ", New(20, 15, 30)},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestParse_Invalid(t *testing.T) {
	invalid := []string{"", "8h", "25:00", "08-00", "noon"}
	for _, s := range invalid {
		_, err := Parse(s)
		assert.ErrorIs(t, err, ErrInvalidTime, s)
	}
}

func TestSub(t *testing.T) {
	assert.Equal(t, -10*time.Minute, New(7, 50, 0).Sub(New(8, 0, 0)))
	assert.Equal(t, 35*time.Minute, New(8, 35, 0).Sub(New(8, 0, 0)))
}

func TestOn(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	got := New(8, 30, 0).On(date, loc)
	assert.Equal(t, time.Date(2024, 1, 10, 8, 30, 0, 0, loc), got)
}

func TestPgTypeRoundTrip(t *testing.T) {
	original := New(21, 5, 9)
	v, err := original.TimeValue()
	require.NoError(t, err)

	var scanned TimeOfDay
	require.NoError(t, scanned.ScanTime(v))
	assert.Equal(t, original, scanned)
	assert.Equal(t, "21:05:09", scanned.String())

	assert.Error(t, scanned.ScanTime(pgtype.Time{}))
}
