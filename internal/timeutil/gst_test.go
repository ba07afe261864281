package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly_ConvertsToGSTFirst(t *testing.T) {
	// 22:30 UTC is already the next day in GST (UTC+4)
	utc := time.Date(2026, time.March, 5, 22, 30, 0, 0, time.UTC)
	got := DateOnly(utc)
	assert.Equal(t, time.Date(2026, time.March, 6, 0, 0, 0, 0, GST), got)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 0, 0, GST), got)

	_, err = ParseDate("05/03/2026")
	assert.Error(t, err)
}

func TestMonthBounds(t *testing.T) {
	mid := time.Date(2026, time.February, 14, 12, 0, 0, 0, GST)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, GST), StartOfMonth(mid))
	assert.Equal(t, time.February, EndOfMonth(mid).Month())
	assert.Equal(t, 28, EndOfMonth(mid).Day())
}

func TestQuarterBounds(t *testing.T) {
	mid := time.Date(2026, time.August, 10, 0, 0, 0, 0, GST)
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, GST), StartOfQuarter(mid))
	assert.Equal(t, time.September, EndOfQuarter(mid).Month())
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2026, time.January, 1, 9, 0, 0, 0, GST)
	assert.Equal(t, at, Fixed(at).Now())
}
