package timeutil

import (
	"time"
)

// GST is the Gulf Standard Time location (UTC+4)
var GST *time.Location

func init() {
	var err error
	GST, err = time.LoadLocation("Asia/Dubai")
	if err != nil {
		// Fallback: create fixed zone if Asia/Dubai not available
		GST = time.FixedZone("GST", 4*60*60)
	}
}

// Now returns the current time in GST
func Now() time.Time {
	return time.Now().In(GST)
}

// ToGST converts any time to GST
func ToGST(t time.Time) time.Time {
	return t.In(GST)
}

// ParseDate parses a YYYY-MM-DD string as a GST date
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, GST)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// DateOnly truncates a time to midnight GST
func DateOnly(t time.Time) time.Time {
	g := t.In(GST)
	return time.Date(g.Year(), g.Month(), g.Day(), 0, 0, 0, 0, GST)
}

// StartOfMonth returns midnight GST on the first of the month containing t
func StartOfMonth(t time.Time) time.Time {
	g := t.In(GST)
	return time.Date(g.Year(), g.Month(), 1, 0, 0, 0, 0, GST)
}

// EndOfMonth returns the last instant of the month containing t
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfQuarter returns midnight GST on the first day of t's calendar quarter
func StartOfQuarter(t time.Time) time.Time {
	g := t.In(GST)
	qm := time.Month((int(g.Month())-1)/3*3 + 1)
	return time.Date(g.Year(), qm, 1, 0, 0, 0, 0, GST)
}

// EndOfQuarter returns the last instant of t's calendar quarter
func EndOfQuarter(t time.Time) time.Time {
	return StartOfQuarter(t).AddDate(0, 3, 0).Add(-time.Nanosecond)
}

// Common layouts
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
