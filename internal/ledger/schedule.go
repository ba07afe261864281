package ledger

import (
	"fmt"
	"sort"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

// ScheduleTerm is the part of a lease the generator needs
type ScheduleTerm struct {
	StartDate time.Time
	EndDate   time.Time
	Frequency models.RentFrequency
	DueDay    int
	// CustomDueDates drives custom-frequency generation; ignored otherwise
	CustomDueDates []time.Time
}

// ValidateTerm rejects malformed terms before anything is persisted
func ValidateTerm(t ScheduleTerm) error {
	if t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("%w: end date %s before start date %s", ErrValidation,
			t.EndDate.Format(timeutil.DateLayout), t.StartDate.Format(timeutil.DateLayout))
	}
	if !t.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrValidation, t.Frequency)
	}
	if t.Frequency != models.FrequencyCustom && (t.DueDay < 1 || t.DueDay > 28) {
		return fmt.Errorf("%w: due day %d outside 1-28", ErrValidation, t.DueDay)
	}
	if t.Frequency == models.FrequencyCustom {
		if len(t.CustomDueDates) == 0 {
			return fmt.Errorf("%w: custom frequency requires explicit due dates", ErrValidation)
		}
		seen := make(map[string]bool, len(t.CustomDueDates))
		for _, d := range t.CustomDueDates {
			key := d.Format(timeutil.DateLayout)
			if seen[key] {
				return fmt.Errorf("%w: duplicate custom due date %s", ErrValidation, key)
			}
			seen[key] = true
			if d.Before(timeutil.DateOnly(t.StartDate)) || d.After(timeutil.DateOnly(t.EndDate)) {
				return fmt.Errorf("%w: custom due date %s outside lease term", ErrValidation, key)
			}
		}
	}
	return nil
}

// ExpandTerm produces the ordered due dates covering the term. The first
// date is anchored to the start date's month, not the start date itself.
// For stepped frequencies the due day is clamped to short months.
func ExpandTerm(t ScheduleTerm) ([]time.Time, error) {
	if err := ValidateTerm(t); err != nil {
		return nil, err
	}

	if t.Frequency == models.FrequencyCustom {
		dates := make([]time.Time, len(t.CustomDueDates))
		for i, d := range t.CustomDueDates {
			dates[i] = timeutil.DateOnly(d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		return dates, nil
	}

	var stepMonths int
	switch t.Frequency {
	case models.FrequencyMonthly:
		stepMonths = 1
	case models.FrequencyQuarterly:
		stepMonths = 3
	case models.FrequencyYearly:
		stepMonths = 12
	}

	start := timeutil.DateOnly(t.StartDate)
	end := timeutil.DateOnly(t.EndDate)

	var dates []time.Time
	year, month := start.Year(), start.Month()
	for {
		due := dueDateIn(year, month, t.DueDay)
		if due.After(end) {
			break
		}
		dates = append(dates, due)
		month += time.Month(stepMonths)
		for month > 12 {
			month -= 12
			year++
		}
	}
	return dates, nil
}

// dueDateIn is the due day within a month, clamped to the month's length
func dueDateIn(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, timeutil.GST).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, timeutil.GST)
}
