package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, timeutil.GST)
}

func TestExpandTerm_Monthly(t *testing.T) {
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2026, time.January, 1),
		EndDate:   day(2026, time.March, 31),
		Frequency: models.FrequencyMonthly,
		DueDay:    5,
	})
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, day(2026, time.January, 5), dates[0])
	assert.Equal(t, day(2026, time.February, 5), dates[1])
	assert.Equal(t, day(2026, time.March, 5), dates[2])
}

func TestExpandTerm_AnchorsToStartMonth(t *testing.T) {
	// The first due date sits in the start date's month even when the
	// lease begins after the due day.
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2026, time.January, 15),
		EndDate:   day(2026, time.February, 28),
		Frequency: models.FrequencyMonthly,
		DueDay:    5,
	})
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, day(2026, time.January, 5), dates[0])
}

func TestExpandTerm_Quarterly(t *testing.T) {
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2026, time.January, 1),
		EndDate:   day(2026, time.December, 31),
		Frequency: models.FrequencyQuarterly,
		DueDay:    1,
	})
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, day(2026, time.April, 1), dates[1])
	assert.Equal(t, day(2026, time.October, 1), dates[3])
}

func TestExpandTerm_YearlyCrossesYearBoundary(t *testing.T) {
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2025, time.June, 1),
		EndDate:   day(2027, time.June, 30),
		Frequency: models.FrequencyYearly,
		DueDay:    15,
	})
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, day(2025, time.June, 15), dates[0])
	assert.Equal(t, day(2026, time.June, 15), dates[1])
	assert.Equal(t, day(2027, time.June, 15), dates[2])
}

func TestExpandTerm_EmptyWhenTermEndsBeforeFirstDueDate(t *testing.T) {
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2026, time.January, 1),
		EndDate:   day(2026, time.January, 5),
		Frequency: models.FrequencyMonthly,
		DueDay:    10,
	})
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestExpandTerm_CustomSortsDates(t *testing.T) {
	dates, err := ExpandTerm(ScheduleTerm{
		StartDate: day(2026, time.January, 1),
		EndDate:   day(2026, time.December, 31),
		Frequency: models.FrequencyCustom,
		CustomDueDates: []time.Time{
			day(2026, time.September, 1),
			day(2026, time.March, 1),
			day(2026, time.June, 1),
		},
	})
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, day(2026, time.March, 1), dates[0])
	assert.Equal(t, day(2026, time.September, 1), dates[2])
}

func TestValidateTerm_Rejections(t *testing.T) {
	cases := []struct {
		name string
		term ScheduleTerm
	}{
		{
			name: "end before start",
			term: ScheduleTerm{
				StartDate: day(2026, time.March, 1),
				EndDate:   day(2026, time.January, 1),
				Frequency: models.FrequencyMonthly,
				DueDay:    1,
			},
		},
		{
			name: "unknown frequency",
			term: ScheduleTerm{
				StartDate: day(2026, time.January, 1),
				EndDate:   day(2026, time.December, 31),
				Frequency: models.RentFrequency("weekly"),
				DueDay:    1,
			},
		},
		{
			name: "due day past 28",
			term: ScheduleTerm{
				StartDate: day(2026, time.January, 1),
				EndDate:   day(2026, time.December, 31),
				Frequency: models.FrequencyMonthly,
				DueDay:    31,
			},
		},
		{
			name: "custom without dates",
			term: ScheduleTerm{
				StartDate: day(2026, time.January, 1),
				EndDate:   day(2026, time.December, 31),
				Frequency: models.FrequencyCustom,
			},
		},
		{
			name: "custom date outside term",
			term: ScheduleTerm{
				StartDate:      day(2026, time.January, 1),
				EndDate:        day(2026, time.June, 30),
				Frequency:      models.FrequencyCustom,
				CustomDueDates: []time.Time{day(2026, time.July, 1)},
			},
		},
		{
			name: "duplicate custom date",
			term: ScheduleTerm{
				StartDate: day(2026, time.January, 1),
				EndDate:   day(2026, time.December, 31),
				Frequency: models.FrequencyCustom,
				CustomDueDates: []time.Time{
					day(2026, time.March, 1),
					day(2026, time.March, 1),
				},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTerm(tc.term)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
