package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/models"
)

func schedule(id int, expected string, paid string, due time.Time) *models.RentSchedule {
	s := &models.RentSchedule{
		ID:             id,
		DueDate:        due,
		ExpectedAmount: decimal.RequireFromString(expected),
	}
	if paid != "" {
		s.PaidAmount = decimal.NullDecimal{Decimal: decimal.RequireFromString(paid), Valid: true}
	}
	return s
}

func TestPlanAuto_SplitsAcrossObligations(t *testing.T) {
	schedules := []*models.RentSchedule{
		schedule(1, "1000", "", day(2026, time.January, 5)),
		schedule(2, "1000", "", day(2026, time.February, 5)),
	}

	plan, remainder, err := PlanAuto(schedules, decimal.RequireFromString("1500"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 1, plan[0].ScheduleID)
	assert.True(t, plan[0].Amount.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, 2, plan[1].ScheduleID)
	assert.True(t, plan[1].Amount.Equal(decimal.RequireFromString("500")))
	assert.True(t, remainder.IsZero())
}

func TestPlanAuto_SkipsPaidAndTopsUpPartial(t *testing.T) {
	schedules := []*models.RentSchedule{
		schedule(1, "1000", "1000", day(2026, time.January, 5)),
		schedule(2, "1000", "400", day(2026, time.February, 5)),
		schedule(3, "1000", "", day(2026, time.March, 5)),
	}

	plan, remainder, err := PlanAuto(schedules, decimal.RequireFromString("700"))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 2, plan[0].ScheduleID)
	assert.True(t, plan[0].Amount.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, 3, plan[1].ScheduleID)
	assert.True(t, plan[1].Amount.Equal(decimal.RequireFromString("100")))
	assert.True(t, remainder.IsZero())
}

func TestPlanAuto_OverpaymentStaysUnallocated(t *testing.T) {
	schedules := []*models.RentSchedule{
		schedule(1, "1000", "1000", day(2026, time.January, 5)),
	}

	plan, remainder, err := PlanAuto(schedules, decimal.RequireFromString("250"))
	require.NoError(t, err)
	assert.Empty(t, plan)
	assert.True(t, remainder.Equal(decimal.RequireFromString("250")))
}

func TestPlanAuto_RejectsNonPositiveAmount(t *testing.T) {
	_, _, err := PlanAuto(nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlanManual_AppliesCallerOrder(t *testing.T) {
	schedules := []*models.RentSchedule{
		schedule(1, "1000", "", day(2026, time.January, 5)),
		schedule(2, "1000", "", day(2026, time.February, 5)),
	}
	matches := []models.ManualMatch{
		{ScheduleID: 2, Amount: decimal.RequireFromString("800")},
		{ScheduleID: 1, Amount: decimal.RequireFromString("100")},
	}

	plan, remainder, err := PlanManual(schedules, decimal.RequireFromString("1000"), matches)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, 2, plan[0].ScheduleID)
	assert.Equal(t, 1, plan[1].ScheduleID)
	assert.True(t, remainder.Equal(decimal.RequireFromString("100")))
}

func TestPlanManual_Rejections(t *testing.T) {
	schedules := []*models.RentSchedule{
		schedule(1, "1000", "600", day(2026, time.January, 5)),
	}

	t.Run("unknown obligation", func(t *testing.T) {
		_, _, err := PlanManual(schedules, decimal.RequireFromString("100"),
			[]models.ManualMatch{{ScheduleID: 99, Amount: decimal.RequireFromString("100")}})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("exceeds remaining balance", func(t *testing.T) {
		_, _, err := PlanManual(schedules, decimal.RequireFromString("500"),
			[]models.ManualMatch{{ScheduleID: 1, Amount: decimal.RequireFromString("500")}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("exceeds payment amount", func(t *testing.T) {
		_, _, err := PlanManual(schedules, decimal.RequireFromString("100"),
			[]models.ManualMatch{{ScheduleID: 1, Amount: decimal.RequireFromString("200")}})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("obligation matched twice", func(t *testing.T) {
		_, _, err := PlanManual(schedules, decimal.RequireFromString("400"), []models.ManualMatch{
			{ScheduleID: 1, Amount: decimal.RequireFromString("200")},
			{ScheduleID: 1, Amount: decimal.RequireFromString("200")},
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("no matches supplied", func(t *testing.T) {
		_, _, err := PlanManual(schedules, decimal.RequireFromString("100"), nil)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
