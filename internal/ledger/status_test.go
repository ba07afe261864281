package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

func TestComputeStatus(t *testing.T) {
	expected := decimal.RequireFromString("1000")
	due := day(2026, time.March, 5)

	cases := []struct {
		name    string
		matched string
		now     time.Time
		want    models.ScheduleStatus
	}{
		{"nothing matched before due", "0", day(2026, time.March, 1), models.ScheduleStatusDue},
		{"nothing matched on due date", "0", day(2026, time.March, 5), models.ScheduleStatusDue},
		{"nothing matched past due", "0", day(2026, time.March, 6), models.ScheduleStatusOverdue},
		{"partially matched before due", "400", day(2026, time.March, 1), models.ScheduleStatusPartial},
		{"partially matched past due stays partial", "400", day(2026, time.April, 1), models.ScheduleStatusPartial},
		{"fully matched", "1000", day(2026, time.April, 1), models.ScheduleStatusPaid},
		{"overmatched", "1200", day(2026, time.April, 1), models.ScheduleStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStatus(expected, decimal.RequireFromString(tc.matched), due, tc.now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeStatus_IgnoresTimeOfDay(t *testing.T) {
	expected := decimal.RequireFromString("1000")
	due := day(2026, time.March, 5)
	lateEvening := time.Date(2026, time.March, 5, 23, 30, 0, 0, timeutil.GST)

	got := ComputeStatus(expected, decimal.Zero, due, lateEvening)
	assert.Equal(t, models.ScheduleStatusDue, got)
}

func TestRecompute(t *testing.T) {
	s := schedule(1, "1000", "", day(2026, time.March, 5))

	Recompute(s, decimal.RequireFromString("400"), day(2026, time.March, 1))
	assert.Equal(t, models.ScheduleStatusPartial, s.Status)
	assert.True(t, s.PaidAmount.Valid)
	assert.True(t, s.PaidAmount.Decimal.Equal(decimal.RequireFromString("400")))

	Recompute(s, decimal.Zero, day(2026, time.March, 1))
	assert.Equal(t, models.ScheduleStatusDue, s.Status)
	assert.False(t, s.PaidAmount.Valid)
}
