package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type fakeScheduleWriter struct {
	existing map[string]bool // due dates already present, keyed by date string
	leaseID  int
	dueDates []time.Time
	expected decimal.Decimal
}

func (f *fakeScheduleWriter) InsertMissing(_ context.Context, leaseID int, dueDates []time.Time, expected decimal.Decimal) (int, error) {
	f.leaseID = leaseID
	f.dueDates = dueDates
	f.expected = expected
	inserted := 0
	for _, d := range dueDates {
		if !f.existing[d.Format(timeutil.DateLayout)] {
			inserted++
		}
	}
	return inserted, nil
}

func (f *fakeScheduleWriter) ListByLease(_ context.Context, leaseID int) ([]*models.RentSchedule, error) {
	return nil, nil
}

func monthlyLease() *models.Lease {
	return &models.Lease{
		ID:                7,
		StartDate:         time.Date(2026, time.January, 1, 0, 0, 0, 0, timeutil.GST),
		EndDate:           time.Date(2026, time.March, 31, 0, 0, 0, 0, timeutil.GST),
		Frequency:         models.FrequencyMonthly,
		DueDay:            5,
		InstallmentAmount: decimal.RequireFromString("3500"),
	}
}

func TestGenerate_MonthlyLease(t *testing.T) {
	writer := &fakeScheduleWriter{}
	svc := NewScheduleService(writer)

	inserted, err := svc.Generate(context.Background(), monthlyLease(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)
	assert.Equal(t, 7, writer.leaseID)
	require.Len(t, writer.dueDates, 3)
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, timeutil.GST), writer.dueDates[0])
	assert.True(t, writer.expected.Equal(decimal.RequireFromString("3500")))
}

func TestGenerate_RetryFillsOnlyGaps(t *testing.T) {
	writer := &fakeScheduleWriter{existing: map[string]bool{
		"2026-01-05": true,
		"2026-02-05": true,
	}}
	svc := NewScheduleService(writer)

	inserted, err := svc.Generate(context.Background(), monthlyLease(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestGenerate_RejectsEmptyTerm(t *testing.T) {
	lease := monthlyLease()
	lease.EndDate = time.Date(2026, time.January, 3, 0, 0, 0, 0, timeutil.GST)
	svc := NewScheduleService(&fakeScheduleWriter{})

	_, err := svc.Generate(context.Background(), lease, nil)
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestGenerate_CustomFrequencyUsesSuppliedDates(t *testing.T) {
	lease := monthlyLease()
	lease.Frequency = models.FrequencyCustom
	lease.DueDay = 0
	lease.EndDate = time.Date(2026, time.December, 31, 0, 0, 0, 0, timeutil.GST)

	custom, err := ParseCustomDueDates([]string{"2026-06-01", "2026-01-15"})
	require.NoError(t, err)

	writer := &fakeScheduleWriter{}
	svc := NewScheduleService(writer)
	inserted, err := svc.Generate(context.Background(), lease, custom)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
	// Generator orders custom dates chronologically
	assert.Equal(t, time.Date(2026, time.January, 15, 0, 0, 0, 0, timeutil.GST), writer.dueDates[0])
}

func TestParseCustomDueDates_BadDate(t *testing.T) {
	_, err := ParseCustomDueDates([]string{"15-01-2026"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}
