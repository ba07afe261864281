package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type fakeScheduleLister struct {
	schedules []*models.RentSchedule
	overdue   []*models.OverdueItem
}

func (f *fakeScheduleLister) ListByLease(_ context.Context, leaseID int) ([]*models.RentSchedule, error) {
	return f.schedules, nil
}

func (f *fakeScheduleLister) ListOverdueByOwner(_ context.Context, ownerID, propertyID int, asOf time.Time, limit int) ([]*models.OverdueItem, error) {
	return f.overdue, nil
}

type fakePaymentLister struct {
	payments []*models.Payment
}

func (f *fakePaymentLister) ListByLease(_ context.Context, leaseID int) ([]*models.Payment, error) {
	return f.payments, nil
}

func ledgerSchedule(id int, due time.Time, expected, paid string) *models.RentSchedule {
	s := &models.RentSchedule{
		ID:             id,
		LeaseID:        7,
		DueDate:        due,
		ExpectedAmount: decimal.RequireFromString(expected),
		Status:         models.ScheduleStatusDue, // stored status, possibly stale
	}
	if paid != "" {
		s.PaidAmount = decimal.NullDecimal{Decimal: decimal.RequireFromString(paid), Valid: true}
	}
	return s
}

func TestLeaseLedger_RecomputesStatusesAtReadTime(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, timeutil.GST)
	schedules := []*models.RentSchedule{
		ledgerSchedule(1, time.Date(2026, time.January, 5, 0, 0, 0, 0, timeutil.GST), "1000", "1000"),
		ledgerSchedule(2, time.Date(2026, time.February, 5, 0, 0, 0, 0, timeutil.GST), "1000", "400"),
		ledgerSchedule(3, time.Date(2026, time.March, 5, 0, 0, 0, 0, timeutil.GST), "1000", ""),
		ledgerSchedule(4, time.Date(2026, time.April, 5, 0, 0, 0, 0, timeutil.GST), "1000", ""),
	}
	svc := NewLedgerService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		&fakeScheduleLister{schedules: schedules},
		&fakePaymentLister{payments: []*models.Payment{
			{ID: 1, LeaseID: 7, Amount: decimal.RequireFromString("1400"), UnallocatedAmount: decimal.RequireFromString("150")},
		}},
		timeutil.Fixed(now),
	)

	view, err := svc.LeaseLedger(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, view.Schedules, 4)

	assert.Equal(t, models.ScheduleStatusPaid, view.Schedules[0].Status)
	assert.Equal(t, models.ScheduleStatusPartial, view.Schedules[1].Status)
	assert.Equal(t, models.ScheduleStatusOverdue, view.Schedules[2].Status)
	assert.Equal(t, models.ScheduleStatusDue, view.Schedules[3].Status)

	assert.True(t, view.Expected.Equal(decimal.RequireFromString("4000")))
	assert.True(t, view.Paid.Equal(decimal.RequireFromString("1400")))
	assert.True(t, view.Outstanding.Equal(decimal.RequireFromString("2600")))
	assert.True(t, view.Unallocated.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, now, view.AsOf)
}

func TestLeaseLedger_HidesObligationsAfterTermination(t *testing.T) {
	terminated := time.Date(2026, time.February, 15, 0, 0, 0, 0, timeutil.GST)
	lease := testLease()
	lease.TerminatedOn = &terminated

	schedules := []*models.RentSchedule{
		ledgerSchedule(1, time.Date(2026, time.January, 5, 0, 0, 0, 0, timeutil.GST), "1000", "1000"),
		ledgerSchedule(2, time.Date(2026, time.February, 5, 0, 0, 0, 0, timeutil.GST), "1000", ""),
		ledgerSchedule(3, time.Date(2026, time.March, 5, 0, 0, 0, 0, timeutil.GST), "1000", ""),
	}
	svc := NewLedgerService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: lease}},
		&fakeScheduleLister{schedules: schedules},
		&fakePaymentLister{},
		timeutil.Fixed(time.Date(2026, time.March, 1, 0, 0, 0, 0, timeutil.GST)),
	)

	view, err := svc.LeaseLedger(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, view.Schedules, 2)
	assert.True(t, view.Expected.Equal(decimal.RequireFromString("2000")))
}

func TestOverdue_SetsOutstandingAndStatus(t *testing.T) {
	items := []*models.OverdueItem{
		{Schedule: ledgerSchedule(1, time.Date(2026, time.January, 5, 0, 0, 0, 0, timeutil.GST), "1000", "400")},
		{Schedule: ledgerSchedule(2, time.Date(2026, time.February, 5, 0, 0, 0, 0, timeutil.GST), "1000", "")},
	}
	svc := NewLedgerService(
		&fakeLeaseReader{leases: map[int]*models.Lease{7: testLease()}},
		&fakeScheduleLister{overdue: items},
		&fakePaymentLister{},
		timeutil.Fixed(time.Date(2026, time.March, 1, 0, 0, 0, 0, timeutil.GST)),
	)

	got, err := svc.Overdue(context.Background(), 2, 0, 50)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.ScheduleStatusPartial, got[0].Schedule.Status)
	assert.True(t, got[0].Outstanding.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, models.ScheduleStatusOverdue, got[1].Schedule.Status)
	assert.True(t, got[1].Outstanding.Equal(decimal.RequireFromString("1000")))
}
