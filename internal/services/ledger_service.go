package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type scheduleLister interface {
	ListByLease(ctx context.Context, leaseID int) ([]*models.RentSchedule, error)
	ListOverdueByOwner(ctx context.Context, ownerID, propertyID int, asOf time.Time, limit int) ([]*models.OverdueItem, error)
}

type paymentLister interface {
	ListByLease(ctx context.Context, leaseID int) ([]*models.Payment, error)
}

// LedgerService serves the read side. Stored statuses go stale when time
// passes without a write (an obligation slides from due to overdue), so
// every read reapplies the status rule against the current clock.
type LedgerService struct {
	Leases    leaseReader
	Schedules scheduleLister
	Payments  paymentLister
	Clock     timeutil.Clock
}

func NewLedgerService(leases leaseReader, schedules scheduleLister, payments paymentLister, clock timeutil.Clock) *LedgerService {
	if clock == nil {
		clock = timeutil.System
	}
	return &LedgerService{Leases: leases, Schedules: schedules, Payments: payments, Clock: clock}
}

// LeaseLedger assembles the full per-lease view. Obligations falling due
// after an early termination date are hidden, not deleted.
func (s *LedgerService) LeaseLedger(ctx context.Context, leaseID int) (*models.LeaseLedger, error) {
	lease, err := s.Leases.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.Schedules.ListByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments.ListByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	view := &models.LeaseLedger{
		Lease:       lease,
		Payments:    payments,
		Expected:    decimal.Zero,
		Paid:        decimal.Zero,
		Outstanding: decimal.Zero,
		Unallocated: decimal.Zero,
		AsOf:        now,
	}

	for _, sched := range schedules {
		if lease.TerminatedOn != nil && sched.DueDate.After(*lease.TerminatedOn) {
			continue
		}
		matched := decimal.Zero
		if sched.PaidAmount.Valid {
			matched = sched.PaidAmount.Decimal
		}
		sched.Status = ledger.ComputeStatus(sched.ExpectedAmount, matched, sched.DueDate, now)
		view.Schedules = append(view.Schedules, sched)
		view.Expected = view.Expected.Add(sched.ExpectedAmount)
		view.Paid = view.Paid.Add(matched)
	}
	view.Outstanding = view.Expected.Sub(view.Paid)

	for _, p := range payments {
		view.Unallocated = view.Unallocated.Add(p.UnallocatedAmount)
	}
	return view, nil
}

// Overdue lists open obligations past their due date, oldest first.
// propertyID 0 means all of the owner's properties.
func (s *LedgerService) Overdue(ctx context.Context, ownerID, propertyID, limit int) ([]*models.OverdueItem, error) {
	items, err := s.Schedules.ListOverdueByOwner(ctx, ownerID, propertyID, timeutil.DateOnly(s.Clock.Now()), limit)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.Schedule.Status = models.ScheduleStatusOverdue
		if it.Schedule.PaidAmount.Valid && it.Schedule.PaidAmount.Decimal.Sign() > 0 {
			it.Schedule.Status = models.ScheduleStatusPartial
		}
		it.Outstanding = it.Schedule.Remaining()
	}
	return items, nil
}
