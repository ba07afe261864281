package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type scheduleWriter interface {
	InsertMissing(ctx context.Context, leaseID int, dueDates []time.Time, expected decimal.Decimal) (int, error)
	ListByLease(ctx context.Context, leaseID int) ([]*models.RentSchedule, error)
}

// ScheduleService expands a lease's term into rent obligations
type ScheduleService struct {
	Schedules scheduleWriter
}

func NewScheduleService(schedules scheduleWriter) *ScheduleService {
	return &ScheduleService{Schedules: schedules}
}

// Generate creates the lease's obligations. Safe to retry: periods that
// already exist are left alone and only gaps are filled. Validation runs
// before anything is persisted.
func (s *ScheduleService) Generate(ctx context.Context, lease *models.Lease, customDueDates []time.Time) (int, error) {
	term := ledger.ScheduleTerm{
		StartDate:      lease.StartDate,
		EndDate:        lease.EndDate,
		Frequency:      lease.Frequency,
		DueDay:         lease.DueDay,
		CustomDueDates: customDueDates,
	}
	dueDates, err := ledger.ExpandTerm(term)
	if err != nil {
		return 0, err
	}
	if len(dueDates) == 0 {
		return 0, fmt.Errorf("%w: lease term produces no obligations", ledger.ErrValidation)
	}

	inserted, err := s.Schedules.InsertMissing(ctx, lease.ID, dueDates, lease.InstallmentAmount)
	if err != nil {
		return 0, fmt.Errorf("failed to persist schedule for lease %d: %w", lease.ID, err)
	}
	if inserted < len(dueDates) {
		log.Printf("[Schedule] lease %d: %d of %d periods already existed", lease.ID, len(dueDates)-inserted, len(dueDates))
	}
	return inserted, nil
}

// ParseCustomDueDates converts the request's date strings for generation
func ParseCustomDueDates(dates []string) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		t, err := timeutil.ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("%w: bad custom due date %q", ledger.ErrValidation, d)
		}
		out[i] = t
	}
	return out, nil
}
