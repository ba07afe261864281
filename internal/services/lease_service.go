package services

import (
	"context"
	"fmt"
	"log"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// LeaseService owns the lease workflow: intake generates the rent
// schedule in the same call, termination truncates it
type LeaseService struct {
	Leases     *repositories.LeaseRepository
	Properties *repositories.PropertyRepository
	Schedule   *ScheduleService
	Clock      timeutil.Clock
}

func NewLeaseService(leases *repositories.LeaseRepository, properties *repositories.PropertyRepository, schedule *ScheduleService, clock timeutil.Clock) *LeaseService {
	if clock == nil {
		clock = timeutil.System
	}
	return &LeaseService{Leases: leases, Properties: properties, Schedule: schedule, Clock: clock}
}

// Create validates the request, persists the lease, generates its rent
// obligations and marks the unit occupied. Returns the lease and the
// number of obligations generated.
func (s *LeaseService) Create(ctx context.Context, ownerID int, req *models.CreateLeaseRequest) (*models.Lease, int, error) {
	if !req.Frequency.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown frequency %q", ledger.ErrValidation, req.Frequency)
	}
	if req.InstallmentAmount.Sign() <= 0 {
		return nil, 0, fmt.Errorf("%w: installment amount must be positive", ledger.ErrValidation)
	}

	start, err := timeutil.ParseDate(req.StartDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: bad start date %q", ledger.ErrValidation, req.StartDate)
	}
	end, err := timeutil.ParseDate(req.EndDate)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: bad end date %q", ledger.ErrValidation, req.EndDate)
	}
	customDates, err := ParseCustomDueDates(req.CustomDueDates)
	if err != nil {
		return nil, 0, err
	}

	lease := &models.Lease{
		PropertyID:        req.PropertyID,
		UnitID:            req.UnitID,
		TenantID:          req.TenantID,
		OwnerID:           ownerID,
		StartDate:         start,
		EndDate:           end,
		Frequency:         req.Frequency,
		DueDay:            req.DueDay,
		InstallmentAmount: req.InstallmentAmount,
		Notes:             req.Notes,
	}
	if req.SecurityDeposit != nil {
		lease.SecurityDeposit = decimal.NullDecimal{Decimal: *req.SecurityDeposit, Valid: true}
	}

	// Validate the term before persisting anything
	if _, err := ledger.ExpandTerm(ledger.ScheduleTerm{
		StartDate:      start,
		EndDate:        end,
		Frequency:      req.Frequency,
		DueDay:         req.DueDay,
		CustomDueDates: customDates,
	}); err != nil {
		return nil, 0, err
	}

	if err := s.Leases.Create(ctx, lease); err != nil {
		return nil, 0, fmt.Errorf("failed to create lease: %w", err)
	}

	generated, err := s.Schedule.Generate(ctx, lease, customDates)
	if err != nil {
		return nil, 0, err
	}

	if err := s.Properties.SetUnitOccupied(ctx, lease.UnitID, true); err != nil {
		log.Printf("[Lease] failed to mark unit %d occupied: %v", lease.UnitID, err)
	}

	log.Printf("[Lease] %d created with %d obligations", lease.ID, generated)
	return lease, generated, nil
}

// Regenerate refills schedule gaps for an existing lease, e.g. after a
// partial generation failure. Existing obligations are untouched.
func (s *LeaseService) Regenerate(ctx context.Context, leaseID int, customDueDates []string) (int, error) {
	lease, err := s.Leases.Get(ctx, leaseID)
	if err != nil {
		return 0, err
	}
	customDates, err := ParseCustomDueDates(customDueDates)
	if err != nil {
		return 0, err
	}
	return s.Schedule.Generate(ctx, lease, customDates)
}

// Terminate ends the lease early. Obligations after the termination date
// stay in storage but drop out of every ledger view; money already
// received stays matched.
func (s *LeaseService) Terminate(ctx context.Context, leaseID int, req *models.TerminateLeaseRequest) (*models.Lease, error) {
	lease, err := s.Leases.Get(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.TerminatedOn != nil {
		return nil, fmt.Errorf("%w: lease %d already terminated", ledger.ErrConflict, leaseID)
	}

	on, err := timeutil.ParseDate(req.TerminatedOn)
	if err != nil {
		return nil, fmt.Errorf("%w: bad termination date %q", ledger.ErrValidation, req.TerminatedOn)
	}
	if on.Before(lease.StartDate) {
		return nil, fmt.Errorf("%w: termination date before lease start", ledger.ErrValidation)
	}

	if err := s.Leases.Terminate(ctx, leaseID, on, req.Notes); err != nil {
		return nil, err
	}
	if err := s.Properties.SetUnitOccupied(ctx, lease.UnitID, false); err != nil {
		log.Printf("[Lease] failed to mark unit %d vacant: %v", lease.UnitID, err)
	}

	lease.TerminatedOn = &on
	if req.Notes != "" {
		lease.Notes = req.Notes
	}
	log.Printf("[Lease] %d terminated effective %s", leaseID, on.Format("2006-01-02"))
	return lease, nil
}

func (s *LeaseService) Get(ctx context.Context, id int) (*models.Lease, error) {
	return s.Leases.Get(ctx, id)
}

func (s *LeaseService) ListByOwner(ctx context.Context, ownerID int) ([]*models.Lease, error) {
	return s.Leases.ListByOwner(ctx, ownerID)
}
