package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rental-backend/internal/ledger"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

type leaseReader interface {
	Get(ctx context.Context, id int) (*models.Lease, error)
}

type allocationStore interface {
	Allocate(ctx context.Context, payment *models.Payment, manual []models.ManualMatch, now time.Time) (*models.AllocationResult, error)
	Get(ctx context.Context, id int) (*models.Payment, error)
	ListByLease(ctx context.Context, leaseID int) ([]*models.Payment, error)
	MatchesForPayment(ctx context.Context, paymentID int) ([]*models.PaymentScheduleMatch, error)
}

// AllocationService records payments against a lease's rent obligations
type AllocationService struct {
	Leases   leaseReader
	Payments allocationStore
	Clock    timeutil.Clock
}

func NewAllocationService(leases leaseReader, payments allocationStore, clock timeutil.Clock) *AllocationService {
	if clock == nil {
		clock = timeutil.System
	}
	return &AllocationService{Leases: leases, Payments: payments, Clock: clock}
}

// RecordPayment validates the request, applies the payment atomically and
// returns the created payment, its matches and any unallocated remainder.
// Amounts that no obligation can absorb come back unallocated; the service
// never guesses which future period they belong to.
func (s *AllocationService) RecordPayment(ctx context.Context, req *models.CreatePaymentRequest, userID int) (*models.AllocationResult, error) {
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ledger.ErrValidation)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", ledger.ErrValidation, req.Method)
	}
	if req.Method == models.MethodCheque {
		return nil, fmt.Errorf("%w: cheque proceeds are recorded by clearing the cheque", ledger.ErrValidation)
	}

	lease, err := s.Leases.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	paidOn := s.Clock.Now()
	if req.PaidOn != "" {
		paidOn, err = timeutil.ParseDate(req.PaidOn)
		if err != nil {
			return nil, fmt.Errorf("%w: bad paid_on date %q", ledger.ErrValidation, req.PaidOn)
		}
	}

	payment := &models.Payment{
		LeaseID:    lease.ID,
		TenantID:   lease.TenantID,
		PropertyID: lease.PropertyID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		PaidOn:     timeutil.DateOnly(paidOn),
	}
	if userID > 0 {
		payment.RecordedByUserID = &userID
	}

	result, err := s.Payments.Allocate(ctx, payment, req.Matches, s.Clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.PaymentsAllocated.Inc()
	if result.Unallocated.Sign() > 0 {
		metrics.UnallocatedRemainders.Inc()
		log.Printf("[Allocator] payment %d on lease %d left %s unallocated",
			payment.ID, lease.ID, result.Unallocated.StringFixed(2))
	}
	return result, nil
}

// RecordChequeProceeds creates the Payment for a cleared cheque and
// allocates it with the FIFO plan. Called by the cheque lifecycle inside
// its own transition transaction via the repository; this path is for the
// backfill tool, which repairs cheques outside a transition.
func (s *AllocationService) RecordChequeProceeds(ctx context.Context, cheque *models.Cheque) (*models.AllocationResult, error) {
	paidOn := cheque.ChequeDate
	if cheque.ResolvedOn != nil {
		paidOn = *cheque.ResolvedOn
	}
	payment := &models.Payment{
		LeaseID:    cheque.LeaseID,
		TenantID:   cheque.TenantID,
		PropertyID: cheque.PropertyID,
		ChequeID:   &cheque.ID,
		Amount:     cheque.Amount,
		Method:     models.MethodCheque,
		Reference:  fmt.Sprintf("cheque %s (%s)", cheque.ChequeNumber, cheque.BankName),
		PaidOn:     timeutil.DateOnly(paidOn),
	}
	result, err := s.Payments.Allocate(ctx, payment, nil, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	metrics.PaymentsAllocated.Inc()
	return result, nil
}

func (s *AllocationService) GetPayment(ctx context.Context, id int) (*models.Payment, error) {
	return s.Payments.Get(ctx, id)
}

func (s *AllocationService) ListByLease(ctx context.Context, leaseID int) ([]*models.Payment, error) {
	return s.Payments.ListByLease(ctx, leaseID)
}

func (s *AllocationService) MatchesForPayment(ctx context.Context, paymentID int) ([]*models.PaymentScheduleMatch, error) {
	return s.Payments.MatchesForPayment(ctx, paymentID)
}
