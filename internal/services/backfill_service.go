package services

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// BackfillReport summarizes one repair run
type BackfillReport struct {
	DryRun             bool            `json:"dry_run"`
	ChequesRepaired    int             `json:"cheques_repaired"`
	ChequeIDs          []int           `json:"cheque_ids,omitempty"`
	RemaindersDrained  int             `json:"remainders_drained"`
	DrainedPaymentIDs  []int           `json:"drained_payment_ids,omitempty"`
	AmountReallocated  decimal.Decimal `json:"amount_reallocated"`
}

// BackfillService repairs historical data: cheques that were marked
// cleared before clearing produced payments, and payment remainders that
// can now be matched against obligations generated later.
type BackfillService struct {
	Cheques   *repositories.ChequeRepository
	Payments  *repositories.PaymentRepository
	Allocator *AllocationService
	Clock     timeutil.Clock
}

func NewBackfillService(cheques *repositories.ChequeRepository, payments *repositories.PaymentRepository, allocator *AllocationService, clock timeutil.Clock) *BackfillService {
	if clock == nil {
		clock = timeutil.System
	}
	return &BackfillService{Cheques: cheques, Payments: payments, Allocator: allocator, Clock: clock}
}

// Run executes both repair passes. With dryRun set it only reports what
// would change.
func (s *BackfillService) Run(ctx context.Context, dryRun bool) (*BackfillReport, error) {
	report := &BackfillReport{DryRun: dryRun, AmountReallocated: decimal.Zero}

	if err := s.repairCheques(ctx, dryRun, report); err != nil {
		return nil, err
	}
	if err := s.drainRemainders(ctx, dryRun, report); err != nil {
		return nil, err
	}

	log.Printf("[Backfill] dry_run=%t cheques=%d remainders=%d reallocated=%s",
		dryRun, report.ChequesRepaired, report.RemaindersDrained, report.AmountReallocated.StringFixed(2))
	return report, nil
}

func (s *BackfillService) repairCheques(ctx context.Context, dryRun bool, report *BackfillReport) error {
	orphaned, err := s.Cheques.ListClearedWithoutPayment(ctx)
	if err != nil {
		return err
	}
	for _, cheque := range orphaned {
		report.ChequesRepaired++
		report.ChequeIDs = append(report.ChequeIDs, cheque.ID)
		if dryRun {
			continue
		}
		result, err := s.Allocator.RecordChequeProceeds(ctx, cheque)
		if err != nil {
			return err
		}
		report.AmountReallocated = report.AmountReallocated.Add(cheque.Amount.Sub(result.Unallocated))
		log.Printf("[Backfill] cheque %d: payment %d created, %s unallocated",
			cheque.ID, result.Payment.ID, result.Unallocated.StringFixed(2))
	}
	return nil
}

func (s *BackfillService) drainRemainders(ctx context.Context, dryRun bool, report *BackfillReport) error {
	withRemainder, err := s.Payments.ListWithRemainder(ctx)
	if err != nil {
		return err
	}
	now := s.Clock.Now()
	for _, payment := range withRemainder {
		if dryRun {
			report.RemaindersDrained++
			report.DrainedPaymentIDs = append(report.DrainedPaymentIDs, payment.ID)
			continue
		}
		result, err := s.Payments.DrainUnallocated(ctx, payment.ID, now)
		if err != nil {
			return err
		}
		drained := payment.UnallocatedAmount.Sub(result.Unallocated)
		if drained.Sign() <= 0 {
			// Still no open obligation for this lease, leave it
			continue
		}
		report.RemaindersDrained++
		report.DrainedPaymentIDs = append(report.DrainedPaymentIDs, payment.ID)
		report.AmountReallocated = report.AmountReallocated.Add(drained)
		log.Printf("[Backfill] payment %d: drained %s into %d obligation(s)",
			payment.ID, drained.StringFixed(2), len(result.Matches))
	}
	return nil
}
