package services

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/ledger"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// ChequeService owns the post-dated-cheque state machine. Every transition
// is one transaction: the cheque row is locked, the move validated against
// the transition table, and for CLEARED the payment + allocation commit
// with the status change.
type ChequeService struct {
	DB       *pgxpool.Pool
	Cheques  *repositories.ChequeRepository
	Payments *repositories.PaymentRepository
	Leases   leaseReader
	Clock    timeutil.Clock
}

func NewChequeService(db *pgxpool.Pool, cheques *repositories.ChequeRepository, payments *repositories.PaymentRepository, leases leaseReader, clock timeutil.Clock) *ChequeService {
	if clock == nil {
		clock = timeutil.System
	}
	return &ChequeService{DB: db, Cheques: cheques, Payments: payments, Leases: leases, Clock: clock}
}

// Register stores a cheque handed over at intake; it starts at RECEIVED
func (s *ChequeService) Register(ctx context.Context, req *models.CreateChequeRequest) (*models.Cheque, error) {
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: cheque amount must be positive", ledger.ErrValidation)
	}
	if req.ChequeNumber == "" {
		return nil, fmt.Errorf("%w: cheque number required", ledger.ErrValidation)
	}
	chequeDate, err := timeutil.ParseDate(req.ChequeDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad cheque date %q", ledger.ErrValidation, req.ChequeDate)
	}

	lease, err := s.Leases.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	cheque := &models.Cheque{
		LeaseID:      lease.ID,
		TenantID:     lease.TenantID,
		PropertyID:   lease.PropertyID,
		ChequeNumber: req.ChequeNumber,
		BankName:     req.BankName,
		ChequeDate:   chequeDate,
		Amount:       req.Amount,
		CoversPeriod: req.CoversPeriod,
	}
	if err := s.Cheques.Create(ctx, cheque); err != nil {
		return nil, fmt.Errorf("failed to register cheque: %w", err)
	}
	return cheque, nil
}

// Transition moves a cheque through the state machine. On CLEARED it
// creates the linked Payment exactly once and runs the allocator;
// re-clearing an already-cleared cheque is a no-op that returns the
// existing payment.
func (s *ChequeService) Transition(ctx context.Context, chequeID int, req *models.ChequeTransitionRequest) (*models.Cheque, *models.AllocationResult, error) {
	when := s.Clock.Now()
	if req.Date != "" {
		parsed, err := timeutil.ParseDate(req.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bad transition date %q", ledger.ErrValidation, req.Date)
		}
		when = parsed
	}
	when = timeutil.DateOnly(when)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	cheque, err := s.Cheques.GetForUpdateTx(ctx, tx, chequeID)
	if err != nil {
		return nil, nil, err
	}

	// Replaying a clear must not create a second payment.
	if cheque.Status == models.ChequeCleared && req.Status == models.ChequeCleared {
		existing, err := s.Payments.GetByChequeTx(ctx, tx, cheque.ID)
		if err != nil {
			return nil, nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, err
		}
		return cheque, &models.AllocationResult{Payment: existing}, nil
	}

	if err := ledger.CheckTransition(cheque.Status, req.Status); err != nil {
		return nil, nil, err
	}

	var allocation *models.AllocationResult
	switch req.Status {
	case models.ChequeDeposited:
		cheque.DepositedOn = &when

	case models.ChequeBounced:
		if req.BounceReason == "" {
			return nil, nil, fmt.Errorf("%w: bounce reason required", ledger.ErrValidation)
		}
		cheque.ResolvedOn = &when
		cheque.BounceReason = req.BounceReason

	case models.ChequeCleared:
		cheque.ResolvedOn = &when
		allocation, err = s.clearTx(ctx, tx, cheque)
		if err != nil {
			return nil, nil, err
		}

	case models.ChequeReplaced:
		if err := s.replaceTx(ctx, tx, cheque, req.ReplacementChequeID); err != nil {
			return nil, nil, err
		}
	}

	cheque.Status = req.Status
	if err := s.Cheques.UpdateStateTx(ctx, tx, cheque); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	switch req.Status {
	case models.ChequeCleared:
		metrics.ChequesCleared.Inc()
	case models.ChequeBounced:
		metrics.ChequesBounced.Inc()
	}
	log.Printf("[Cheque] %d moved to %s", cheque.ID, cheque.Status)
	return cheque, allocation, nil
}

// clearTx creates the cheque's payment and allocates it, inside the
// transition's transaction
func (s *ChequeService) clearTx(ctx context.Context, tx pgx.Tx, cheque *models.Cheque) (*models.AllocationResult, error) {
	// Cheques cleared before the payment side effect existed are repaired
	// by the backfill tool; a linked payment appearing here means a
	// concurrent clear already won.
	if existing, err := s.Payments.GetByChequeTx(ctx, tx, cheque.ID); err == nil {
		return nil, fmt.Errorf("%w: cheque %d already has payment %d", ledger.ErrConflict, cheque.ID, existing.ID)
	}

	payment := &models.Payment{
		LeaseID:    cheque.LeaseID,
		TenantID:   cheque.TenantID,
		PropertyID: cheque.PropertyID,
		ChequeID:   &cheque.ID,
		Amount:     cheque.Amount,
		Method:     models.MethodCheque,
		Reference:  fmt.Sprintf("cheque %s (%s)", cheque.ChequeNumber, cheque.BankName),
		PaidOn:     *cheque.ResolvedOn,
	}
	return s.Payments.AllocateTx(ctx, tx, payment, nil, s.Clock.Now())
}

// replaceTx validates and sets the forward pointer for BOUNCED -> REPLACED
func (s *ChequeService) replaceTx(ctx context.Context, tx pgx.Tx, cheque *models.Cheque, replacementID int) error {
	if replacementID == 0 {
		return fmt.Errorf("%w: replacement cheque id required", ledger.ErrValidation)
	}
	replacement, err := s.Cheques.GetForUpdateTx(ctx, tx, replacementID)
	if err != nil {
		return err
	}
	pointers, err := s.Cheques.ReplacementPointersTx(ctx, tx, cheque.LeaseID)
	if err != nil {
		return err
	}
	if err := ledger.CheckReplacement(cheque, replacement, pointers); err != nil {
		return err
	}
	cheque.ReplacedByChequeID = &replacement.ID
	return nil
}

func (s *ChequeService) Get(ctx context.Context, id int) (*models.Cheque, error) {
	return s.Cheques.Get(ctx, id)
}

func (s *ChequeService) ListByLease(ctx context.Context, leaseID int) ([]*models.Cheque, error) {
	return s.Cheques.ListByLease(ctx, leaseID)
}

// Timeline resolves the replacement chain around a cheque for display
func (s *ChequeService) Timeline(ctx context.Context, chequeID int) (*models.ChequeTimeline, error) {
	cheque, err := s.Cheques.Get(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	all, err := s.Cheques.ListByLease(ctx, cheque.LeaseID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Cheque, len(all))
	backPointer := make(map[int]int, len(all)) // replacement -> replaced
	for _, c := range all {
		byID[c.ID] = c
		if c.ReplacedByChequeID != nil {
			backPointer[*c.ReplacedByChequeID] = c.ID
		}
	}

	timeline := &models.ChequeTimeline{Cheque: cheque}
	for prev, ok := backPointer[cheque.ID]; ok; prev, ok = backPointer[prev] {
		timeline.Replaces = append(timeline.Replaces, byID[prev])
	}
	cur := cheque
	for cur.ReplacedByChequeID != nil {
		next, ok := byID[*cur.ReplacedByChequeID]
		if !ok {
			break
		}
		timeline.ReplacedBy = append(timeline.ReplacedBy, next)
		cur = next
	}
	return timeline, nil
}
