package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// Allocate records a payment and applies it to the lease's obligations as a
// single transaction. With manual nil the FIFO auto-match plan runs.
func (r *PaymentRepository) Allocate(ctx context.Context, payment *models.Payment, manual []models.ManualMatch, now time.Time) (*models.AllocationResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result, err := r.AllocateTx(ctx, tx, payment, manual, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// AllocateTx is Allocate inside a caller-owned transaction; the cheque
// lifecycle uses it so a CLEARED transition and its payment commit together.
//
// The lease's obligations are re-read under FOR UPDATE before any match is
// written, so two payments racing on the same lease serialize and never see
// the same remaining balance.
func (r *PaymentRepository) AllocateTx(ctx context.Context, tx pgx.Tx, payment *models.Payment, manual []models.ManualMatch, now time.Time) (*models.AllocationResult, error) {
	// Lock the lease's obligations, oldest due date first.
	rows, err := tx.Query(ctx, `
		SELECT id, lease_id, due_date, expected_amount, paid_amount, status, created_at
		FROM rent_schedules
		WHERE lease_id = $1
		ORDER BY due_date
		FOR UPDATE`, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	schedules, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}

	// Recompute matched totals from the append-only ledger rather than
	// trusting the denormalized paid_amount.
	matched, err := matchedTotals(ctx, tx, schedules)
	if err != nil {
		return nil, err
	}
	for _, s := range schedules {
		if total, ok := matched[s.ID]; ok && total.Sign() > 0 {
			s.PaidAmount = decimal.NullDecimal{Decimal: total, Valid: true}
		} else {
			s.PaidAmount = decimal.NullDecimal{}
		}
	}

	var plan []ledger.PlannedMatch
	var remainder decimal.Decimal
	if len(manual) > 0 {
		plan, remainder, err = ledger.PlanManual(schedules, payment.Amount, manual)
	} else {
		plan, remainder, err = ledger.PlanAuto(schedules, payment.Amount)
	}
	if err != nil {
		return nil, err
	}

	payment.UnallocatedAmount = remainder
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (lease_id, tenant_id, property_id, cheque_id, amount,
		                      unallocated_amount, method, reference, paid_on, recorded_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		payment.LeaseID, payment.TenantID, payment.PropertyID, payment.ChequeID,
		payment.Amount, payment.UnallocatedAmount, payment.Method, payment.Reference,
		payment.PaidOn, payment.RecordedByUserID,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	result := &models.AllocationResult{Payment: payment, Unallocated: remainder}
	byID := make(map[int]*models.RentSchedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}

	for _, p := range plan {
		match := &models.PaymentScheduleMatch{
			PaymentID:  payment.ID,
			ScheduleID: p.ScheduleID,
			Amount:     p.Amount,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO payment_schedule_matches (payment_id, schedule_id, amount)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			match.PaymentID, match.ScheduleID, match.Amount,
		).Scan(&match.ID, &match.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to record match: %w", err)
		}
		result.Matches = append(result.Matches, match)

		// Recompute the obligation's derived fields from the new total.
		s := byID[p.ScheduleID]
		total := matched[s.ID].Add(p.Amount)
		ledger.Recompute(s, total, now)
		_, err = tx.Exec(ctx, `
			UPDATE rent_schedules SET paid_amount = $2, status = $3 WHERE id = $1`,
			s.ID, s.PaidAmount, s.Status)
		if err != nil {
			return nil, err
		}
		result.Touched = append(result.Touched, s)
	}

	return result, nil
}

// DrainUnallocated re-runs auto allocation for a payment's recorded
// remainder, used by the backfill tool once new obligations exist.
func (r *PaymentRepository) DrainUnallocated(ctx context.Context, paymentID int, now time.Time) (*models.AllocationResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	payment, err := getPaymentTx(ctx, tx, paymentID, true)
	if err != nil {
		return nil, err
	}
	if payment.UnallocatedAmount.Sign() <= 0 {
		return &models.AllocationResult{Payment: payment, Unallocated: decimal.Zero}, tx.Commit(ctx)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, lease_id, due_date, expected_amount, paid_amount, status, created_at
		FROM rent_schedules
		WHERE lease_id = $1
		ORDER BY due_date
		FOR UPDATE`, payment.LeaseID)
	if err != nil {
		return nil, err
	}
	schedules, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}
	matched, err := matchedTotals(ctx, tx, schedules)
	if err != nil {
		return nil, err
	}
	for _, s := range schedules {
		if total, ok := matched[s.ID]; ok && total.Sign() > 0 {
			s.PaidAmount = decimal.NullDecimal{Decimal: total, Valid: true}
		} else {
			s.PaidAmount = decimal.NullDecimal{}
		}
	}

	// A payment never touches the same obligation twice; skip the ones it
	// already matched.
	already, err := matchedScheduleIDs(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	var candidates []*models.RentSchedule
	for _, s := range schedules {
		if !already[s.ID] {
			candidates = append(candidates, s)
		}
	}

	plan, remainder, err := ledger.PlanAuto(candidates, payment.UnallocatedAmount)
	if err != nil {
		return nil, err
	}

	result := &models.AllocationResult{Payment: payment, Unallocated: remainder}
	byID := make(map[int]*models.RentSchedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}
	for _, p := range plan {
		match := &models.PaymentScheduleMatch{PaymentID: paymentID, ScheduleID: p.ScheduleID, Amount: p.Amount}
		err = tx.QueryRow(ctx, `
			INSERT INTO payment_schedule_matches (payment_id, schedule_id, amount)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			match.PaymentID, match.ScheduleID, match.Amount,
		).Scan(&match.ID, &match.CreatedAt)
		if err != nil {
			return nil, err
		}
		result.Matches = append(result.Matches, match)

		s := byID[p.ScheduleID]
		ledger.Recompute(s, matched[s.ID].Add(p.Amount), now)
		if _, err := tx.Exec(ctx, `
			UPDATE rent_schedules SET paid_amount = $2, status = $3 WHERE id = $1`,
			s.ID, s.PaidAmount, s.Status); err != nil {
			return nil, err
		}
		result.Touched = append(result.Touched, s)
	}

	payment.UnallocatedAmount = remainder
	if _, err := tx.Exec(ctx, `
		UPDATE payments SET unallocated_amount = $2 WHERE id = $1`,
		paymentID, remainder); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PaymentRepository) Get(ctx context.Context, id int) (*models.Payment, error) {
	return getPayment(ctx, r.DB, id)
}

// GetByCheque returns the payment linked to a cheque, or ErrNotFound
func (r *PaymentRepository) GetByCheque(ctx context.Context, chequeID int) (*models.Payment, error) {
	row := r.DB.QueryRow(ctx, paymentSelect+` WHERE cheque_id = $1`, chequeID)
	return scanPayment(row)
}

// GetByChequeTx is GetByCheque inside a caller-owned transaction
func (r *PaymentRepository) GetByChequeTx(ctx context.Context, tx pgx.Tx, chequeID int) (*models.Payment, error) {
	row := tx.QueryRow(ctx, paymentSelect+` WHERE cheque_id = $1`, chequeID)
	return scanPayment(row)
}

func (r *PaymentRepository) ListByLease(ctx context.Context, leaseID int) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx, paymentSelect+`
		WHERE lease_id = $1
		ORDER BY paid_on DESC`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListWithRemainder finds payments still carrying an unallocated remainder
func (r *PaymentRepository) ListWithRemainder(ctx context.Context) ([]*models.Payment, error) {
	rows, err := r.DB.Query(ctx, paymentSelect+`
		WHERE unallocated_amount > 0
		ORDER BY paid_on`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// MatchesForPayment returns the allocation rows a payment produced
func (r *PaymentRepository) MatchesForPayment(ctx context.Context, paymentID int) ([]*models.PaymentScheduleMatch, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, payment_id, schedule_id, amount, created_at
		FROM payment_schedule_matches
		WHERE payment_id = $1
		ORDER BY id`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.PaymentScheduleMatch
	for rows.Next() {
		m := &models.PaymentScheduleMatch{}
		if err := rows.Scan(&m.ID, &m.PaymentID, &m.ScheduleID, &m.Amount, &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const paymentSelect = `
	SELECT id, lease_id, tenant_id, property_id, cheque_id, amount,
	       unallocated_amount, method, COALESCE(reference, ''), paid_on,
	       recorded_by_user_id, created_at
	FROM payments`

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getPayment(ctx context.Context, q queryRower, id int) (*models.Payment, error) {
	row := q.QueryRow(ctx, paymentSelect+` WHERE id = $1`, id)
	return scanPayment(row)
}

func getPaymentTx(ctx context.Context, tx pgx.Tx, id int, forUpdate bool) (*models.Payment, error) {
	query := paymentSelect + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return scanPayment(tx.QueryRow(ctx, query, id))
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.LeaseID, &p.TenantID, &p.PropertyID, &p.ChequeID,
		&p.Amount, &p.UnallocatedAmount, &p.Method, &p.Reference, &p.PaidOn,
		&p.RecordedByUserID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: payment", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectPayments(rows pgx.Rows) ([]*models.Payment, error) {
	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// matchedTotals sums existing matches per obligation
func matchedTotals(ctx context.Context, tx pgx.Tx, schedules []*models.RentSchedule) (map[int]decimal.Decimal, error) {
	totals := make(map[int]decimal.Decimal, len(schedules))
	if len(schedules) == 0 {
		return totals, nil
	}
	ids := make([]int, len(schedules))
	for i, s := range schedules {
		ids[i] = s.ID
		totals[s.ID] = decimal.Zero
	}
	rows, err := tx.Query(ctx, `
		SELECT schedule_id, COALESCE(SUM(amount), 0)
		FROM payment_schedule_matches
		WHERE schedule_id = ANY($1)
		GROUP BY schedule_id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int
		var total decimal.Decimal
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		totals[id] = total
	}
	return totals, rows.Err()
}

func matchedScheduleIDs(ctx context.Context, tx pgx.Tx, paymentID int) (map[int]bool, error) {
	rows, err := tx.Query(ctx, `
		SELECT schedule_id FROM payment_schedule_matches WHERE payment_id = $1`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seen := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}
