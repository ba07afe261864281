package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
)

type ChequeRepository struct {
	DB *pgxpool.Pool
}

func NewChequeRepository(db *pgxpool.Pool) *ChequeRepository {
	return &ChequeRepository{DB: db}
}

const chequeSelect = `
	SELECT c.id, c.lease_id, c.tenant_id, c.property_id, c.cheque_number,
	       COALESCE(c.bank_name, ''), c.cheque_date, c.amount,
	       COALESCE(c.covers_period, ''), c.status, c.deposited_on, c.resolved_on,
	       COALESCE(c.bounce_reason, ''), c.replaced_by_cheque_id,
	       COALESCE(t.name, ''), c.created_at
	FROM cheques c
	LEFT JOIN tenants t ON c.tenant_id = t.id`

func scanCheque(row pgx.Row) (*models.Cheque, error) {
	c := &models.Cheque{}
	err := row.Scan(&c.ID, &c.LeaseID, &c.TenantID, &c.PropertyID, &c.ChequeNumber,
		&c.BankName, &c.ChequeDate, &c.Amount, &c.CoversPeriod, &c.Status,
		&c.DepositedOn, &c.ResolvedOn, &c.BounceReason, &c.ReplacedByChequeID,
		&c.TenantName, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: cheque", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChequeRepository) Create(ctx context.Context, c *models.Cheque) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO cheques (lease_id, tenant_id, property_id, cheque_number, bank_name,
		                     cheque_date, amount, covers_period, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'received')
		RETURNING id, status, created_at`,
		c.LeaseID, c.TenantID, c.PropertyID, c.ChequeNumber, c.BankName,
		c.ChequeDate, c.Amount, c.CoversPeriod,
	).Scan(&c.ID, &c.Status, &c.CreatedAt)
}

func (r *ChequeRepository) Get(ctx context.Context, id int) (*models.Cheque, error) {
	return scanCheque(r.DB.QueryRow(ctx, chequeSelect+` WHERE c.id = $1`, id))
}

// GetForUpdateTx locks the cheque row for a transition
func (r *ChequeRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int) (*models.Cheque, error) {
	return scanCheque(tx.QueryRow(ctx, chequeSelect+` WHERE c.id = $1 FOR UPDATE OF c`, id))
}

// UpdateStateTx persists the fields a transition is allowed to touch
func (r *ChequeRepository) UpdateStateTx(ctx context.Context, tx pgx.Tx, c *models.Cheque) error {
	_, err := tx.Exec(ctx, `
		UPDATE cheques
		SET status = $2, deposited_on = $3, resolved_on = $4,
		    bounce_reason = $5, replaced_by_cheque_id = $6
		WHERE id = $1`,
		c.ID, c.Status, c.DepositedOn, c.ResolvedOn, nullIfEmpty(c.BounceReason), c.ReplacedByChequeID)
	return err
}

func (r *ChequeRepository) ListByLease(ctx context.Context, leaseID int) ([]*models.Cheque, error) {
	rows, err := r.DB.Query(ctx, chequeSelect+`
		WHERE c.lease_id = $1
		ORDER BY c.cheque_date`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheques(rows)
}

// ListUpcoming returns cheques dated inside the forward window, ordered by
// cheque date
func (r *ChequeRepository) ListUpcoming(ctx context.Context, ownerID, propertyID int, from, to time.Time) ([]*models.Cheque, error) {
	rows, err := r.DB.Query(ctx, chequeSelect+`
		JOIN leases l ON c.lease_id = l.id
		WHERE l.owner_id = $1
		  AND ($2 = 0 OR c.property_id = $2)
		  AND c.status IN ('received', 'deposited')
		  AND c.cheque_date >= $3 AND c.cheque_date <= $4
		ORDER BY c.cheque_date`, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheques(rows)
}

// CountBounced counts cheques currently bounced, independent of date
func (r *ChequeRepository) CountBounced(ctx context.Context, ownerID, propertyID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM cheques c
		JOIN leases l ON c.lease_id = l.id
		WHERE l.owner_id = $1
		  AND ($2 = 0 OR c.property_id = $2)
		  AND c.status = 'bounced'`, ownerID, propertyID).Scan(&count)
	return count, err
}

// ListClearedWithoutPayment finds cheques in cleared state that have no
// linked payment; the backfill tool repairs exactly these.
func (r *ChequeRepository) ListClearedWithoutPayment(ctx context.Context) ([]*models.Cheque, error) {
	rows, err := r.DB.Query(ctx, chequeSelect+`
		LEFT JOIN payments pay ON pay.cheque_id = c.id
		WHERE c.status = 'cleared' AND pay.id IS NULL
		ORDER BY c.resolved_on`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheques(rows)
}

// ReplacementPointersTx returns the forward-pointer map for chain checks.
// It reads through the transition's transaction so the cycle walk sees any
// pointer a concurrent replacement on the lease is writing.
func (r *ChequeRepository) ReplacementPointersTx(ctx context.Context, tx pgx.Tx, leaseID int) (map[int]int, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, replaced_by_cheque_id
		FROM cheques
		WHERE lease_id = $1 AND replaced_by_cheque_id IS NOT NULL`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pointers := make(map[int]int)
	for rows.Next() {
		var id, next int
		if err := rows.Scan(&id, &next); err != nil {
			return nil, err
		}
		pointers[id] = next
	}
	return pointers, rows.Err()
}

func collectCheques(rows pgx.Rows) ([]*models.Cheque, error) {
	var cheques []*models.Cheque
	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			return nil, err
		}
		cheques = append(cheques, c)
	}
	return cheques, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
