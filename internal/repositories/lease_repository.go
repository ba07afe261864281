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

type LeaseRepository struct {
	DB *pgxpool.Pool
}

func NewLeaseRepository(db *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{DB: db}
}

const leaseColumns = `
	l.id, l.property_id, l.unit_id, l.tenant_id, l.owner_id,
	l.start_date, l.end_date, l.terminated_on, l.frequency, l.due_day,
	l.installment_amount, l.security_deposit, COALESCE(l.notes, ''),
	COALESCE(t.name, ''), COALESCE(p.name, ''), l.created_at`

func scanLease(row pgx.Row) (*models.Lease, error) {
	l := &models.Lease{}
	err := row.Scan(
		&l.ID, &l.PropertyID, &l.UnitID, &l.TenantID, &l.OwnerID,
		&l.StartDate, &l.EndDate, &l.TerminatedOn, &l.Frequency, &l.DueDay,
		&l.InstallmentAmount, &l.SecurityDeposit, &l.Notes,
		&l.TenantName, &l.PropertyName, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: lease", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LeaseRepository) Create(ctx context.Context, l *models.Lease) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO leases (property_id, unit_id, tenant_id, owner_id, start_date, end_date,
		                    frequency, due_day, installment_amount, security_deposit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		l.PropertyID, l.UnitID, l.TenantID, l.OwnerID, l.StartDate, l.EndDate,
		l.Frequency, l.DueDay, l.InstallmentAmount, l.SecurityDeposit, l.Notes,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *LeaseRepository) Get(ctx context.Context, id int) (*models.Lease, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+leaseColumns+`
		FROM leases l
		LEFT JOIN tenants t ON l.tenant_id = t.id
		LEFT JOIN properties p ON l.property_id = p.id
		WHERE l.id = $1`, id)
	return scanLease(row)
}

func (r *LeaseRepository) ListByOwner(ctx context.Context, ownerID int) ([]*models.Lease, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+leaseColumns+`
		FROM leases l
		LEFT JOIN tenants t ON l.tenant_id = t.id
		LEFT JOIN properties p ON l.property_id = p.id
		WHERE l.owner_id = $1
		ORDER BY l.end_date`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

// ListExpiring returns leases ending inside the window, termination excluded,
// ordered by end date ascending
func (r *LeaseRepository) ListExpiring(ctx context.Context, ownerID int, from, to time.Time) ([]*models.Lease, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+leaseColumns+`
		FROM leases l
		LEFT JOIN tenants t ON l.tenant_id = t.id
		LEFT JOIN properties p ON l.property_id = p.id
		WHERE l.owner_id = $1
		  AND l.terminated_on IS NULL
		  AND l.end_date >= $2 AND l.end_date <= $3
		ORDER BY l.end_date`, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

// Terminate sets the early-termination date. Future obligations stay in
// storage; reporting excludes them from effective totals.
func (r *LeaseRepository) Terminate(ctx context.Context, id int, on time.Time, notes string) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE leases
		SET terminated_on = $2,
		    notes = CASE WHEN $3 <> '' THEN $3 ELSE notes END
		WHERE id = $1`, id, on, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: lease", ledger.ErrNotFound)
	}
	return nil
}

func collectLeases(rows pgx.Rows) ([]*models.Lease, error) {
	var leases []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}
