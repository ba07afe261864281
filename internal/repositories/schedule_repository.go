package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rental-backend/internal/models"
)

type ScheduleRepository struct {
	DB *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{DB: db}
}

// InsertMissing creates obligations for the given due dates, skipping any
// period that already has a row. Regeneration is idempotent: retried
// requests fill gaps only. All inserts run in one transaction.
func (r *ScheduleRepository) InsertMissing(ctx context.Context, leaseID int, dueDates []time.Time, expected decimal.Decimal) (int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, due := range dueDates {
		tag, err := tx.Exec(ctx, `
			INSERT INTO rent_schedules (lease_id, due_date, expected_amount, status)
			VALUES ($1, $2, $3, 'due')
			ON CONFLICT (lease_id, due_date) DO NOTHING`,
			leaseID, due, expected)
		if err != nil {
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListByLease returns all obligations for a lease, due date ascending
func (r *ScheduleRepository) ListByLease(ctx context.Context, leaseID int) ([]*models.RentSchedule, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, lease_id, due_date, expected_amount, paid_amount, status, created_at
		FROM rent_schedules
		WHERE lease_id = $1
		ORDER BY due_date`, leaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// ListByOwnerWindow returns obligations across an owner's leases due inside
// the window, optionally filtered to one property
func (r *ScheduleRepository) ListByOwnerWindow(ctx context.Context, ownerID, propertyID int, from, to time.Time) ([]*models.RentSchedule, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.lease_id, s.due_date, s.expected_amount, s.paid_amount, s.status, s.created_at
		FROM rent_schedules s
		JOIN leases l ON s.lease_id = l.id
		WHERE l.owner_id = $1
		  AND ($2 = 0 OR l.property_id = $2)
		  AND s.due_date >= $3 AND s.due_date <= $4
		  AND (l.terminated_on IS NULL OR s.due_date <= l.terminated_on)
		ORDER BY s.due_date`, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// ListOverdueByOwner returns effective obligations still owed with a due
// date strictly before asOf, oldest first. A limit of zero or less means
// no cap.
func (r *ScheduleRepository) ListOverdueByOwner(ctx context.Context, ownerID, propertyID int, asOf time.Time, limit int) ([]*models.OverdueItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.id, s.lease_id, s.due_date, s.expected_amount, s.paid_amount, s.status, s.created_at,
		       COALESCE(p.name, ''), COALESCE(t.name, '')
		FROM rent_schedules s
		JOIN leases l ON s.lease_id = l.id
		LEFT JOIN properties p ON l.property_id = p.id
		LEFT JOIN tenants t ON l.tenant_id = t.id
		WHERE l.owner_id = $1
		  AND ($2 = 0 OR l.property_id = $2)
		  AND s.status IN ('due', 'partial')
		  AND s.due_date < $3
		  AND (l.terminated_on IS NULL OR s.due_date <= l.terminated_on)
		ORDER BY s.due_date`+limitClause(limit), ownerID, propertyID, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OverdueItem
	for rows.Next() {
		s := &models.RentSchedule{}
		item := &models.OverdueItem{Schedule: s}
		err := rows.Scan(&s.ID, &s.LeaseID, &s.DueDate, &s.ExpectedAmount, &s.PaidAmount,
			&s.Status, &s.CreatedAt, &item.PropertyName, &item.TenantName)
		if err != nil {
			return nil, err
		}
		item.LeaseID = s.LeaseID
		item.Outstanding = s.Remaining()
		items = append(items, item)
	}
	return items, rows.Err()
}

// StatementRows returns the obligation lines for an owner statement window
func (r *ScheduleRepository) StatementRows(ctx context.Context, ownerID, propertyID int, from, to time.Time) ([]*models.StatementRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT s.lease_id, COALESCE(p.name, ''), COALESCE(u.label, ''), COALESCE(t.name, ''),
		       s.due_date, s.expected_amount, COALESCE(s.paid_amount, 0), s.status
		FROM rent_schedules s
		JOIN leases l ON s.lease_id = l.id
		LEFT JOIN properties p ON l.property_id = p.id
		LEFT JOIN units u ON l.unit_id = u.id
		LEFT JOIN tenants t ON l.tenant_id = t.id
		WHERE l.owner_id = $1
		  AND ($2 = 0 OR l.property_id = $2)
		  AND s.due_date >= $3 AND s.due_date <= $4
		  AND (l.terminated_on IS NULL OR s.due_date <= l.terminated_on)
		ORDER BY p.name, s.due_date`, ownerID, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.StatementRow
	for rows.Next() {
		row := &models.StatementRow{}
		err := rows.Scan(&row.LeaseID, &row.PropertyName, &row.UnitLabel, &row.TenantName,
			&row.DueDate, &row.Expected, &row.Paid, &row.Status)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// limitClause renders a trailing LIMIT for a positive cap. Zero and
// negative caps produce no clause at all; Postgres reads LIMIT 0 as
// "return nothing", not "return everything".
func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

func collectSchedules(rows pgx.Rows) ([]*models.RentSchedule, error) {
	var schedules []*models.RentSchedule
	for rows.Next() {
		s := &models.RentSchedule{}
		err := rows.Scan(&s.ID, &s.LeaseID, &s.DueDate, &s.ExpectedAmount, &s.PaidAmount, &s.Status, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}
