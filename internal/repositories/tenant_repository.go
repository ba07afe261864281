package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
)

type TenantRepository struct {
	DB *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{DB: db}
}

func (r *TenantRepository) Create(ctx context.Context, t *models.Tenant) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO tenants (name, phone, email, id_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		t.Name, t.Phone, t.Email, t.IDNumber,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TenantRepository) Get(ctx context.Context, id int) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(id_number, ''), created_at
		FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Phone, &t.Email, &t.IDNumber, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: tenant", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]*models.Tenant, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, COALESCE(phone, ''), COALESCE(email, ''), COALESCE(id_number, ''), created_at
		FROM tenants
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t := &models.Tenant{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Phone, &t.Email, &t.IDNumber, &t.CreatedAt); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}
