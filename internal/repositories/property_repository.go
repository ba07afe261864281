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

type PropertyRepository struct {
	DB *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{DB: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	if p.Currency == "" {
		p.Currency = "AED" // Default currency
	}
	return r.DB.QueryRow(ctx, `
		INSERT INTO properties (owner_id, name, address, city, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		p.OwnerID, p.Name, p.Address, p.City, p.Currency,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PropertyRepository) Get(ctx context.Context, id int) (*models.Property, error) {
	p := &models.Property{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, owner_id, name, COALESCE(address, ''), COALESCE(city, ''), currency, created_at
		FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.City, &p.Currency, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: property", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID int) ([]*models.Property, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, owner_id, name, COALESCE(address, ''), COALESCE(city, ''), currency, created_at
		FROM properties
		WHERE owner_id = $1
		ORDER BY name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p := &models.Property{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Address, &p.City, &p.Currency, &p.CreatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *PropertyRepository) CreateUnit(ctx context.Context, u *models.Unit) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO units (property_id, label, bedrooms)
		VALUES ($1, $2, $3)
		RETURNING id`,
		u.PropertyID, u.Label, u.Bedrooms,
	).Scan(&u.ID)
}

// SetUnitOccupied flips occupancy when a lease starts or ends
func (r *PropertyRepository) SetUnitOccupied(ctx context.Context, unitID int, occupied bool) error {
	tag, err := r.DB.Exec(ctx, `UPDATE units SET occupied = $2 WHERE id = $1`, unitID, occupied)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: unit", ledger.ErrNotFound)
	}
	return nil
}

// Occupancy counts an owner's units, optionally one property's
func (r *PropertyRepository) Occupancy(ctx context.Context, ownerID, propertyID int) (*models.OccupancySummary, error) {
	summary := &models.OccupancySummary{}
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE u.occupied)
		FROM units u
		JOIN properties p ON u.property_id = p.id
		WHERE p.owner_id = $1
		  AND ($2 = 0 OR p.id = $2)`, ownerID, propertyID,
	).Scan(&summary.TotalUnits, &summary.OccupiedUnits)
	if err != nil {
		return nil, err
	}
	summary.VacantUnits = summary.TotalUnits - summary.OccupiedUnits
	return summary, nil
}

func (r *PropertyRepository) ListUnits(ctx context.Context, propertyID int) ([]*models.Unit, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, property_id, label, bedrooms, occupied
		FROM units
		WHERE property_id = $1
		ORDER BY label`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		u := &models.Unit{}
		if err := rows.Scan(&u.ID, &u.PropertyID, &u.Label, &u.Bedrooms, &u.Occupied); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}
