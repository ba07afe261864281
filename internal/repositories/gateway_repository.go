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

type GatewayOrderRepository struct {
	DB *pgxpool.Pool
}

func NewGatewayOrderRepository(db *pgxpool.Pool) *GatewayOrderRepository {
	return &GatewayOrderRepository{DB: db}
}

func (r *GatewayOrderRepository) Create(ctx context.Context, o *models.GatewayOrder) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO gateway_orders (lease_id, order_id, amount, status)
		VALUES ($1, $2, $3, 'created')
		RETURNING id, status, created_at, updated_at`,
		o.LeaseID, o.OrderID, o.Amount,
	).Scan(&o.ID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
}

func (r *GatewayOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.GatewayOrder, error) {
	o := &models.GatewayOrder{}
	err := r.DB.QueryRow(ctx, `
		SELECT id, lease_id, order_id, COALESCE(gateway_payment_id, ''), amount, status, payment_id, created_at, updated_at
		FROM gateway_orders WHERE order_id = $1`, orderID,
	).Scan(&o.ID, &o.LeaseID, &o.OrderID, &o.GatewayPaymentID, &o.Amount, &o.Status, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: gateway order", ledger.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid links the gateway payment id and the ledger payment. The unique
// constraint on gateway_payment_id makes webhook replays no-ops at the
// database level; callers treat a conflict as already-processed.
func (r *GatewayOrderRepository) MarkPaid(ctx context.Context, orderID, gatewayPaymentID string, paymentID int) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE gateway_orders
		SET gateway_payment_id = $2, payment_id = $3, status = 'paid', updated_at = NOW()
		WHERE order_id = $1 AND status = 'created'`, orderID, gatewayPaymentID, paymentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order already processed", ledger.ErrConflict)
	}
	return nil
}

func (r *GatewayOrderRepository) MarkFailed(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE gateway_orders SET status = 'failed', updated_at = NOW()
		WHERE order_id = $1 AND status = 'created'`, orderID)
	return err
}
