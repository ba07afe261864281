package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GatewayOrder tracks an online payment order with the gateway.
// GatewayPaymentID is unique so webhook replays stay idempotent.
type GatewayOrder struct {
	ID               int             `json:"id"`
	LeaseID          int             `json:"lease_id"`
	OrderID          string          `json:"order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"` // created, paid, failed
	PaymentID        *int            `json:"payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateGatewayOrderRequest opens an online payment for a lease
type CreateGatewayOrderRequest struct {
	LeaseID int             `json:"lease_id"`
	Amount  decimal.Decimal `json:"amount"` // zero means full outstanding balance
}
