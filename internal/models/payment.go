package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the money arrived
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodUPI          PaymentMethod = "upi"
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque" // proceeds of a cleared cheque
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodUPI, MethodCash, MethodCheque:
		return true
	}
	return false
}

// Payment is a single receipt of money against a lease. Immutable after
// creation except for the unallocated remainder, which the backfill tool
// may drain into later obligations.
type Payment struct {
	ID                int             `json:"id"`
	LeaseID           int             `json:"lease_id"`
	TenantID          int             `json:"tenant_id"`
	PropertyID        int             `json:"property_id"`
	ChequeID          *int            `json:"cheque_id,omitempty"` // at most one payment per cheque
	Amount            decimal.Decimal `json:"amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
	Method            PaymentMethod   `json:"method"`
	Reference         string          `json:"reference"`
	PaidOn            time.Time       `json:"paid_on"`
	RecordedByUserID  *int            `json:"recorded_by_user_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ManualMatch is a caller-specified (obligation, amount) pair
type ManualMatch struct {
	ScheduleID int             `json:"schedule_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// CreatePaymentRequest records a payment; with Matches empty the allocator
// runs the FIFO auto-match path.
type CreatePaymentRequest struct {
	LeaseID   int             `json:"lease_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference"`
	PaidOn    string          `json:"paid_on"`
	Matches   []ManualMatch   `json:"matches,omitempty"`
}

// AllocationResult is what a recorded payment did to the ledger
type AllocationResult struct {
	Payment     *Payment                `json:"payment"`
	Matches     []*PaymentScheduleMatch `json:"matches"`
	Touched     []*RentSchedule         `json:"touched_schedules"`
	Unallocated decimal.Decimal         `json:"unallocated"`
}
