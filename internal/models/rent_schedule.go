package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleStatus is derived from matches + due date, never set directly
type ScheduleStatus string

const (
	ScheduleStatusDue     ScheduleStatus = "due"
	ScheduleStatusOverdue ScheduleStatus = "overdue"
	ScheduleStatusPartial ScheduleStatus = "partial"
	ScheduleStatusPaid    ScheduleStatus = "paid"
)

// RentSchedule is one expected rent installment. ExpectedAmount is copied
// from the lease at generation time and never recomputed. PaidAmount and
// Status are written only by the allocator's recompute step.
type RentSchedule struct {
	ID             int                 `json:"id"`
	LeaseID        int                 `json:"lease_id"`
	DueDate        time.Time           `json:"due_date"`
	ExpectedAmount decimal.Decimal     `json:"expected_amount"`
	PaidAmount     decimal.NullDecimal `json:"paid_amount,omitempty"`
	Status         ScheduleStatus      `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
}

// Remaining is the unpaid portion of the obligation
func (s *RentSchedule) Remaining() decimal.Decimal {
	if !s.PaidAmount.Valid {
		return s.ExpectedAmount
	}
	return s.ExpectedAmount.Sub(s.PaidAmount.Decimal)
}

// LeaseLedger is the per-lease read model: every obligation with its
// effective status as of the read, alongside the payments applied to it
type LeaseLedger struct {
	Lease       *Lease          `json:"lease"`
	Schedules   []*RentSchedule `json:"schedules"`
	Payments    []*Payment      `json:"payments"`
	Expected    decimal.Decimal `json:"expected"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Unallocated decimal.Decimal `json:"unallocated"`
	AsOf        time.Time       `json:"as_of"`
}

// PaymentScheduleMatch records that part of a payment was applied to one
// obligation. Append-only; at most one row per (payment, schedule) pair.
type PaymentScheduleMatch struct {
	ID         int             `json:"id"`
	PaymentID  int             `json:"payment_id"`
	ScheduleID int             `json:"schedule_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}
