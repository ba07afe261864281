package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChequeStatus is the post-dated-cheque lifecycle state
type ChequeStatus string

const (
	ChequeReceived  ChequeStatus = "received"
	ChequeDeposited ChequeStatus = "deposited"
	ChequeCleared   ChequeStatus = "cleared"
	ChequeBounced   ChequeStatus = "bounced"
	ChequeReplaced  ChequeStatus = "replaced"
)

// Cheque is a post-dated cheque instrument. Status and dates change only
// through the lifecycle manager's transition contract.
type Cheque struct {
	ID                 int             `json:"id"`
	LeaseID            int             `json:"lease_id"`
	TenantID           int             `json:"tenant_id"`
	PropertyID         int             `json:"property_id"`
	ChequeNumber       string          `json:"cheque_number"`
	BankName           string          `json:"bank_name"`
	ChequeDate         time.Time       `json:"cheque_date"`
	Amount             decimal.Decimal `json:"amount"`
	CoversPeriod       string          `json:"covers_period"`
	Status             ChequeStatus    `json:"status"`
	DepositedOn        *time.Time      `json:"deposited_on,omitempty"`
	ResolvedOn         *time.Time      `json:"resolved_on,omitempty"` // cleared or bounced date
	BounceReason       string          `json:"bounce_reason,omitempty"`
	ReplacedByChequeID *int            `json:"replaced_by_cheque_id,omitempty"`
	TenantName         string          `json:"tenant_name,omitempty"` // Joined from tenants
	CreatedAt          time.Time       `json:"created_at"`
}

// CreateChequeRequest registers a cheque handed over at lease intake
type CreateChequeRequest struct {
	LeaseID      int             `json:"lease_id"`
	ChequeNumber string          `json:"cheque_number"`
	BankName     string          `json:"bank_name"`
	ChequeDate   string          `json:"cheque_date"`
	Amount       decimal.Decimal `json:"amount"`
	CoversPeriod string          `json:"covers_period"`
}

// ChequeTransitionRequest moves a cheque through its state machine
type ChequeTransitionRequest struct {
	Status              ChequeStatus `json:"status"`
	Date                string       `json:"date,omitempty"` // deposit/cleared/bounce date
	BounceReason        string       `json:"bounce_reason,omitempty"`
	ReplacementChequeID int          `json:"replacement_cheque_id,omitempty"`
}

// ChequeTimeline is the replacement chain for display, oldest first
type ChequeTimeline struct {
	Cheque     *Cheque   `json:"cheque"`
	Replaces   []*Cheque `json:"replaces,omitempty"`    // chain walking backwards
	ReplacedBy []*Cheque `json:"replaced_by,omitempty"` // chain walking forwards
}
