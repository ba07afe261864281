package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentFrequency is how often an installment falls due
type RentFrequency string

const (
	FrequencyMonthly   RentFrequency = "monthly"
	FrequencyQuarterly RentFrequency = "quarterly"
	FrequencyYearly    RentFrequency = "yearly"
	FrequencyCustom    RentFrequency = "custom" // due dates supplied explicitly
)

// Valid reports whether f is one of the known frequencies
func (f RentFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// Lease is the contractual obligation between one property/unit and one tenant.
// Immutable once its schedule exists, except for termination date and notes.
type Lease struct {
	ID                int                 `json:"id"`
	PropertyID        int                 `json:"property_id"`
	UnitID            int                 `json:"unit_id"`
	TenantID          int                 `json:"tenant_id"`
	OwnerID           int                 `json:"owner_id"`
	StartDate         time.Time           `json:"start_date"`
	EndDate           time.Time           `json:"end_date"`
	TerminatedOn      *time.Time          `json:"terminated_on,omitempty"`
	Frequency         RentFrequency       `json:"frequency"`
	DueDay            int                 `json:"due_day"`
	InstallmentAmount decimal.Decimal     `json:"installment_amount"`
	SecurityDeposit   decimal.NullDecimal `json:"security_deposit,omitempty"`
	Notes             string              `json:"notes"`
	TenantName        string              `json:"tenant_name,omitempty"`   // Joined from tenants
	PropertyName      string              `json:"property_name,omitempty"` // Joined from properties
	CreatedAt         time.Time           `json:"created_at"`
}

// CreateLeaseRequest is the validated lease handed over by the lease workflow
type CreateLeaseRequest struct {
	PropertyID        int             `json:"property_id"`
	UnitID            int             `json:"unit_id"`
	TenantID          int             `json:"tenant_id"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	Frequency         RentFrequency   `json:"frequency"`
	DueDay            int             `json:"due_day"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	SecurityDeposit   *decimal.Decimal `json:"security_deposit,omitempty"`
	Notes             string          `json:"notes"`
	// CustomDueDates drives generation for custom-frequency leases
	CustomDueDates []string `json:"custom_due_dates,omitempty"`
}

// TerminateLeaseRequest truncates a lease's effective obligations
type TerminateLeaseRequest struct {
	TerminatedOn string `json:"terminated_on"`
	Notes        string `json:"notes,omitempty"`
}
