package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CollectionSummary is expected vs received for one calendar window.
// Received is obligation-level recognition: an obligation contributes its
// expected amount only once its status reaches paid.
type CollectionSummary struct {
	WindowStart   time.Time       `json:"window_start"`
	WindowEnd     time.Time       `json:"window_end"`
	Expected      decimal.Decimal `json:"expected"`
	Received      decimal.Decimal `json:"received"`
	ObligationCnt int             `json:"obligation_count"`
	PaidCnt       int             `json:"paid_count"`
}

// OverdueItem is one overdue obligation with its lease context
type OverdueItem struct {
	Schedule     *RentSchedule   `json:"schedule"`
	LeaseID      int             `json:"lease_id"`
	PropertyName string          `json:"property_name"`
	TenantName   string          `json:"tenant_name"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// OccupancySummary counts units for the occupancy widget
type OccupancySummary struct {
	TotalUnits    int `json:"total_units"`
	OccupiedUnits int `json:"occupied_units"`
	VacantUnits   int `json:"vacant_units"`
}

// DashboardSummary is the owner dashboard payload, recomputed on every read
type DashboardSummary struct {
	OwnerID        int                `json:"owner_id"`
	Month          *CollectionSummary `json:"month"`
	Quarter        *CollectionSummary `json:"quarter"`
	OverdueAmount  decimal.Decimal    `json:"overdue_amount"`
	OverdueItems   []*OverdueItem     `json:"overdue_items"`
	UpcomingCheques []*Cheque         `json:"upcoming_cheques"`
	BouncedCount   int                `json:"bounced_count"`
	Occupancy      *OccupancySummary  `json:"occupancy"`
	ExpiringLeases []*Lease           `json:"expiring_leases"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

// OwnerRollup is one row of the manager's portfolio view
type OwnerRollup struct {
	OwnerID        int             `json:"owner_id"`
	OwnerName      string          `json:"owner_name"`
	Expected       decimal.Decimal `json:"expected"`
	Received       decimal.Decimal `json:"received"`
	OverdueCount   int             `json:"overdue_count"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	BouncedCount   int             `json:"bounced_count"`
	ExpiringCount  int             `json:"expiring_count"`
	NeedsAttention bool            `json:"needs_attention"`
}

// StatementRow is one line of an owner statement export
type StatementRow struct {
	LeaseID      int             `json:"lease_id"`
	PropertyName string          `json:"property_name"`
	UnitLabel    string          `json:"unit_label"`
	TenantName   string          `json:"tenant_name"`
	DueDate      time.Time       `json:"due_date"`
	Expected     decimal.Decimal `json:"expected"`
	Paid         decimal.Decimal `json:"paid"`
	Status       ScheduleStatus  `json:"status"`
}
