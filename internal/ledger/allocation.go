package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rental-backend/internal/models"
)

// PlannedMatch is one allocation the planner wants written
type PlannedMatch struct {
	ScheduleID int
	Amount     decimal.Decimal
}

// PlanAuto walks obligations oldest due date first and applies
// min(remaining, stillOwed) to each until the payment is used up.
// Fully-paid obligations are skipped. Whatever is left over comes back as
// the unallocated remainder; the planner never guesses a future obligation.
//
// schedules must already be ordered by due date ascending.
func PlanAuto(schedules []*models.RentSchedule, amount decimal.Decimal) ([]PlannedMatch, decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}

	remaining := amount
	var plan []PlannedMatch
	for _, s := range schedules {
		if remaining.Sign() == 0 {
			break
		}
		owed := s.Remaining()
		if owed.Sign() <= 0 {
			continue
		}
		applied := decimal.Min(remaining, owed)
		plan = append(plan, PlannedMatch{ScheduleID: s.ID, Amount: applied})
		remaining = remaining.Sub(applied)
	}
	return plan, remaining, nil
}

// PlanManual validates caller-specified matches against the same
// per-obligation cap as the auto path. Ordering is the caller's. Amounts
// above an obligation's remaining balance are rejected outright; manual
// matches never create credit balances.
func PlanManual(schedules []*models.RentSchedule, amount decimal.Decimal, matches []models.ManualMatch) ([]PlannedMatch, decimal.Decimal, error) {
	if amount.Sign() <= 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	if len(matches) == 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: no matches supplied", ErrValidation)
	}

	byID := make(map[int]*models.RentSchedule, len(schedules))
	for _, s := range schedules {
		byID[s.ID] = s
	}

	remaining := amount
	seen := make(map[int]bool, len(matches))
	plan := make([]PlannedMatch, 0, len(matches))
	for _, m := range matches {
		s, ok := byID[m.ScheduleID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: obligation %d does not belong to this lease", ErrNotFound, m.ScheduleID)
		}
		if seen[m.ScheduleID] {
			return nil, decimal.Zero, fmt.Errorf("%w: obligation %d matched twice", ErrValidation, m.ScheduleID)
		}
		seen[m.ScheduleID] = true
		if m.Amount.Sign() <= 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: match amount must be positive", ErrValidation)
		}
		if m.Amount.GreaterThan(s.Remaining()) {
			return nil, decimal.Zero, fmt.Errorf("%w: match of %s exceeds remaining balance %s on obligation %d",
				ErrValidation, m.Amount.StringFixed(2), s.Remaining().StringFixed(2), m.ScheduleID)
		}
		if m.Amount.GreaterThan(remaining) {
			return nil, decimal.Zero, fmt.Errorf("%w: matches exceed the payment's unallocated remainder", ErrValidation)
		}
		remaining = remaining.Sub(m.Amount)
		plan = append(plan, PlannedMatch{ScheduleID: m.ScheduleID, Amount: m.Amount})
	}
	return plan, remaining, nil
}
