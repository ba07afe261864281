package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

// ComputeStatus derives an obligation's status from its matched total, its
// expected amount, its due date and "now". There is no other way a status
// comes into being; every mutation to matches is followed by a recompute.
func ComputeStatus(expected, matched decimal.Decimal, dueDate, now time.Time) models.ScheduleStatus {
	switch {
	case matched.GreaterThanOrEqual(expected):
		return models.ScheduleStatusPaid
	case matched.Sign() > 0:
		return models.ScheduleStatusPartial
	case timeutil.DateOnly(dueDate).Before(timeutil.DateOnly(now)):
		return models.ScheduleStatusOverdue
	default:
		return models.ScheduleStatusDue
	}
}

// Recompute updates a schedule's derived fields in place from a matched
// total. PaidAmount is null iff nothing has matched.
func Recompute(s *models.RentSchedule, matched decimal.Decimal, now time.Time) {
	s.Status = ComputeStatus(s.ExpectedAmount, matched, s.DueDate, now)
	if matched.Sign() > 0 {
		s.PaidAmount = decimal.NullDecimal{Decimal: matched, Valid: true}
	} else {
		s.PaidAmount = decimal.NullDecimal{}
	}
}
