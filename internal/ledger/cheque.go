package ledger

import (
	"fmt"

	"rental-backend/internal/models"
)

// chequeTransitions is the full state machine; anything absent is rejected.
var chequeTransitions = map[models.ChequeStatus][]models.ChequeStatus{
	models.ChequeReceived:  {models.ChequeDeposited},
	models.ChequeDeposited: {models.ChequeCleared, models.ChequeBounced},
	models.ChequeBounced:   {models.ChequeReplaced},
}

// CanTransition reports whether from → to is in the allowed table
func CanTransition(from, to models.ChequeStatus) bool {
	for _, t := range chequeTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition returns the taxonomy error for a disallowed move
func CheckTransition(from, to models.ChequeStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cheque cannot move %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// CheckReplacement validates the forward pointer for BOUNCED -> REPLACED.
// The replacement must sit on the same lease, must itself still be a freshly
// received cheque, must not already replace the chain it is joining, and
// following replaced_by pointers from it must never loop back to the
// original.
func CheckReplacement(original, replacement *models.Cheque, replacedBy map[int]int) error {
	if replacement == nil {
		return fmt.Errorf("%w: replacement cheque required", ErrValidation)
	}
	if original.ID == replacement.ID {
		return fmt.Errorf("%w: a cheque cannot replace itself", ErrValidation)
	}
	if original.LeaseID != replacement.LeaseID {
		return fmt.Errorf("%w: replacement cheque belongs to a different lease", ErrValidation)
	}
	if replacement.Status != models.ChequeReceived {
		return fmt.Errorf("%w: replacement cheque %d is %s, expected %s",
			ErrValidation, replacement.ID, replacement.Status, models.ChequeReceived)
	}
	// Walk forward from the proposed replacement; hitting the original
	// means the pointer would close a cycle.
	next, ok := replacedBy[replacement.ID]
	for steps := 0; ok; steps++ {
		if next == original.ID {
			return fmt.Errorf("%w: replacement chain would form a cycle", ErrValidation)
		}
		if steps > len(replacedBy) {
			return fmt.Errorf("%w: replacement chain already contains a cycle", ErrConflict)
		}
		next, ok = replacedBy[next]
	}
	return nil
}
