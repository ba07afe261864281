package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rental-backend/internal/models"
)

func TestCheckTransition_AllowedMoves(t *testing.T) {
	allowed := []struct{ from, to models.ChequeStatus }{
		{models.ChequeReceived, models.ChequeDeposited},
		{models.ChequeDeposited, models.ChequeCleared},
		{models.ChequeDeposited, models.ChequeBounced},
		{models.ChequeBounced, models.ChequeReplaced},
	}
	for _, m := range allowed {
		assert.NoError(t, CheckTransition(m.from, m.to), "%s -> %s", m.from, m.to)
	}
}

func TestCheckTransition_RejectedMoves(t *testing.T) {
	rejected := []struct{ from, to models.ChequeStatus }{
		{models.ChequeReceived, models.ChequeCleared},
		{models.ChequeReceived, models.ChequeBounced},
		{models.ChequeDeposited, models.ChequeReceived},
		{models.ChequeCleared, models.ChequeBounced},
		{models.ChequeCleared, models.ChequeDeposited},
		{models.ChequeBounced, models.ChequeDeposited},
		{models.ChequeReplaced, models.ChequeDeposited},
	}
	for _, m := range rejected {
		err := CheckTransition(m.from, m.to)
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", m.from, m.to)
	}
}

func TestCheckReplacement(t *testing.T) {
	original := &models.Cheque{ID: 1, LeaseID: 10, Status: models.ChequeBounced}

	t.Run("valid replacement", func(t *testing.T) {
		err := CheckReplacement(original, &models.Cheque{ID: 2, LeaseID: 10, Status: models.ChequeReceived}, nil)
		assert.NoError(t, err)
	})

	t.Run("nil replacement", func(t *testing.T) {
		err := CheckReplacement(original, nil, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("self replacement", func(t *testing.T) {
		err := CheckReplacement(original, &models.Cheque{ID: 1, LeaseID: 10}, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("different lease", func(t *testing.T) {
		err := CheckReplacement(original, &models.Cheque{ID: 2, LeaseID: 11, Status: models.ChequeReceived}, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("replacement already in play", func(t *testing.T) {
		// A replacement cheque starts its own life at received; one
		// that is already deposited or resolved cannot be attached.
		for _, status := range []models.ChequeStatus{
			models.ChequeDeposited, models.ChequeCleared, models.ChequeBounced, models.ChequeReplaced,
		} {
			err := CheckReplacement(original, &models.Cheque{ID: 2, LeaseID: 10, Status: status}, nil)
			assert.ErrorIs(t, err, ErrValidation, "status %s", status)
		}
	})

	t.Run("pointer closing a cycle", func(t *testing.T) {
		// Forward pointers 2 -> 3 -> 1 already exist; accepting 2 as
		// the replacement for 1 would loop the chain onto itself.
		replacedBy := map[int]int{2: 3, 3: 1}
		err := CheckReplacement(original, &models.Cheque{ID: 2, LeaseID: 10, Status: models.ChequeReceived}, replacedBy)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("longer chain without cycle", func(t *testing.T) {
		replacedBy := map[int]int{2: 3, 3: 4}
		err := CheckReplacement(original, &models.Cheque{ID: 2, LeaseID: 10, Status: models.ChequeReceived}, replacedBy)
		assert.NoError(t, err)
	})
}
