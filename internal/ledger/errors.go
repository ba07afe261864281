package ledger

import "errors"

// Error taxonomy for the ledger core. Handlers map these to HTTP statuses;
// nothing in the core retries.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid state transition")
)
