package store

import "errors"

// Error taxonomy shared by the stores and the services built on them.
// Callers match with errors.Is; stores wrap these with context via fmt.Errorf.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForeignKey        = errors.New("referenced record does not exist")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoInvoice         = errors.New("no invoice exists for booking")
	ErrTransport         = errors.New("transport failure")
)
