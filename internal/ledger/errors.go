package ledger

import "errors"

// Rejection errors. Events failing with one of these are expected bad
// input: the caller drops the event with no state change and keeps going.
var (
	ErrAccountFrozen        = errors.New("account frozen")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnknownTransaction   = errors.New("unknown transaction")
	ErrUnknownKind          = errors.New("unknown transaction kind")
	ErrNotDisputable        = errors.New("transaction not disputable")
	ErrInvalidDisputeState  = errors.New("invalid dispute state")
)

// ErrInvariantViolation marks internal-consistency failures (a held balance
// that would go negative, a balance that would overflow). These mean the
// ledger's own invariants were already broken by a defect, so processing
// must stop rather than continue on corrupted state.
var ErrInvariantViolation = errors.New("ledger invariant violated")

// IsRejection reports whether err is an expected rejection that the caller
// should swallow, as opposed to a fatal invariant violation.
func IsRejection(err error) bool {
	return err != nil && !errors.Is(err, ErrInvariantViolation)
}
