package vault

import "errors"

// Policy errors: expected, surfaced directly to the caller, no state
// mutation occurs before they are returned, except that
// ErrCircuitBreakerTripped is returned after the vault has paused itself.
// ErrOverflowApproaching is never returned; that condition is reported only
// as an OverflowWarning event. See spec section 7.
var (
	ErrUnauthorized         = errors.New("UNAUTHORIZED")
	ErrPaused               = errors.New("PAUSED")
	ErrInsufficientGas      = errors.New("INSUFFICIENT_GAS")
	ErrTrancheLocked        = errors.New("TRANCHE_LOCKED")
	ErrReentrancy           = errors.New("REENTRANCY")
	ErrInsufficientBalance  = errors.New("INSUFFICIENT_BALANCE")
	ErrInvalidTranche       = errors.New("INVALID_TRANCHE")
	ErrCircuitBreakerTripped = errors.New("CIRCUIT_BREAKER_TRIPPED")
	ErrAlreadyPaid          = errors.New("ALREADY_PAID")
	ErrTokenAlreadySet      = errors.New("TOKEN_ALREADY_SET")
	ErrOverflowApproaching  = errors.New("OVERFLOW_APPROACHING")
	ErrUnknownTx            = errors.New("UNKNOWN_TX")
	ErrUnknownOp            = errors.New("UNKNOWN_OP")
)

// Integrity events: unexpected conditions that may auto-pause the vault.
// Unlike policy errors, these are also observable on the event stream
// (see events.go) even when not returned as an error to any caller.
var (
	ErrInsolvent       = errors.New("INSOLVENT")
	ErrBounceExhausted = errors.New("BOUNCE_EXHAUSTED")
)
