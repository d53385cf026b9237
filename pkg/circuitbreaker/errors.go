package circuitbreaker

import "errors"

var (
	// ErrCircuitOpen is returned while the breaker is open and every call is
	// rejected until the downstream dependency has had time to recover.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrTooManyRequests is returned in the half-open state once the probe
	// request budget has been used up.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)
