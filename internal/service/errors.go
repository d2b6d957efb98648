package service

import "errors"

// Business-rule failures cross the handler boundary as these sentinels;
// handlers translate them to HTTP codes. Race losses (ErrRequestNotOpen,
// ErrNegotiationClosed) are expected outcomes, not faults.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRequestNotOpen    = errors.New("request not open")
	ErrNegotiationClosed = errors.New("negotiation closed")
	ErrInvalidOffer      = errors.New("invalid offer")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrNotAgreed         = errors.New("not agreed")
	ErrSelfOffer         = errors.New("cannot offer on your own request")
)
