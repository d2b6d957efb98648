package repository

import "errors"

var (
	// ErrStaleState is returned when a conditional update matched zero
	// rows: another writer moved the entity out of the expected state
	// first. The service layer maps it to the caller-facing race error.
	ErrStaleState = errors.New("stale state")

	// ErrStaleOffer is the offer-side variant from AcceptOffer: the
	// request was still OPEN but the chosen offer had already left
	// PENDING (withdrawn or rejected in the meantime).
	ErrStaleOffer = errors.New("stale offer")
)
