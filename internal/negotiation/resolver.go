// Package negotiation derives the binding terms of a negotiation from its
// ordered message log. It is pure: the stores feed it the log and apply
// whatever it reports.
package negotiation

import (
	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
)

// Outcome is the resolver's verdict for one negotiation at one point in
// its log.
type Outcome struct {
	CurrentPrice      *float64
	CurrentCurrency   currency.Unit
	RequesterAccepted bool
	OffererAccepted   bool
}

func (o Outcome) Agreed() bool {
	return o.RequesterAccepted && o.OffererAccepted
}

// Resolve scans the log for the most recent counter-offer (the pivot) and
// counts only acceptances posted after it. A new counter-offer therefore
// invalidates every earlier acceptance: an accept always refers to the
// terms that were on the table when it was given.
//
// Terms priority: pivot price, else the fallback (the accepted offer's
// price captured at negotiation creation, else the request's suggestion).
// The log must be ordered oldest first; insertion order is authoritative.
func Resolve(log []model.NegotiationMessage, requesterUID, offererUID string, fallbackPrice *float64, fallbackCurrency currency.Unit) Outcome {
	pivot := -1
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Type == model.MessageTypeCounterOffer {
			pivot = i
			break
		}
	}

	out := Outcome{
		CurrentPrice:    fallbackPrice,
		CurrentCurrency: fallbackCurrency,
	}
	if pivot >= 0 {
		out.CurrentPrice = log[pivot].PriceOffer
		out.CurrentCurrency = currency.Unit(log[pivot].Currency)
	}

	for i := pivot + 1; i < len(log); i++ {
		if log[i].Type != model.MessageTypeAccept {
			continue
		}
		switch log[i].SenderUID {
		case requesterUID:
			out.RequesterAccepted = true
		case offererUID:
			out.OffererAccepted = true
		}
	}
	return out
}
