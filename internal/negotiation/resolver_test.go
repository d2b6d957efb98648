package negotiation

import (
	"testing"

	"github.com/ktsuchiya/blockmarket-backend/internal/currency"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
)

const (
	requester = "uid-requester"
	offerer   = "uid-offerer"
)

func msg(sender string, typ model.MessageType, price float64) model.NegotiationMessage {
	m := model.NegotiationMessage{SenderUID: sender, Type: typ, Content: "x"}
	if typ == model.MessageTypeCounterOffer {
		p := price
		m.PriceOffer = &p
		m.Currency = string(currency.Emerald)
	}
	return m
}

func TestResolve(t *testing.T) {
	fallback := 10.0

	tests := []struct {
		name          string
		log           []model.NegotiationMessage
		wantPrice     *float64
		wantRequester bool
		wantOfferer   bool
		wantAgreed    bool
	}{
		{
			name:      "empty log falls back to offer terms",
			log:       nil,
			wantPrice: &fallback,
		},
		{
			name: "accepts without pivot count from whole log",
			log: []model.NegotiationMessage{
				msg(requester, model.MessageTypeAccept, 0),
				msg(offerer, model.MessageTypeAccept, 0),
			},
			wantPrice:     &fallback,
			wantRequester: true,
			wantOfferer:   true,
			wantAgreed:    true,
		},
		{
			name: "new counter-offer invalidates earlier accept",
			log: []model.NegotiationMessage{
				msg(offerer, model.MessageTypeCounterOffer, 10),
				msg(requester, model.MessageTypeAccept, 0),
				msg(offerer, model.MessageTypeCounterOffer, 15),
				msg(requester, model.MessageTypeAccept, 0),
			},
			wantPrice:     f(15),
			wantRequester: true,
			wantOfferer:   false,
		},
		{
			name: "stale accept before pivot does not agree",
			log: []model.NegotiationMessage{
				msg(requester, model.MessageTypeAccept, 0),
				msg(offerer, model.MessageTypeCounterOffer, 12),
				msg(offerer, model.MessageTypeAccept, 0),
			},
			wantPrice:   f(12),
			wantOfferer: true,
			wantAgreed:  false,
		},
		{
			name: "counter then both accept agrees at countered price",
			log: []model.NegotiationMessage{
				msg(offerer, model.MessageTypeCounterOffer, 9.5),
				msg(requester, model.MessageTypeAccept, 0),
				msg(offerer, model.MessageTypeAccept, 0),
			},
			wantPrice:     f(9.5),
			wantRequester: true,
			wantOfferer:   true,
			wantAgreed:    true,
		},
		{
			name: "plain messages and rejects never count as acceptance",
			log: []model.NegotiationMessage{
				msg(requester, model.MessageTypeMessage, 0),
				msg(offerer, model.MessageTypeReject, 0),
			},
			wantPrice: &fallback,
		},
		{
			name: "accept from a stranger is ignored",
			log: []model.NegotiationMessage{
				msg("uid-other", model.MessageTypeAccept, 0),
			},
			wantPrice: &fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.log, requester, offerer, &fallback, currency.Emerald)
			if !priceEq(got.CurrentPrice, tt.wantPrice) {
				t.Fatalf("price got=%v want=%v", deref(got.CurrentPrice), deref(tt.wantPrice))
			}
			if got.RequesterAccepted != tt.wantRequester {
				t.Fatalf("requesterAccepted got=%v want=%v", got.RequesterAccepted, tt.wantRequester)
			}
			if got.OffererAccepted != tt.wantOfferer {
				t.Fatalf("offererAccepted got=%v want=%v", got.OffererAccepted, tt.wantOfferer)
			}
			if got.Agreed() != tt.wantAgreed {
				t.Fatalf("agreed got=%v want=%v", got.Agreed(), tt.wantAgreed)
			}
		})
	}
}

func TestResolveNoFallback(t *testing.T) {
	got := Resolve(nil, requester, offerer, nil, currency.Emerald)
	if got.CurrentPrice != nil {
		t.Fatalf("expected nil price, got %v", *got.CurrentPrice)
	}
	if got.CurrentCurrency != currency.Emerald {
		t.Fatalf("currency got=%v", got.CurrentCurrency)
	}
}

func f(v float64) *float64 { return &v }

func priceEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *float64) float64 {
	if p == nil {
		return -1
	}
	return *p
}
