package model

import "time"

type NegotiationStatus string

const (
	NegotiationStatusInProgress NegotiationStatus = "in_progress"
	NegotiationStatusAgreed     NegotiationStatus = "agreed"
	NegotiationStatusFailed     NegotiationStatus = "failed"
)

// Negotiation is created when an offer is accepted. A request has at most
// one negotiation IN_PROGRESS; failed ones stay behind as audit when the
// request reopens. The current_* columns are a denormalized view of the
// message log, rewritten in the same transaction as every message insert;
// the log itself stays the audit trail.
type Negotiation struct {
	ID           uint64            `gorm:"primaryKey;autoIncrement"`
	RequestID    uint64            `gorm:"column:request_id;index;not null"`
	OfferID      uint64            `gorm:"column:offer_id;index;not null"`
	RequesterUID string            `gorm:"column:requester_uid;size:128;not null"`
	OffererUID   string            `gorm:"column:offerer_uid;size:128;not null"`
	Status       NegotiationStatus `gorm:"column:status;size:32;index;not null"`

	// Fallback terms captured at creation: the accepted offer's price if it
	// had one, else the request's suggested price. Never rewritten.
	BasePrice    *float64 `gorm:"column:base_price"`
	BaseCurrency string   `gorm:"column:base_currency;size:32;not null"`

	CurrentPrice      *float64  `gorm:"column:current_price"`
	CurrentCurrency   string    `gorm:"column:current_currency;size:32;not null"`
	RequesterAccepted bool      `gorm:"column:requester_accepted;not null"`
	OffererAccepted   bool      `gorm:"column:offerer_accepted;not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Negotiation) TableName() string {
	return "negotiations"
}
