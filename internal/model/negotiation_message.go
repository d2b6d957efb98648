package model

import "time"

type MessageType string

const (
	MessageTypeMessage      MessageType = "message"
	MessageTypeCounterOffer MessageType = "counter_offer"
	MessageTypeAccept       MessageType = "accept"
	MessageTypeReject       MessageType = "reject"
)

// NegotiationMessage is append-only. Ordering by id mirrors creation order
// and is what the acceptance resolver scopes acceptances by.
type NegotiationMessage struct {
	ID            uint64      `gorm:"primaryKey;autoIncrement"`
	NegotiationID uint64      `gorm:"column:negotiation_id;index;not null"`
	SenderUID     string      `gorm:"column:sender_uid;size:128;not null"`
	Type          MessageType `gorm:"column:type;size:32;not null"`
	Content       string      `gorm:"column:content;size:500;not null"`
	PriceOffer    *float64    `gorm:"column:price_offer"`
	Currency      string      `gorm:"column:currency;size:32"`
	CreatedAt     time.Time   `gorm:"autoCreateTime"`
}

func (NegotiationMessage) TableName() string {
	return "negotiation_messages"
}
