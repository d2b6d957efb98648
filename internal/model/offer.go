package model

import "time"

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusWithdrawn OfferStatus = "withdrawn"
)

type Offer struct {
	ID         uint64      `gorm:"primaryKey;autoIncrement"`
	RequestID  uint64      `gorm:"column:request_id;index;not null"`
	OffererUID string      `gorm:"column:offerer_uid;size:128;index;not null"`
	Price      *float64    `gorm:"column:price"`
	Currency   string      `gorm:"column:currency;size:32;not null"`
	Message    string      `gorm:"column:message;size:500"`
	Status     OfferStatus `gorm:"column:status;size:32;index;not null"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
}

func (Offer) TableName() string {
	return "offers"
}
