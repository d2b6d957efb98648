package model

import "time"

type RequestType string

const (
	RequestTypeItem    RequestType = "item"
	RequestTypeGeneral RequestType = "general"
)

type RequestStatus string

const (
	RequestStatusOpen          RequestStatus = "open"
	RequestStatusInNegotiation RequestStatus = "in_negotiation"
	RequestStatusAccepted      RequestStatus = "accepted"
	RequestStatusCompleted     RequestStatus = "completed"
	RequestStatusCancelled     RequestStatus = "cancelled"
)

type Request struct {
	ID             uint64        `gorm:"primaryKey;autoIncrement"`
	Title          string        `gorm:"size:120;not null"`
	Description    string        `gorm:"type:text"`
	Type           RequestType   `gorm:"column:type;size:16;not null"`
	ItemID         *uint64       `gorm:"column:item_id;index"`
	ItemQuantity   *uint         `gorm:"column:item_quantity"`
	SuggestedPrice *float64      `gorm:"column:suggested_price"`
	Currency       string        `gorm:"column:currency;size:32;not null"`
	Status         RequestStatus `gorm:"column:status;size:32;index;not null"`
	RequesterUID   string        `gorm:"column:requester_uid;size:128;index;not null"`
	CreatedAt      time.Time     `gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime"`
	CompletedAt    *time.Time    `gorm:"column:completed_at"`
}

func (Request) TableName() string {
	return "requests"
}
