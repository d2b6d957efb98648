package model

import "time"

type Shop struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	OwnerUID    string    `gorm:"column:owner_uid;size:128;index;not null"`
	Name        string    `gorm:"size:120;not null"`
	Description string    `gorm:"type:text"`
	World       string    `gorm:"size:64;not null"`
	X           int       `gorm:"not null"`
	Y           int       `gorm:"not null"`
	Z           int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Shop) TableName() string {
	return "shops"
}
