package model

import "time"

// Item is a catalog entry players can reference from shops and
// item-type requests. RegistryKey is the in-game identifier, e.g.
// "minecraft:emerald" or "create:brass_ingot".
type Item struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"size:120;not null"`
	RegistryKey string    `gorm:"column:registry_key;size:190;uniqueIndex;not null"`
	ModID       string    `gorm:"column:mod_id;size:64;index;not null"`
	StackSize   uint      `gorm:"column:stack_size;not null;default:64"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}
