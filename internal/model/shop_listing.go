package model

import "time"

type ShopListing struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ShopID    uint64    `gorm:"column:shop_id;index:idx_shop_item,unique;not null"`
	ItemID    uint64    `gorm:"column:item_id;index:idx_shop_item,unique;not null"`
	UnitPrice float64   `gorm:"column:unit_price;not null"`
	Currency  string    `gorm:"column:currency;size:32;not null"`
	Stock     uint      `gorm:"column:stock;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ShopListing) TableName() string {
	return "shop_listings"
}
