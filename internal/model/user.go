package model

import "time"

// User is a player account. UID is stable across name changes; PlayerName
// is the current in-game name used for RCON whispers.
type User struct {
	ID         uint64     `gorm:"primaryKey;autoIncrement"`
	UID        string     `gorm:"column:uid;size:128;uniqueIndex;not null"`
	PlayerName string     `gorm:"column:player_name;size:64;uniqueIndex;not null"`
	LastLogin  *time.Time `gorm:"column:last_login"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
