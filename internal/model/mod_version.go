package model

import "time"

// ModVersion records which version of a mod a catalog import came from,
// so successive modpack imports can be diffed.
type ModVersion struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	ModID       string    `gorm:"column:mod_id;size:64;uniqueIndex:idx_mod_version;not null"`
	Version     string    `gorm:"column:version;size:64;uniqueIndex:idx_mod_version;not null"`
	DisplayName string    `gorm:"column:display_name;size:190"`
	ImportedAt  time.Time `gorm:"column:imported_at;autoCreateTime"`
}

func (ModVersion) TableName() string {
	return "mod_versions"
}
