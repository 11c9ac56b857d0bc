package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting stores a JSON configuration payload under a unique key. Settings
// override config-file defaults at runtime.
type Setting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Key   string         `gorm:"type:text;not null;uniqueIndex"`   // Setting key.
	Value datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Setting payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
