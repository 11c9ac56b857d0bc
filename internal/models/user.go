package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// User represents a freelancer account and the profile fields that feed
// generated artifacts.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Name     string `gorm:"type:text"`                      // Display name.
	Email    string `gorm:"type:text;uniqueIndex"`          // Email address.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Profession     string         `gorm:"type:text"`                      // Primary profession (e.g. "developer").
	Skills         datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Skill names as a JSON string array.
	Experience     string         `gorm:"type:text"`                      // Free-text background.
	PreferredStyle string         `gorm:"type:text"`                      // Preferred writing style, if any.
	PortfolioURL   string         `gorm:"type:text"`                      // Portfolio link.
	Platforms      datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Platform affiliations as a JSON string array.

	Active   bool `gorm:"not null;default:true"`  // Whether the user can sign in.
	Disabled bool `gorm:"not null;default:false"` // Explicit disable flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// SkillList decodes the Skills column into a string slice.
func (u *User) SkillList() []string {
	return decodeStringList(u.Skills)
}

// PlatformList decodes the Platforms column into a string slice.
func (u *User) PlatformList() []string {
	return decodeStringList(u.Platforms)
}

// decodeStringList unmarshals a JSON string array, returning nil on failure.
func decodeStringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if errUnmarshal := json.Unmarshal(raw, &out); errUnmarshal != nil {
		return nil
	}
	return out
}

// EncodeStringList marshals a string slice into a JSON column value.
// Nil and empty slices encode as an empty array.
func EncodeStringList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, errMarshal := json.Marshal(values)
	if errMarshal != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
