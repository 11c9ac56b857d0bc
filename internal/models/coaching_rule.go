package models

import (
	"time"

	"gorm.io/datatypes"
)

// CoachingRule is an admin-authored instruction injected into prompts when its
// trigger keywords appear in a user's message. An empty Profession applies the
// rule to every profession.
type CoachingRule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	TriggerKeywords datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Trigger keywords as a JSON string array.
	Profession      string         `gorm:"type:text;index"`                  // Target profession, empty = all.
	Instruction     string         `gorm:"type:text;not null"`               // Guidance text injected into the prompt.
	Priority        int            `gorm:"not null;default:0"`               // Higher priority rules come first.
	Active          bool           `gorm:"not null;default:true"`            // Whether the rule is considered.

	CreatedBy uint64 `gorm:"index"` // Admin ID that authored the rule.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// KeywordList decodes the trigger keywords column into a string slice.
func (r *CoachingRule) KeywordList() []string {
	return decodeStringList(r.TriggerKeywords)
}
