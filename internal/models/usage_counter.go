package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// UsageCounter tracks per-user generation counts for each artifact kind
// against a single shared rolling reset timestamp. Counters are treated as
// zero once the reset passes; they are physically rewritten on the next
// recorded usage.
type UsageCounter struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64         `gorm:"not null;uniqueIndex"`             // Owning user ID.
	Counts datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Used counts keyed by artifact kind.

	ResetAt *time.Time `` // Shared rolling reset timestamp, nil until first usage.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// CountMap decodes the counts column, returning an empty map on failure.
func (c *UsageCounter) CountMap() map[string]int {
	out := map[string]int{}
	if len(c.Counts) == 0 {
		return out
	}
	if errUnmarshal := json.Unmarshal(c.Counts, &out); errUnmarshal != nil {
		return map[string]int{}
	}
	return out
}

// EncodeCountMap marshals a counts map into a JSON column value.
func EncodeCountMap(counts map[string]int) datatypes.JSON {
	if counts == nil {
		counts = map[string]int{}
	}
	raw, errMarshal := json.Marshal(counts)
	if errMarshal != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
