package models

import (
	"time"

	"gorm.io/datatypes"
)

// Artifact kinds produced by the generation engine. Each kind has its own
// quota bucket.
const (
	KindProposal   = "proposal"
	KindProfile    = "profile"
	KindChatReply  = "chat-reply"
	KindBuyerReply = "buyer-reply"
)

// GeneratedArtifact is a produced text plus the inputs that produced it.
// Rows are never mutated after creation.
type GeneratedArtifact struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID   uint64 `gorm:"not null;index"`              // Owning user ID.
	Kind     string `gorm:"type:text;not null;index"`    // Artifact kind.
	Platform string `gorm:"type:text"`                   // Target platform, if any.
	Content  string `gorm:"type:text;not null"`          // Final display text.

	CharCount int `gorm:"not null;default:0"` // Character count of Content.
	WordCount int `gorm:"not null;default:0"` // Word count of Content.

	Inputs datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Request snapshot for audit.

	ConversationID *uint64 `gorm:"index"` // Conversation the artifact belongs to, chat kinds only.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
