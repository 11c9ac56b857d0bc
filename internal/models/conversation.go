package models

import "time"

// Message roles stored on conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is an ordered chat thread owned by a user. Messages are
// append-only; the thread is deleted together with its messages.
type Conversation struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PublicID string `gorm:"type:text;not null;uniqueIndex"` // External UUID handed to clients.
	UserID   uint64 `gorm:"not null;index"`                 // Owning user ID.
	Title    string `gorm:"type:text"`                      // Display title, derived from the first message.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null"`                // Touched on every append.
}

// Message is a single turn inside a conversation.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ConversationID uint64 `gorm:"not null;index"`     // Owning conversation ID.
	Role           string `gorm:"type:text;not null"` // "user" or "assistant".
	Content        string `gorm:"type:text;not null"` // Message text.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp, defines ordering.
}
