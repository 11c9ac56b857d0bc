package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultWindow is the number of recent messages passed to the prompt
// composer.
const DefaultWindow = 10

// titleLimit bounds thread titles derived from the first message.
const titleLimit = 50

// ErrNotFound indicates the conversation does not exist or belongs to
// another user.
var ErrNotFound = errors.New("conversation: not found")

// Store manages conversation threads and their append-only message lists.
type Store struct {
	db    *gorm.DB
	nowFn func() time.Time
}

// NewStore constructs a Store.
func NewStore(db *gorm.DB, nowFn func() time.Time) *Store {
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Store{db: db, nowFn: nowFn}
}

// Ensure resolves the conversation for a chat call. With an empty public ID a
// new thread is created lazily, titled from the first user message.
func (s *Store) Ensure(ctx context.Context, userID uint64, publicID, firstMessage string) (*models.Conversation, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID != "" {
		return s.Get(ctx, userID, publicID)
	}

	now := s.nowFn()
	conv := models.Conversation{
		PublicID:  uuid.NewString(),
		UserID:    userID,
		Title:     deriveTitle(firstMessage),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := s.db.WithContext(ctx).Create(&conv).Error; errCreate != nil {
		return nil, fmt.Errorf("conversation: create thread: %w", errCreate)
	}
	return &conv, nil
}

// Get fetches a conversation by public ID scoped to its owner.
func (s *Store) Get(ctx context.Context, userID uint64, publicID string) (*models.Conversation, error) {
	var conv models.Conversation
	errFind := s.db.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&conv).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("conversation: load thread: %w", errFind)
	}
	return &conv, nil
}

// Append adds a message and touches the thread's UpdatedAt in one
// transaction.
func (s *Store) Append(ctx context.Context, conversationID uint64, role, content string) error {
	now := s.nowFn()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg := models.Message{
			ConversationID: conversationID,
			Role:           role,
			Content:        content,
			CreatedAt:      now,
		}
		if errCreate := tx.Create(&msg).Error; errCreate != nil {
			return fmt.Errorf("conversation: append message: %w", errCreate)
		}
		if errTouch := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", now).Error; errTouch != nil {
			return fmt.Errorf("conversation: touch thread: %w", errTouch)
		}
		return nil
	})
}

// RecentWindow returns the last maxMessages messages in original
// (oldest-first) order.
func (s *Store) RecentWindow(ctx context.Context, conversationID uint64, maxMessages int) ([]llm.Turn, error) {
	if maxMessages <= 0 {
		maxMessages = DefaultWindow
	}
	var rows []models.Message
	if errFind := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(maxMessages).
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("conversation: load window: %w", errFind)
	}

	turns := make([]llm.Turn, len(rows))
	for i, row := range rows {
		turns[len(rows)-1-i] = llm.Turn{Role: row.Role, Content: row.Content}
	}
	return turns, nil
}

// Rename updates a thread title.
func (s *Store) Rename(ctx context.Context, userID uint64, publicID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("conversation: empty title")
	}
	res := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		Updates(map[string]any{"title": title, "updated_at": s.nowFn()})
	if res.Error != nil {
		return fmt.Errorf("conversation: rename: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a thread together with its messages.
func (s *Store) Delete(ctx context.Context, userID uint64, publicID string) error {
	conv, errGet := s.Get(ctx, userID, publicID)
	if errGet != nil {
		return errGet
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errMsgs := tx.Where("conversation_id = ?", conv.ID).
			Delete(&models.Message{}).Error; errMsgs != nil {
			return fmt.Errorf("conversation: delete messages: %w", errMsgs)
		}
		if errConv := tx.Delete(&models.Conversation{}, conv.ID).Error; errConv != nil {
			return fmt.Errorf("conversation: delete thread: %w", errConv)
		}
		return nil
	})
}

// ListByUser returns the user's threads, most recently touched first.
func (s *Store) ListByUser(ctx context.Context, userID uint64) ([]models.Conversation, error) {
	var rows []models.Conversation
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("conversation: list threads: %w", errFind)
	}
	return rows, nil
}

// Messages returns the full ordered message list of a thread.
func (s *Store) Messages(ctx context.Context, userID uint64, publicID string) ([]models.Message, error) {
	conv, errGet := s.Get(ctx, userID, publicID)
	if errGet != nil {
		return nil, errGet
	}
	var rows []models.Message
	if errFind := s.db.WithContext(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("conversation: load messages: %w", errFind)
	}
	return rows, nil
}

// deriveTitle truncates the first message to the title limit, appending an
// ellipsis when cut.
func deriveTitle(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}
