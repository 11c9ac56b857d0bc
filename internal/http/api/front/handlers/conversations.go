package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pitchsmith/pitchsmith/internal/conversation"
)

// ConversationHandler manages the caller's chat threads.
type ConversationHandler struct {
	threads *conversation.Store
}

// NewConversationHandler constructs a ConversationHandler.
func NewConversationHandler(threads *conversation.Store) *ConversationHandler {
	return &ConversationHandler{threads: threads}
}

// List returns the caller's conversations, most recently touched first.
func (h *ConversationHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	rows, errList := h.threads.ListByUser(c.Request.Context(), user.ID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list conversations failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.PublicID,
			"title":      row.Title,
			"created_at": row.CreatedAt,
			"updated_at": row.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": out})
}

// Messages returns all turns of one conversation in order.
func (h *ConversationHandler) Messages(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	publicID := strings.TrimSpace(c.Param("id"))
	rows, errList := h.threads.Messages(c.Request.Context(), user.ID, publicID)
	if errList != nil {
		if errors.Is(errList, conversation.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list messages failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"role":       row.Role,
			"content":    row.Content,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// renameConversationRequest defines the request body for renaming a thread.
type renameConversationRequest struct {
	Title string `json:"title"`
}

// Rename updates a conversation title.
func (h *ConversationHandler) Rename(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var body renameConversationRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing title"})
		return
	}
	publicID := strings.TrimSpace(c.Param("id"))
	if errRename := h.threads.Rename(c.Request.Context(), user.ID, publicID, title); errRename != nil {
		if errors.Is(errRename, conversation.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rename conversation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes a conversation and its messages.
func (h *ConversationHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	publicID := strings.TrimSpace(c.Param("id"))
	if errDelete := h.threads.Delete(c.Request.Context(), user.ID, publicID); errDelete != nil {
		if errors.Is(errDelete, conversation.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete conversation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
