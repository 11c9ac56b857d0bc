package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchsmith/pitchsmith/internal/models"
)

const defaultArtifactPageSize = 20

// ArtifactHandler lists the caller's generated artifacts.
type ArtifactHandler struct {
	db *gorm.DB
}

// NewArtifactHandler constructs an ArtifactHandler.
func NewArtifactHandler(db *gorm.DB) *ArtifactHandler {
	return &ArtifactHandler{db: db}
}

// List returns the caller's artifacts, newest first, with optional filters.
func (h *ArtifactHandler) List(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.GeneratedArtifact{}).
		Where("user_id = ?", user.ID)
	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if platform := strings.TrimSpace(c.Query("platform")); platform != "" {
		q = q.Where("platform = ?", platform)
	}

	limit := defaultArtifactPageSize
	if limitQ := strings.TrimSpace(c.Query("limit")); limitQ != "" {
		if parsed, errParse := strconv.Atoi(limitQ); errParse == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	offset := 0
	if offsetQ := strings.TrimSpace(c.Query("offset")); offsetQ != "" {
		if parsed, errParse := strconv.Atoi(offsetQ); errParse == nil && parsed > 0 {
			offset = parsed
		}
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count artifacts failed"})
		return
	}

	var rows []models.GeneratedArtifact
	if errFind := q.Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list artifacts failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"kind":       row.Kind,
			"platform":   row.Platform,
			"content":    row.Content,
			"char_count": row.CharCount,
			"word_count": row.WordCount,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": out, "total": total})
}

// Get returns one artifact by ID, including its input snapshot.
func (h *ArtifactHandler) Get(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var row models.GeneratedArtifact
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load artifact failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         row.ID,
		"kind":       row.Kind,
		"platform":   row.Platform,
		"content":    row.Content,
		"char_count": row.CharCount,
		"word_count": row.WordCount,
		"inputs":     row.Inputs,
		"created_at": row.CreatedAt,
	})
}
