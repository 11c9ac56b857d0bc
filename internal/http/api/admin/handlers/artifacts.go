package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	dbutil "github.com/pitchsmith/pitchsmith/internal/db"
	"github.com/pitchsmith/pitchsmith/internal/models"
)

const defaultAdminPageSize = 50

// usageKinds is the fixed reporting order for usage totals.
var usageKinds = []string{
	models.KindProposal,
	models.KindBuyerReply,
	models.KindProfile,
	models.KindChatReply,
}

// ArtifactHandler exposes admin views of generated artifacts and usage.
type ArtifactHandler struct {
	db *gorm.DB
}

// NewArtifactHandler constructs an ArtifactHandler.
func NewArtifactHandler(db *gorm.DB) *ArtifactHandler {
	return &ArtifactHandler{db: db}
}

// List returns artifacts across all users with optional filters.
func (h *ArtifactHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.GeneratedArtifact{})
	if userQ := strings.TrimSpace(c.Query("user_id")); userQ != "" {
		if userID, errParse := strconv.ParseUint(userQ, 10, 64); errParse == nil {
			q = q.Where("user_id = ?", userID)
		}
	}
	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	limit := defaultAdminPageSize
	if limitQ := strings.TrimSpace(c.Query("limit")); limitQ != "" {
		if parsed, errParse := strconv.Atoi(limitQ); errParse == nil && parsed > 0 && parsed <= 200 {
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
			"user_id":    row.UserID,
			"kind":       row.Kind,
			"platform":   row.Platform,
			"char_count": row.CharCount,
			"word_count": row.WordCount,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"artifacts": out, "total": total})
}

// Usage returns the usage counters of every user that has generated
// anything, plus per-kind totals across the selected rows.
func (h *ArtifactHandler) Usage(c *gin.Context) {
	userID := uint64(0)
	if userQ := strings.TrimSpace(c.Query("user_id")); userQ != "" {
		if parsed, errParse := strconv.ParseUint(userQ, 10, 64); errParse == nil {
			userID = parsed
		}
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.UsageCounter{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}

	var rows []models.UsageCounter
	if errFind := q.Order("updated_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list usage failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		entry := gin.H{
			"user_id":    rows[i].UserID,
			"counts":     rows[i].CountMap(),
			"updated_at": rows[i].UpdatedAt,
		}
		if rows[i].ResetAt != nil {
			entry["reset_at"] = rows[i].ResetAt
		}
		out = append(out, entry)
	}

	totals := gin.H{}
	for _, kind := range usageKinds {
		countExpr := dbutil.JSONExtractTextExpr(h.db, "counts", kind)
		tq := h.db.WithContext(c.Request.Context()).Model(&models.UsageCounter{})
		if userID != 0 {
			tq = tq.Where("user_id = ?", userID)
		}
		var sum int64
		if errSum := tq.Select("COALESCE(SUM(CAST(" + countExpr + " AS INTEGER)), 0)").Scan(&sum).Error; errSum != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sum usage failed"})
			return
		}
		totals[kind] = sum
	}

	c.JSON(http.StatusOK, gin.H{"usage": out, "totals": totals})
}
