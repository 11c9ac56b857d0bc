package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/pitchsmith/pitchsmith/internal/generator"
	"github.com/pitchsmith/pitchsmith/internal/llm"
)

// GenerateHandler exposes the generation engine over HTTP.
type GenerateHandler struct {
	engine *generator.Engine
}

// NewGenerateHandler constructs a GenerateHandler.
func NewGenerateHandler(engine *generator.Engine) *GenerateHandler {
	return &GenerateHandler{engine: engine}
}

// Proposal generates a bid proposal.
func (h *GenerateHandler) Proposal(c *gin.Context) {
	var req generator.ProposalRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, errGen := h.engine.Proposal(c.Request.Context(), currentUser(c), req)
	if errGen != nil {
		writeEngineError(c, errGen)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"artifact_id": out.ArtifactID,
		"kind":        out.Kind,
		"content":     out.Content,
		"char_count":  out.CharCount,
		"word_count":  out.WordCount,
		"remaining":   out.Remaining,
	})
}

// BuyerReply generates a reply to a buyer's message.
func (h *GenerateHandler) BuyerReply(c *gin.Context) {
	var req generator.BuyerReplyRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, errGen := h.engine.BuyerReply(c.Request.Context(), currentUser(c), req)
	if errGen != nil {
		writeEngineError(c, errGen)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"artifact_id": out.ArtifactID,
		"kind":        out.Kind,
		"content":     out.Content,
		"char_count":  out.CharCount,
		"word_count":  out.WordCount,
		"remaining":   out.Remaining,
	})
}

// Profile generates one profile variant per catalog tone.
func (h *GenerateHandler) Profile(c *gin.Context) {
	var req generator.ProfileRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, errGen := h.engine.ProfileVariants(c.Request.Context(), currentUser(c), req)
	if errGen != nil {
		writeEngineError(c, errGen)
		return
	}
	variants := make([]gin.H, 0, len(out.Variants))
	for _, v := range out.Variants {
		variants = append(variants, gin.H{
			"tone":       v.Tone,
			"content":    v.Content,
			"char_count": v.CharCount,
			"word_count": v.WordCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"variants":  variants,
		"remaining": out.Remaining,
	})
}

// Chat runs one coaching chat turn.
func (h *GenerateHandler) Chat(c *gin.Context) {
	var req generator.ChatRequest
	if errBind := c.ShouldBindJSON(&req); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing message"})
		return
	}
	out, errGen := h.engine.Chat(c.Request.Context(), currentUser(c), req)
	if errGen != nil {
		writeEngineError(c, errGen)
		return
	}
	resp := gin.H{
		"conversation_id": out.ConversationID,
		"reply":           out.Reply,
	}
	if len(out.Activities) > 0 {
		resp["activities"] = out.Activities
	}
	c.JSON(http.StatusOK, resp)
}

// writeEngineError translates engine errors into HTTP responses.
func writeEngineError(c *gin.Context, err error) {
	var quotaErr *generator.QuotaExceededError
	var upstreamErr *llm.UpstreamError
	switch {
	case errors.Is(err, generator.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, generator.ErrProfileMissing):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "complete your profile before generating"})
	case errors.As(err, &quotaErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":            quotaErr.Error(),
			"kind":             quotaErr.Kind,
			"limit":            quotaErr.Limit,
			"days_until_reset": quotaErr.DaysUntilReset,
		})
	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation backend not configured"})
	case errors.As(err, &upstreamErr):
		log.WithError(err).Warn("generation upstream failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "generation backend unavailable"})
	default:
		log.WithError(err).Error("generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generation failed"})
	}
}
