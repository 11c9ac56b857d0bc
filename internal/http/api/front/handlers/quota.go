package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/quota"
)

// QuotaHandler reports the caller's generation quota status.
type QuotaHandler struct {
	quota *quota.Manager
}

// NewQuotaHandler constructs a QuotaHandler.
func NewQuotaHandler(mgr *quota.Manager) *QuotaHandler {
	return &QuotaHandler{quota: mgr}
}

// statusKinds is the fixed reporting order for quota buckets.
var statusKinds = []string{
	models.KindProposal,
	models.KindBuyerReply,
	models.KindProfile,
	models.KindChatReply,
}

// Status returns per-kind usage against the current period.
func (h *QuotaHandler) Status(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	now := time.Now().UTC()
	out := make([]gin.H, 0, len(statusKinds))
	for _, kind := range statusKinds {
		check, errCheck := h.quota.Check(c.Request.Context(), user.ID, kind)
		if errCheck != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "quota lookup failed"})
			return
		}
		entry := gin.H{
			"kind":      kind,
			"limit":     check.Limit,
			"used":      check.Used,
			"remaining": check.Remaining,
		}
		if check.ResetAt != nil {
			entry["reset_at"] = check.ResetAt
			entry["days_until_reset"] = check.DaysUntilReset(now)
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"quotas": out})
}
