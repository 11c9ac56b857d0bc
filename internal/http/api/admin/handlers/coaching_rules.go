package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchsmith/pitchsmith/internal/models"
)

// CoachingRuleHandler manages admin CRUD for coaching rules.
type CoachingRuleHandler struct {
	db *gorm.DB
}

// NewCoachingRuleHandler constructs a CoachingRuleHandler.
func NewCoachingRuleHandler(db *gorm.DB) *CoachingRuleHandler {
	return &CoachingRuleHandler{db: db}
}

// coachingRuleRequest defines the request body for rule create and update.
type coachingRuleRequest struct {
	TriggerKeywords []string `json:"trigger_keywords"`
	Profession      string   `json:"profession"`
	Instruction     string   `json:"instruction"`
	Priority        int      `json:"priority"`
	Active          *bool    `json:"active"`
}

// formatRule renders a rule row for API responses.
func formatRule(rule *models.CoachingRule) gin.H {
	return gin.H{
		"id":               rule.ID,
		"trigger_keywords": rule.KeywordList(),
		"profession":       rule.Profession,
		"instruction":      rule.Instruction,
		"priority":         rule.Priority,
		"active":           rule.Active,
		"created_by":       rule.CreatedBy,
		"created_at":       rule.CreatedAt,
		"updated_at":       rule.UpdatedAt,
	}
}

// Create inserts a new coaching rule.
func (h *CoachingRuleHandler) Create(c *gin.Context) {
	var body coachingRuleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	instruction := strings.TrimSpace(body.Instruction)
	if instruction == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing instruction"})
		return
	}
	keywords := normalizeKeywords(body.TriggerKeywords)
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing trigger keywords"})
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}
	now := time.Now().UTC()
	rule := models.CoachingRule{
		TriggerKeywords: models.EncodeStringList(keywords),
		Profession:      strings.ToLower(strings.TrimSpace(body.Profession)),
		Instruction:     instruction,
		Priority:        body.Priority,
		Active:          active,
		CreatedBy:       c.GetUint64("adminID"),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&rule).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create rule failed"})
		return
	}
	c.JSON(http.StatusCreated, formatRule(&rule))
}

// List returns all coaching rules with optional filters.
func (h *CoachingRuleHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.CoachingRule{})
	if profession := strings.TrimSpace(c.Query("profession")); profession != "" {
		q = q.Where("profession = ?", strings.ToLower(profession))
	}
	if activeQ := strings.TrimSpace(c.Query("active")); activeQ != "" {
		if active, errParse := strconv.ParseBool(activeQ); errParse == nil {
			q = q.Where("active = ?", active)
		}
	}

	var rows []models.CoachingRule
	if errFind := q.Order("priority DESC, id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list rules failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatRule(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"rules": out})
}

// Get returns a coaching rule by ID.
func (h *CoachingRuleHandler) Get(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, formatRule(rule))
}

// Update replaces the mutable fields of a coaching rule.
func (h *CoachingRuleHandler) Update(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}

	var body coachingRuleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	instruction := strings.TrimSpace(body.Instruction)
	if instruction == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing instruction"})
		return
	}
	keywords := normalizeKeywords(body.TriggerKeywords)
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing trigger keywords"})
		return
	}

	rule.TriggerKeywords = models.EncodeStringList(keywords)
	rule.Profession = strings.ToLower(strings.TrimSpace(body.Profession))
	rule.Instruction = instruction
	rule.Priority = body.Priority
	if body.Active != nil {
		rule.Active = *body.Active
	}
	rule.UpdatedAt = time.Now().UTC()

	if errSave := h.db.WithContext(c.Request.Context()).Save(rule).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update rule failed"})
		return
	}
	c.JSON(http.StatusOK, formatRule(rule))
}

// Delete removes a coaching rule.
func (h *CoachingRuleHandler) Delete(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	if errDelete := h.db.WithContext(c.Request.Context()).Delete(rule).Error; errDelete != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete rule failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Enable activates a coaching rule.
func (h *CoachingRuleHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// Disable deactivates a coaching rule.
func (h *CoachingRuleHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

func (h *CoachingRuleHandler) setActive(c *gin.Context, active bool) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.CoachingRule{}).
		Where("id = ?", rule.ID).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()}).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update rule failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": rule.ID, "active": active})
}

// loadRule resolves the :id path parameter into a rule row, writing the
// error response itself on failure.
func (h *CoachingRuleHandler) loadRule(c *gin.Context) (*models.CoachingRule, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var rule models.CoachingRule
	if errFind := h.db.WithContext(c.Request.Context()).First(&rule, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load rule failed"})
		return nil, false
	}
	return &rule, true
}

// normalizeKeywords lowercases, trims, and drops empty keywords.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		trimmed := strings.ToLower(strings.TrimSpace(keyword))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
