package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/profile"
)

// ProfileHandler manages the caller's freelancer profile.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// currentUser pulls the authenticated user loaded by the auth middleware.
func currentUser(c *gin.Context) *models.User {
	value, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"name":            user.Name,
		"email":           user.Email,
		"profession":      user.Profession,
		"skills":          user.SkillList(),
		"experience":      user.Experience,
		"preferred_style": user.PreferredStyle,
		"portfolio_url":   user.PortfolioURL,
		"platforms":       user.PlatformList(),
		"complete":        profile.Complete(user),
	})
}

// updateProfileRequest defines the request body for profile updates. Pointer
// fields distinguish "not sent" from "clear".
type updateProfileRequest struct {
	Name           *string   `json:"name"`
	Profession     *string   `json:"profession"`
	Skills         *[]string `json:"skills"`
	Experience     *string   `json:"experience"`
	PreferredStyle *string   `json:"preferred_style"`
	PortfolioURL   *string   `json:"portfolio_url"`
	Platforms      *[]string `json:"platforms"`
}

// Update applies partial changes to the caller's profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{}
	if body.Name != nil {
		updates["name"] = strings.TrimSpace(*body.Name)
	}
	if body.Profession != nil {
		updates["profession"] = strings.TrimSpace(*body.Profession)
	}
	if body.Skills != nil {
		updates["skills"] = models.EncodeStringList(trimEach(*body.Skills))
	}
	if body.Experience != nil {
		updates["experience"] = strings.TrimSpace(*body.Experience)
	}
	if body.PreferredStyle != nil {
		updates["preferred_style"] = strings.TrimSpace(*body.PreferredStyle)
	}
	if body.PortfolioURL != nil {
		updates["portfolio_url"] = strings.TrimSpace(*body.PortfolioURL)
	}
	if body.Platforms != nil {
		updates["platforms"] = models.EncodeStringList(trimEach(*body.Platforms))
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	updates["updated_at"] = time.Now().UTC()

	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(updates).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update profile failed"})
		return
	}

	var fresh models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&fresh, user.ID).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload profile failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profession": fresh.Profession,
		"skills":     fresh.SkillList(),
		"complete":   profile.Complete(&fresh),
	})
}

// trimEach trims whitespace and drops empty entries.
func trimEach(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
