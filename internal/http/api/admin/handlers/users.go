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

// UserHandler manages admin views of user accounts.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns users with optional filters.
func (h *UserHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if usernameQ := strings.TrimSpace(c.Query("username")); usernameQ != "" {
		q = q.Where("username LIKE ?", "%"+usernameQ+"%")
	}
	if professionQ := strings.TrimSpace(c.Query("profession")); professionQ != "" {
		q = q.Where("profession = ?", professionQ)
	}

	var rows []models.User
	if errFind := q.Order("created_at DESC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"id":         row.ID,
			"username":   row.Username,
			"email":      row.Email,
			"profession": row.Profession,
			"active":     row.Active,
			"disabled":   row.Disabled,
			"created_at": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// Get returns a user by ID with full profile fields.
func (h *UserHandler) Get(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
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
		"active":          user.Active,
		"disabled":        user.Disabled,
		"created_at":      user.CreatedAt,
		"updated_at":      user.UpdatedAt,
	})
}

// Disable blocks a user account.
func (h *UserHandler) Disable(c *gin.Context) {
	h.setDisabled(c, true)
}

// Enable unblocks a user account.
func (h *UserHandler) Enable(c *gin.Context) {
	h.setDisabled(c, false)
}

func (h *UserHandler) setDisabled(c *gin.Context, disabled bool) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}
	errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"disabled": disabled, "updated_at": time.Now().UTC()}).Error
	if errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update user failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "disabled": disabled})
}

// loadUser resolves the :id path parameter into a user row.
func (h *UserHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load user failed"})
		return nil, false
	}
	return &user, true
}
