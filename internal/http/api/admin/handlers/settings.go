package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/settings"
)

// SettingHandler manages admin CRUD for settings values.
type SettingHandler struct {
	db *gorm.DB
}

// NewSettingHandler constructs a SettingHandler.
func NewSettingHandler(db *gorm.DB) *SettingHandler {
	return &SettingHandler{db: db}
}

// settingRequest captures the payload for creating or updating a setting.
type settingRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// validateSettingValue structurally checks payloads for known keys.
func validateSettingValue(key string, value json.RawMessage) error {
	if len(value) == 0 {
		return errors.New("value is required")
	}
	switch key {
	case settings.KeyQuota:
		var quota settings.Quota
		if errUnmarshal := json.Unmarshal(value, &quota); errUnmarshal != nil {
			return errors.New("value must be a quota object")
		}
	case settings.KeyRateLimit:
		var rateLimit settings.RateLimit
		if errUnmarshal := json.Unmarshal(value, &rateLimit); errUnmarshal != nil {
			return errors.New("value must be a rate limit object")
		}
		if rateLimit.PerSecond < 0 {
			return errors.New("per_second must be non-negative")
		}
	default:
		if !json.Valid(value) {
			return errors.New("value must be valid json")
		}
	}
	return nil
}

// formatSetting renders a setting row for API responses.
func formatSetting(row *models.Setting) gin.H {
	return gin.H{
		"key":        row.Key,
		"value":      row.Value,
		"created_at": row.CreatedAt,
		"updated_at": row.UpdatedAt,
	}
}

// Create validates and inserts a setting.
func (h *SettingHandler) Create(c *gin.Context) {
	var body settingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	key := strings.TrimSpace(body.Key)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	if errValidate := validateSettingValue(key, body.Value); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}

	var existing models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "key already exists"})
		return
	}

	now := time.Now().UTC()
	setting := models.Setting{
		Key:       key,
		Value:     datatypes.JSON(body.Value),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&setting).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create setting failed"})
		return
	}
	c.JSON(http.StatusCreated, formatSetting(&setting))
}

// List returns all settings sorted by key.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatSetting(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// Get returns a setting by key.
func (h *SettingHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var row models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load setting failed"})
		return
	}
	c.JSON(http.StatusOK, formatSetting(&row))
}

// Update replaces the value of an existing setting.
func (h *SettingHandler) Update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var body settingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if errValidate := validateSettingValue(key, body.Value); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}

	var row models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load setting failed"})
		return
	}

	row.Value = datatypes.JSON(body.Value)
	row.UpdatedAt = time.Now().UTC()
	if errSave := h.db.WithContext(c.Request.Context()).Save(&row).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update setting failed"})
		return
	}
	c.JSON(http.StatusOK, formatSetting(&row))
}

// Delete removes a setting, reverting to config defaults.
func (h *SettingHandler) Delete(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	result := h.db.WithContext(c.Request.Context()).Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete setting failed"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
