package db

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/settings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate runs schema migrations and seeds default settings.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.CoachingRule{},
		&models.Conversation{},
		&models.Message{},
		&models.UsageCounter{},
		&models.GeneratedArtifact{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureQuotaSetting(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureQuotaSetting seeds the default quota setting row when absent.
func ensureQuotaSetting(conn *gorm.DB) error {
	var existing models.Setting
	errFind := conn.Where("key = ?", settings.KeyQuota).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: load quota setting: %w", errFind)
	}

	payload, errMarshal := json.Marshal(settings.DefaultQuota())
	if errMarshal != nil {
		return fmt.Errorf("db: marshal quota setting: %w", errMarshal)
	}
	row := models.Setting{Key: settings.KeyQuota, Value: datatypes.JSON(payload)}
	if errCreate := conn.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("db: seed quota setting: %w", errCreate)
	}
	return nil
}
