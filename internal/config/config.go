package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/settings"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the config layer.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOpenAIBase   = "OPENAI_BASE_URL"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// ModelConfig holds the external text-generation endpoint settings.
type ModelConfig struct {
	APIKey    string `yaml:"api-key"`
	BaseURL   string `yaml:"base-url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max-tokens"`
}

// QuotaConfig holds generation quota defaults from the config file.
type QuotaConfig struct {
	PeriodDays int            `yaml:"period-days"`
	Limits     map[string]int `yaml:"limits"`
}

// RateLimitConfig holds request rate limit defaults from the config file.
type RateLimitConfig struct {
	PerSecond int `yaml:"per-second"`
	Redis     struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// fileConfig maps the full YAML config file.
type fileConfig struct {
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Model     ModelConfig     `yaml:"model"`
	Quota     QuotaConfig     `yaml:"quota"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
}

// readFile parses the YAML config file, tolerating a missing file.
func readFile(configPath string) (fileConfig, error) {
	var cfg fileConfig
	data, errRead := os.ReadFile(configPath)
	if errRead != nil {
		if os.IsNotExist(errRead) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", errRead)
	}
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("parse config file: %w", errUnmarshal)
	}
	return cfg, nil
}

// LoadDatabaseDSN reads the database DSN from the environment or config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	cfg, errLoad := readFile(configPath)
	if errLoad != nil {
		return "", errLoad
	}
	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the config file with env overrides.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	result := JWTConfig{Expiry: defaultJWTExpiry}

	cfg, errLoad := readFile(configPath)
	if errLoad == nil {
		result = cfg.JWT
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// Default model invocation settings.
const (
	defaultModelName = "gpt-4o-mini"
	defaultMaxTokens = 1024
)

// LoadModelConfig loads model endpoint settings with env overrides.
func LoadModelConfig(configPath string) (ModelConfig, error) {
	result := ModelConfig{Model: defaultModelName, MaxTokens: defaultMaxTokens}

	cfg, errLoad := readFile(configPath)
	if errLoad != nil {
		return result, errLoad
	}
	if strings.TrimSpace(cfg.Model.APIKey) != "" {
		result.APIKey = strings.TrimSpace(cfg.Model.APIKey)
	}
	if strings.TrimSpace(cfg.Model.BaseURL) != "" {
		result.BaseURL = strings.TrimSpace(cfg.Model.BaseURL)
	}
	if strings.TrimSpace(cfg.Model.Model) != "" {
		result.Model = strings.TrimSpace(cfg.Model.Model)
	}
	if cfg.Model.MaxTokens > 0 {
		result.MaxTokens = cfg.Model.MaxTokens
	}

	if key := strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey)); key != "" {
		result.APIKey = key
	}
	if base := strings.TrimSpace(os.Getenv(EnvOpenAIBase)); base != "" {
		result.BaseURL = base
	}
	return result, nil
}

// LoadSettingsDefaults builds the settings-store defaults from the config file.
func LoadSettingsDefaults(configPath string) (settings.Defaults, error) {
	cfg, errLoad := readFile(configPath)
	if errLoad != nil {
		return settings.Defaults{}, errLoad
	}

	defaults := settings.Defaults{
		Quota: settings.Quota{
			PeriodDays: cfg.Quota.PeriodDays,
			Limits:     cfg.Quota.Limits,
		},
		RateLimit: settings.RateLimit{
			PerSecond:     cfg.RateLimit.PerSecond,
			RedisEnabled:  cfg.RateLimit.Redis.Enabled,
			RedisAddr:     cfg.RateLimit.Redis.Addr,
			RedisPassword: cfg.RateLimit.Redis.Password,
			RedisPrefix:   cfg.RateLimit.Redis.Prefix,
			RedisDB:       cfg.RateLimit.Redis.DB,
		},
	}
	return defaults, nil
}
