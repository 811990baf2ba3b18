// Package config loads bot configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alnah/go-pics2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrMissingToken    = errors.New("bot token is required")
	ErrMissingAdminID  = errors.New("original admin ID is required")
	ErrInvalidAdminID  = errors.New("original admin ID must be numeric")
	ErrMissingMongoURI = errors.New("MongoDB URI is required")
	ErrMissingMongoDB  = errors.New("MongoDB database name is required")
)

// Config holds all configuration for the bot process.
type Config struct {
	BotToken        string `yaml:"botToken"`        // BOT_TOKEN
	OriginalAdminID string `yaml:"originalAdminId"` // ORIGINAL_ADMIN_ID
	MongoURI        string `yaml:"mongoUri"`        // MONGODB_URI
	MongoDatabase   string `yaml:"mongoDatabase"`   // MONGODB_DB_NAME
	Port            string `yaml:"port"`            // PORT, health listener (empty = disabled)

	NavigationTimeout time.Duration `yaml:"navigationTimeout"` // PICS2PDF_NAV_TIMEOUT
	DialogTimeout     time.Duration `yaml:"dialogTimeout"`     // PICS2PDF_DIALOG_TIMEOUT
	Workers           int           `yaml:"workers"`           // PICS2PDF_WORKERS
}

// Load builds the effective configuration. Precedence: config file >
// environment > defaults. Credentials have no defaults and must come
// from the file or the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills remaining zero fields.
func (c *Config) applyDefaults() {
	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = 120 * time.Second
	}
	if c.DialogTimeout == 0 {
		c.DialogTimeout = 60 * time.Second
	}
}

// LoadFile reads and strictly parses a YAML config file into cfg,
// overwriting any fields the file sets.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return nil
}

// ApplyEnv fills cfg from environment variables. Only empty/zero fields
// are overwritten, so a config file value wins over the environment.
func ApplyEnv(cfg *Config) {
	setIfEmpty(&cfg.BotToken, "BOT_TOKEN")
	setIfEmpty(&cfg.OriginalAdminID, "ORIGINAL_ADMIN_ID")
	setIfEmpty(&cfg.MongoURI, "MONGODB_URI")
	setIfEmpty(&cfg.MongoDatabase, "MONGODB_DB_NAME")
	setIfEmpty(&cfg.Port, "PORT")

	if v := os.Getenv("PICS2PDF_NAV_TIMEOUT"); v != "" && cfg.NavigationTimeout == 0 {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.NavigationTimeout = d
		}
	}
	if v := os.Getenv("PICS2PDF_DIALOG_TIMEOUT"); v != "" && cfg.DialogTimeout == 0 {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DialogTimeout = d
		}
	}
	if v := os.Getenv("PICS2PDF_WORKERS"); v != "" && cfg.Workers == 0 {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
}

// Validate checks that every required field is present and plausible.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return ErrMissingToken
	}
	if c.OriginalAdminID == "" {
		return ErrMissingAdminID
	}
	if _, err := strconv.ParseInt(c.OriginalAdminID, 10, 64); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAdminID, c.OriginalAdminID)
	}
	if c.MongoURI == "" {
		return ErrMissingMongoURI
	}
	if c.MongoDatabase == "" {
		return ErrMissingMongoDB
	}
	return nil
}

// setIfEmpty copies the env value into dst when dst is empty.
func setIfEmpty(dst *string, key string) {
	if *dst == "" {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
}
