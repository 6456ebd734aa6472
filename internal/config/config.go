package config

import (
	"os"
	"strconv"
	"time"

	"bizwiz/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Files    FilesConfig    `yaml:"files"`
	SMTP     SMTPConfig     `yaml:"smtp"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver      string        `yaml:"driver" validate:"oneof=postgres sqlite"`
	URL         string        `yaml:"url"`
	ChunkSize   int           `yaml:"chunk_size" validate:"gte=1"`
	GrantGroup  string        `yaml:"grant_group"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
}

// FilesConfig holds bulk reader and export settings
type FilesConfig struct {
	ReadWorkers int    `yaml:"read_workers" validate:"gte=1,lte=64"`
	OutputDir   string `yaml:"output_dir"`
	ConcatHow   string `yaml:"concat_how" validate:"oneof=vertical diagonal"`
	DateLayout  string `yaml:"date_layout" validate:"required"`
}

// SMTPConfig holds outgoing mail settings. Host may be empty when only drafts
// are written.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from" validate:"omitempty,email"`
}

// Default returns the configuration used when no file or environment is set
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      "postgres",
			ChunkSize:   10000,
			ConnTimeout: 30 * time.Second,
		},
		Files: FilesConfig{
			ReadWorkers: 4,
			OutputDir:   ".",
			ConcatHow:   "diagonal",
			DateLayout:  "%Y-%m-%d",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variable overrides, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to parse config file"))
			}
		}
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and returns a CONFIG_INVALID error on failure
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return &errors.AppError{
			Code:    errors.CodeConfigInvalid,
			Message: "configuration validation failed",
			Cause:   err,
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Database.Driver = getEnvOrDefault("BIZWIZ_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Database.ChunkSize = getEnvIntOrDefault("BIZWIZ_CHUNK_SIZE", cfg.Database.ChunkSize)
	cfg.Database.GrantGroup = getEnvOrDefault("BIZWIZ_GRANT_GROUP", cfg.Database.GrantGroup)
	cfg.Database.ConnTimeout = getEnvDurationOrDefault("BIZWIZ_DB_TIMEOUT", cfg.Database.ConnTimeout)

	cfg.Files.ReadWorkers = getEnvIntOrDefault("BIZWIZ_READ_WORKERS", cfg.Files.ReadWorkers)
	cfg.Files.OutputDir = getEnvOrDefault("BIZWIZ_OUTPUT_DIR", cfg.Files.OutputDir)
	cfg.Files.ConcatHow = getEnvOrDefault("BIZWIZ_CONCAT_HOW", cfg.Files.ConcatHow)
	cfg.Files.DateLayout = getEnvOrDefault("BIZWIZ_DATE_FORMAT", cfg.Files.DateLayout)

	cfg.SMTP.Host = getEnvOrDefault("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getEnvIntOrDefault("SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Username = getEnvOrDefault("SMTP_USER", cfg.SMTP.Username)
	cfg.SMTP.Password = getEnvOrDefault("SMTP_PASS", cfg.SMTP.Password)
	cfg.SMTP.From = getEnvOrDefault("SMTP_FROM", cfg.SMTP.From)
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
