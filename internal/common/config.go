package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	OCR    OCRConfig    `yaml:"ocr"`
	Models ModelsConfig `yaml:"models"`
	Audit  AuditConfig  `yaml:"audit"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	UploadDir      string        `yaml:"upload_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ExtractTimeout time.Duration `yaml:"extract_timeout"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract string `yaml:"tesseract"`
	Pdftoppm  string `yaml:"pdftoppm"`
	Lang      string `yaml:"lang"`
	PSM       int    `yaml:"psm"`
	DPI       int    `yaml:"dpi"`
	MaxPages  int    `yaml:"max_pages"`
}

// ModelsConfig holds classifier configuration
type ModelsConfig struct {
	Dir    string `yaml:"dir"`
	OrtLib string `yaml:"ort_lib"`
}

// AuditConfig holds audit trail configuration
type AuditConfig struct {
	DSN string `yaml:"dsn"`
}

// LoadConfig builds configuration from defaults, an optional YAML file
// (LV_CONFIG) and environment variable overrides, in that order.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			UploadDir:      "./uploads",
			MaxUploadBytes: 16 << 20,
			ExtractTimeout: 2 * time.Minute,
		},
		OCR: OCRConfig{
			Tesseract: "tesseract",
			Pdftoppm:  "pdftoppm",
			Lang:      "eng",
			PSM:       6,
			DPI:       150,
		},
		Models: ModelsConfig{
			Dir: "./models",
		},
		Audit: AuditConfig{
			DSN: "./labvitals_audit.db",
		},
	}

	if path := os.Getenv("LV_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Server.Addr = getEnv("LV_ADDR", cfg.Server.Addr)
	cfg.Server.UploadDir = getEnv("LV_UPLOAD_DIR", cfg.Server.UploadDir)
	cfg.Server.MaxUploadBytes = getEnvAsInt64("LV_MAX_UPLOAD_BYTES", cfg.Server.MaxUploadBytes)
	cfg.Server.ExtractTimeout = getEnvAsDuration("LV_EXTRACT_TIMEOUT", cfg.Server.ExtractTimeout)
	cfg.OCR.Tesseract = getEnv("LV_TESSERACT", cfg.OCR.Tesseract)
	cfg.OCR.Pdftoppm = getEnv("LV_PDFTOPPM", cfg.OCR.Pdftoppm)
	cfg.OCR.Lang = getEnv("LV_OCR_LANG", cfg.OCR.Lang)
	cfg.OCR.PSM = getEnvAsInt("LV_OCR_PSM", cfg.OCR.PSM)
	cfg.OCR.DPI = getEnvAsInt("LV_OCR_DPI", cfg.OCR.DPI)
	cfg.OCR.MaxPages = getEnvAsInt("LV_OCR_MAX_PAGES", cfg.OCR.MaxPages)
	cfg.Models.Dir = getEnv("LV_MODELS_DIR", cfg.Models.Dir)
	cfg.Models.OrtLib = getEnv("LV_ORT_LIB", cfg.Models.OrtLib)
	cfg.Audit.DSN = getEnv("LV_AUDIT_DSN", cfg.Audit.DSN)

	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "server addr is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "max upload bytes must be positive", ErrInvalidInput)
	}
	if c.Server.ExtractTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "extract timeout must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
