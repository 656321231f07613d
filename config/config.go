package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string        `toml:"database_url"`
	BridgeAddr         string        `toml:"bridge_addr"`
	GoEnv              string        `toml:"go_env"`
	SessionSecret      string        `toml:"session_secret"`
	SessionIssuer      string        `toml:"session_issuer"`
	SessionTTL         time.Duration `toml:"-"`
	SessionTTLRaw      string        `toml:"session_ttl"`
	CORSOrigins        []string      `toml:"cors_origins"`
	ReportStorage      string        `toml:"report_storage"`
	ReportDir          string        `toml:"report_dir"`
	AWSRegion          string        `toml:"aws_region"`
	AWSS3Bucket        string        `toml:"aws_s3_bucket"`
	AWSAccessKeyID     string        `toml:"-"`
	AWSSecretAccessKey string        `toml:"-"`
	LogLevel           string        `toml:"log_level"`
}

// SessionAudience is the audience every session token is issued for
const SessionAudience = "kingfisher-desktop"

var current *Config

// Load loads the configuration from an optional TOML settings file and environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file found, using system environment variables")
		}
	} else {
		log.Info().Str("file", envFile).Msg("loaded configuration")
	}

	cfg := defaults()
	if path := os.Getenv("KINGFISHER_CONFIG"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)

	ttl, err := time.ParseDuration(cfg.SessionTTLRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", cfg.SessionTTLRaw, err)
	}
	cfg.SessionTTL = ttl

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	current = cfg
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		DatabaseURL:   "kingfisher.db",
		BridgeAddr:    "127.0.0.1:8080",
		GoEnv:         "development",
		SessionIssuer: "kingfisher-records",
		SessionTTLRaw: "8h",
		CORSOrigins:   []string{"http://localhost:5173"},
		ReportStorage: "local",
		ReportDir:     "./reports",
		AWSRegion:     "eu-west-2",
		LogLevel:      "info",
	}
}

func loadFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.BridgeAddr = getEnv("BRIDGE_ADDR", cfg.BridgeAddr)
	cfg.GoEnv = getEnv("GO_ENV", cfg.GoEnv)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionIssuer = getEnv("SESSION_ISSUER", cfg.SessionIssuer)
	cfg.SessionTTLRaw = getEnv("SESSION_TTL", cfg.SessionTTLRaw)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}
	cfg.ReportStorage = getEnv("REPORT_STORAGE", cfg.ReportStorage)
	cfg.ReportDir = getEnv("REPORT_DIR", cfg.ReportDir)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.AWSS3Bucket = getEnv("AWS_S3_BUCKET", cfg.AWSS3Bucket)
	cfg.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", cfg.AWSAccessKeyID)
	cfg.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", cfg.AWSSecretAccessKey)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" && c.IsProduction() {
		return errors.New("SESSION_SECRET is required in production")
	}
	switch c.ReportStorage {
	case "local":
		if c.ReportDir == "" {
			return errors.New("REPORT_DIR is required for local report storage")
		}
	case "s3":
		if c.AWSS3Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required for s3 report storage")
		}
	default:
		return fmt.Errorf("unknown REPORT_STORAGE %q", c.ReportStorage)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsPostgres reports whether DatabaseURL points at a postgres server rather than a local file
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// GetConfig returns the configuration loaded by the last successful Load
func GetConfig() *Config {
	return current
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	current = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
