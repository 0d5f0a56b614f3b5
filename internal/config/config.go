package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Port          string `yaml:"port"`
	DBConn        string `yaml:"db_conn"`
	LogLevel      string `yaml:"log_level"`
	JWTSecret     string `yaml:"jwt_secret"`
	CBRURL        string `yaml:"cbr_url"`
	HMACSecret    string `yaml:"hmac_secret"`
	EncryptionKey string `yaml:"encryption_key"`

	// LoanMargin is added to the central bank key rate for floating loans.
	LoanMargin float64 `yaml:"loan_margin"`

	NarrativeURL     string        `yaml:"narrative_url"`
	NarrativeAPIKey  string        `yaml:"narrative_api_key"`
	NarrativeTimeout time.Duration `yaml:"narrative_timeout"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     string `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SenderEmail  string `yaml:"sender_email"`

	// DigestSchedule is a cron spec for the monthly health digest. Empty disables it.
	DigestSchedule string `yaml:"digest_schedule"`
}

func defaults() *Config {
	return &Config{
		Port:             "8080",
		DBConn:           "host=localhost port=5436 user=test password=test dbname=payfirst sslmode=disable",
		LogLevel:         "INFO",
		CBRURL:           "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx",
		LoanMargin:       5.0,
		NarrativeTimeout: 15 * time.Second,
		SMTPPort:         "587",
		DigestSchedule:   "0 9 1 * *",
	}
}

// NewConfig loads configuration from CONFIG_FILE (if set) and then from
// environment variables, which take precedence.
func NewConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBConn = getEnv("DB_CONN", cfg.DBConn)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.CBRURL = getEnv("CBR_URL", cfg.CBRURL)
	cfg.HMACSecret = getEnv("HMAC_SECRET", cfg.HMACSecret)
	cfg.EncryptionKey = getEnv("ENCRYPTION_KEY", cfg.EncryptionKey)
	cfg.NarrativeURL = getEnv("NARRATIVE_URL", cfg.NarrativeURL)
	cfg.NarrativeAPIKey = getEnv("NARRATIVE_API_KEY", cfg.NarrativeAPIKey)
	cfg.SMTPHost = getEnv("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnv("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SenderEmail = getEnv("SENDER_EMAIL", cfg.SenderEmail)
	cfg.DigestSchedule = getEnv("DIGEST_SCHEDULE", cfg.DigestSchedule)

	if v, ok := os.LookupEnv("LOAN_MARGIN"); ok {
		margin, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOAN_MARGIN: %w", err)
		}
		cfg.LoanMargin = margin
	}
	if v, ok := os.LookupEnv("NARRATIVE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NARRATIVE_TIMEOUT: %w", err)
		}
		cfg.NarrativeTimeout = d
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.HMACSecret == "" {
		return fmt.Errorf("HMAC_SECRET is required")
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if _, err := c.EncryptionKeyBytes(); err != nil {
		return err
	}
	if c.NarrativeTimeout <= 0 {
		return fmt.Errorf("NARRATIVE_TIMEOUT must be positive")
	}
	return nil
}

// EncryptionKeyBytes decodes the hex encryption key into an AES key.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be hex encoded: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	}
	return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 16, 24 or 32 bytes, got %d", len(key))
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
