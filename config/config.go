package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName   = "court-booking-tui"
	envPrefix = "COURT"
)

type Config struct {
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:5000/api"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"12s"`
	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"1"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string        `envconfig:"LOG_FILE"`
}

// LoadWithFile loads an optional .env file before reading COURT_* variables.
// A missing file is not an error and an empty path skips it.
func LoadWithFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and the API URL scheme.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("COURT_API_URL is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("COURT_API_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("COURT_API_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("COURT_API_URL must include a host")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("COURT_HTTP_TIMEOUT must be positive")
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("COURT_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName+".log")
	}
	return filepath.Join(dir, AppName, "court-booking.log")
}
