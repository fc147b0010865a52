package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Target application under test
	Target TargetConfig

	// Browser
	Browser BrowserConfig

	// Interaction budgets
	Timeouts TimeoutConfig

	// Artifacts
	Artifacts ArtifactConfig

	// Object storage for artifacts
	Storage StorageConfig

	// Metrics
	Metrics MetricsConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"quoteforge"`
	Version string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// TargetConfig identifies the quoting application instance to drive
type TargetConfig struct {
	BaseURL  string `envconfig:"TARGET_BASE_URL" default:"http://localhost:4200"`
	Username string `envconfig:"TARGET_USERNAME" default:""`
	Password string `envconfig:"TARGET_PASSWORD" default:""`
	ClientID string `envconfig:"TARGET_CLIENT_ID" default:""`

	// BusySelector matches the application's loading indicator.
	BusySelector string `envconfig:"TARGET_BUSY_SELECTOR" default:".busy-indicator, .loading-overlay"`
}

// BrowserConfig holds browser launch settings
type BrowserConfig struct {
	Headless       bool          `envconfig:"BROWSER_HEADLESS" default:"true"`
	SlowMoMs       int           `envconfig:"BROWSER_SLOW_MO_MS" default:"0"`
	ViewportWidth  int           `envconfig:"BROWSER_VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight int           `envconfig:"BROWSER_VIEWPORT_HEIGHT" default:"1080"`
	UserAgent      string        `envconfig:"BROWSER_USER_AGENT" default:""`
	NavTimeout     time.Duration `envconfig:"BROWSER_NAV_TIMEOUT" default:"30s"`
}

// TimeoutConfig holds the interaction budget table
type TimeoutConfig struct {
	Element      time.Duration `envconfig:"TIMEOUT_ELEMENT" default:"10s"`
	Strategy     time.Duration `envconfig:"TIMEOUT_STRATEGY" default:"2s"`
	NetworkQuiet time.Duration `envconfig:"TIMEOUT_NETWORK_QUIET" default:"15s"`
	Busy         time.Duration `envconfig:"TIMEOUT_BUSY" default:"8s"`
	DropdownOpen time.Duration `envconfig:"TIMEOUT_DROPDOWN_OPEN" default:"3s"`
	Assert       time.Duration `envconfig:"TIMEOUT_ASSERT" default:"10s"`
	Poll         time.Duration `envconfig:"TIMEOUT_POLL" default:"100ms"`
	TypeDelay    time.Duration `envconfig:"TIMEOUT_TYPE_DELAY" default:"50ms"`
	KeyDelay     time.Duration `envconfig:"TIMEOUT_KEY_DELAY" default:"150ms"`
	RetryWait    time.Duration `envconfig:"TIMEOUT_RETRY_WAIT" default:"500ms"`
	Scenario     time.Duration `envconfig:"TIMEOUT_SCENARIO" default:"5m"`
}

// ArtifactConfig holds local diagnostics output settings
type ArtifactConfig struct {
	Dir        string `envconfig:"ARTIFACT_DIR" default:"artifacts"`
	ReportJSON string `envconfig:"ARTIFACT_REPORT_JSON" default:"report.json"`
	ReportHTML string `envconfig:"ARTIFACT_REPORT_HTML" default:"report.html"`
}

// StorageConfig holds S3/MinIO settings for artifact mirroring
type StorageConfig struct {
	Enabled         bool   `envconfig:"STORAGE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_ACCESS_KEY" default:"minioadmin"`
	Bucket          string `envconfig:"STORAGE_BUCKET" default:"quoteforge"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// MetricsConfig holds the Prometheus endpoint settings
type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Target.BaseURL == "" {
		errs = append(errs, "TARGET_BASE_URL is required")
	} else if !strings.HasPrefix(c.Target.BaseURL, "http://") && !strings.HasPrefix(c.Target.BaseURL, "https://") {
		errs = append(errs, "TARGET_BASE_URL must be an http(s) URL")
	}

	if c.Storage.Enabled {
		if c.Storage.Endpoint == "" {
			errs = append(errs, "STORAGE_ENDPOINT is required when storage is enabled")
		}
		if c.Storage.Bucket == "" {
			errs = append(errs, "STORAGE_BUCKET is required when storage is enabled")
		}
	}

	if c.Timeouts.Poll <= 0 {
		errs = append(errs, "TIMEOUT_POLL must be positive")
	}
	if c.Timeouts.Element <= 0 {
		errs = append(errs, "TIMEOUT_ELEMENT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
