// Package config provides configuration loading and validation for the CLI
// and HTTP server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit-analyzer/internal/detector"
	"github.com/jonathan/jobfit-analyzer/internal/scoring"
	"github.com/jonathan/jobfit-analyzer/internal/types"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. JOBFIT_REDIS_URL.
const EnvPrefix = "JOBFIT"

// Default values
const (
	DefaultModel        = "gemini-2.5-pro"
	DefaultPort         = 8080
	DefaultWatchTimeout = 60 * time.Second
	defaultStoreFile    = "store.json"
)

// Config represents the configuration that can be loaded from a JSON or YAML
// file and overridden from the environment. All fields are optional.
type Config struct {
	// Scoring
	APIKey         string `mapstructure:"api_key" json:"api_key,omitempty"`                 // Gemini API key
	Model          string `mapstructure:"model" json:"model,omitempty"`                     // Gemini model used for scoring
	TargetCategory string `mapstructure:"target_category" json:"target_category,omitempty"` // Default target category
	ScorePolicy    string `mapstructure:"score_policy" json:"score_policy,omitempty"`       // trust or recompute

	// Storage
	DatabaseURL string `mapstructure:"database_url" json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `mapstructure:"redis_url" json:"redis_url,omitempty"`       // Redis URL for the profile record
	StorePath   string `mapstructure:"store_path" json:"store_path,omitempty"`     // JSON file for the profile record

	// Page watching
	SettleDelay     time.Duration `mapstructure:"settle_delay" json:"settle_delay,omitempty"`
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout" json:"fallback_timeout,omitempty"`
	WatchTimeout    time.Duration `mapstructure:"watch_timeout" json:"watch_timeout,omitempty"`
	ChromePath      string        `mapstructure:"chrome_path" json:"chrome_path,omitempty"`

	// Identity and behavior
	UserID  string `mapstructure:"user_id" json:"user_id,omitempty"` // User UUID for saving scans
	Port    int    `mapstructure:"port" json:"port,omitempty"`
	Verbose bool   `mapstructure:"verbose" json:"verbose,omitempty"` // Print detailed debug information
}

var keys = []string{
	"api_key", "model", "target_category", "score_policy",
	"database_url", "redis_url", "store_path",
	"settle_delay", "fallback_timeout", "watch_timeout", "chrome_path",
	"user_id", "port", "verbose",
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Model:           DefaultModel,
		TargetCategory:  string(types.CategoryAIML),
		ScorePolicy:     string(scoring.PolicyTrustUpstream),
		StorePath:       DefaultStorePath(),
		SettleDelay:     detector.DefaultSettleDelay,
		FallbackTimeout: detector.DefaultFallbackTimeout,
		WatchTimeout:    DefaultWatchTimeout,
		Port:            DefaultPort,
	}
}

// DefaultStorePath is store.json under the user config directory, or in the
// working directory when that cannot be determined.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return defaultStoreFile
	}
	return filepath.Join(dir, "jobfit", defaultStoreFile)
}

// NewViper returns a viper instance with JOBFIT_* environment overrides bound
// for every key. GEMINI_API_KEY and DATABASE_URL are honoured as fallbacks.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	return v
}

// Load reads the configuration file at path (if any) into v, applies
// environment overrides and unmarshals the result. Unset keys are left zero;
// use MergeWithDefaults to fill them.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}
	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads a configuration file with environment overrides and
// built-in defaults applied.
func LoadConfig(path string) (*Config, error) {
	cfg, err := Load(NewViper(), path)
	if err != nil {
		return nil, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.TargetCategory != "" {
		if _, err := types.ParseTargetCategory(c.TargetCategory); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if _, err := scoring.ParsePolicy(c.ScorePolicy); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.UserID != "" {
		if _, err := uuid.Parse(c.UserID); err != nil {
			return fmt.Errorf("config error: 'user_id' must be a UUID: %w", err)
		}
	}

	if c.SettleDelay < 0 {
		return fmt.Errorf("config error: 'settle_delay' must be non-negative")
	}
	if c.FallbackTimeout < 0 {
		return fmt.Errorf("config error: 'fallback_timeout' must be non-negative")
	}
	if c.WatchTimeout < 0 {
		return fmt.Errorf("config error: 'watch_timeout' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome executable not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.TargetCategory == "" {
		result.TargetCategory = defaults.TargetCategory
	}
	if result.ScorePolicy == "" {
		result.ScorePolicy = defaults.ScorePolicy
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}

	// Durations and ints: use default if zero
	if result.SettleDelay == 0 {
		result.SettleDelay = defaults.SettleDelay
	}
	if result.FallbackTimeout == 0 {
		result.FallbackTimeout = defaults.FallbackTimeout
	}
	if result.WatchTimeout == 0 {
		result.WatchTimeout = defaults.WatchTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Category returns the parsed default target category.
func (c *Config) Category() (types.TargetCategory, error) {
	return types.ParseTargetCategory(c.TargetCategory)
}

// Policy returns the parsed score policy.
func (c *Config) Policy() (scoring.ScorePolicy, error) {
	return scoring.ParsePolicy(c.ScorePolicy)
}

// ParsedUserID returns the configured user ID, or uuid.Nil when unset.
func (c *Config) ParsedUserID() (uuid.UUID, error) {
	if c.UserID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(c.UserID)
}

// DetectorConfig returns the change detector timings.
func (c *Config) DetectorConfig() detector.Config {
	return detector.Config{SettleDelay: c.SettleDelay, FallbackTimeout: c.FallbackTimeout}
}
