// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/athledata/athlecrawl/internal/athle"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Match   MatchConfig   `mapstructure:"match"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// HTTPConfig configures fetch timeout and retry behavior.
type HTTPConfig struct {
	TimeoutSeconds   int `mapstructure:"timeout_seconds"`
	MaxRetries       int `mapstructure:"max_retries"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// CrawlerConfig governs pagination pacing and upstream endpoints.
type CrawlerConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	DelayMs   int    `mapstructure:"delay_ms"`
	BaseURL   string `mapstructure:"base_url"`
	PortalURL string `mapstructure:"portal_url"`
	FirstYear int    `mapstructure:"first_year"`
}

// MatchConfig exposes the fuzzy-matching knobs. Threshold is the minimum
// Jaro-Winkler similarity for a name match; TieMargin is the band within
// which two above-threshold scores count as a tie.
type MatchConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	TieMargin float64 `mapstructure:"tie_margin"`
}

// ArchiveConfig points raw-page archiving at a directory; empty disables it.
type ArchiveConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ATHLECRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("crawler.user_agent", "athlecrawl/1.0")
	v.SetDefault("crawler.delay_ms", 500)
	v.SetDefault("crawler.base_url", "https://bases.athle.fr/asp.net")
	v.SetDefault("crawler.portal_url", "https://www.athle.fr")
	v.SetDefault("crawler.first_year", int(athle.FirstSeason))
	v.SetDefault("match.threshold", 0.92)
	v.SetDefault("match.tie_margin", 0.01)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Crawler.FirstYear <= 0 {
		return fmt.Errorf("crawler.first_year must be > 0")
	}
	if c.Match.Threshold <= 0 || c.Match.Threshold > 1 {
		return fmt.Errorf("match.threshold must be in (0,1]")
	}
	if c.Match.TieMargin < 0 || c.Match.TieMargin >= 1 {
		return fmt.Errorf("match.tie_margin must be in [0,1)")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BackoffInitial converts the initial backoff into a duration.
func (c HTTPConfig) BackoffInitial() time.Duration {
	return time.Duration(c.BackoffInitialMs) * time.Millisecond
}

// BackoffMax converts the backoff ceiling into a duration.
func (c HTTPConfig) BackoffMax() time.Duration {
	return time.Duration(c.BackoffMaxMs) * time.Millisecond
}

// Delay converts the inter-page delay into a duration.
func (c CrawlerConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}
