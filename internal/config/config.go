// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sitebind/sitebind/internal/crawler"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Render  RenderConfig  `mapstructure:"render"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl pipeline.
type CrawlerConfig struct {
	StartURL        string   `mapstructure:"start_url"`
	AllowedPrefixes []string `mapstructure:"allowed_prefixes"`
	OutputDir       string   `mapstructure:"output_dir"`
	OutputName      string   `mapstructure:"output_name"`
	OutputKind      string   `mapstructure:"output_kind"`
	Strategy        string   `mapstructure:"strategy"`
	MaxURLs         int      `mapstructure:"max_urls"`
	MaxPartSizeMB   int      `mapstructure:"max_part_size_mb"`
	Concurrency     int      `mapstructure:"concurrency"`
	UserAgent       string   `mapstructure:"user_agent"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
}

// RenderConfig configures the headless rendering subsystem.
type RenderConfig struct {
	MaxParallel   int     `mapstructure:"max_parallel"`
	NavTimeoutSec int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
}

// SessionConfig points at the read-only browser session snapshot.
type SessionConfig struct {
	StateFile string `mapstructure:"state_file"`
}

// StorageConfig selects the part-output backend. When Bucket is empty, parts
// are written under the crawler output directory.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig controls the optional metrics listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITEBIND")
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

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.output_dir", "output")
	v.SetDefault("crawler.output_kind", string(crawler.OutputMarkdown))
	v.SetDefault("crawler.strategy", string(crawler.StrategyHTMLOnly))
	v.SetDefault("crawler.max_urls", 500)
	v.SetDefault("crawler.max_part_size_mb", 99)
	v.SetDefault("crawler.concurrency", 20)
	v.SetDefault("crawler.user_agent", "sitebind/0.1")
	v.SetDefault("crawler.timeout_seconds", 20)
	v.SetDefault("render.max_parallel", 2)
	v.SetDefault("render.nav_timeout_seconds", 45)
	v.SetDefault("render.domain_qps", 0)
	v.SetDefault("logging.development", true)
}

// applyDerived fills values computed from other settings: the default prefix
// set, the derived output name, and the strategy forced by PDF output.
func (c *Config) applyDerived() {
	if len(c.Crawler.AllowedPrefixes) == 0 && c.Crawler.StartURL != "" {
		c.Crawler.AllowedPrefixes = []string{c.Crawler.StartURL}
	}
	if c.Crawler.OutputName == "" && c.Crawler.StartURL != "" {
		c.Crawler.OutputName = crawler.DeriveOutputName(c.Crawler.StartURL)
	}
	// PDF parts hold rendered pages, so markdown probing has nothing to feed
	// them; force the HTML path.
	if c.Crawler.OutputKind == string(crawler.OutputPDF) {
		c.Crawler.Strategy = string(crawler.StrategyHTMLOnly)
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if _, err := c.CrawlConfig(); err != nil {
		return err
	}
	if c.Crawler.OutputDir == "" && c.Storage.GCSBucket == "" {
		return fmt.Errorf("crawler.output_dir or storage.gcs_bucket must be set")
	}
	if c.Crawler.OutputKind == string(crawler.OutputPDF) && c.Render.MaxParallel <= 0 {
		return fmt.Errorf("render.max_parallel must be > 0 for pdf output")
	}
	return nil
}

// CrawlConfig converts the loaded settings into the engine's decoupled
// configuration.
func (c Config) CrawlConfig() (crawler.Config, error) {
	cfg := crawler.Config{
		StartURL:        c.Crawler.StartURL,
		AllowedPrefixes: c.Crawler.AllowedPrefixes,
		OutputName:      c.Crawler.OutputName,
		OutputKind:      crawler.OutputKind(c.Crawler.OutputKind),
		Strategy:        crawler.Strategy(c.Crawler.Strategy),
		MaxURLs:         c.Crawler.MaxURLs,
		MaxPartBytes:    int64(c.Crawler.MaxPartSizeMB) << 20,
		Concurrency:     c.Crawler.Concurrency,
		UserAgent:       c.Crawler.UserAgent,
		RequestTimeout:  time.Duration(c.Crawler.TimeoutSeconds) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return crawler.Config{}, err
	}
	return cfg, nil
}
