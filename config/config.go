package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zalepa/bleaustats/parser"
	"github.com/zalepa/bleaustats/stats"
)

// Config holds all runtime configuration.
type Config struct {
	Selectors parser.Selectors `yaml:"selectors"`

	// Charts
	TopTypes         int `yaml:"top_types"`
	OverviewTopTypes int `yaml:"overview_top_types"`
	Buckets          int `yaml:"buckets"`
	ChartWidth       int `yaml:"chart_width"`
	ChartHeight      int `yaml:"chart_height"`

	// Fetching
	UserAgent         string        `yaml:"user_agent"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	CacheDir          string        `yaml:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	Browser           bool          `yaml:"browser"`
}

// Default returns a Config populated with the catalog's defaults.
func Default() Config {
	return Config{
		Selectors: parser.DefaultSelectors,

		TopTypes:         10,
		OverviewTopTypes: 3,
		Buckets:          stats.DefaultBuckets,
		ChartWidth:       getEnvInt("BLEAUSTATS_CHART_WIDTH", 600),
		ChartHeight:      500,

		UserAgent: getEnv("BLEAUSTATS_USER_AGENT",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) bleaustats/1.0"),
		CacheDir: getEnv("BLEAUSTATS_CACHE_DIR", ""),
		CacheTTL: 24 * time.Hour,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the charts cannot be drawn with.
func (c Config) Validate() error {
	if c.TopTypes <= 0 || c.OverviewTopTypes <= 0 {
		return fmt.Errorf("top_types and overview_top_types must be positive")
	}
	if c.Buckets <= 0 {
		return fmt.Errorf("buckets must be positive, got %d", c.Buckets)
	}
	if c.ChartWidth <= stats.LabelGutterPixels || c.ChartHeight <= 0 {
		return fmt.Errorf("chart size %dx%d is too small", c.ChartWidth, c.ChartHeight)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	return nil
}

// BarPixels is the width available to the longest bar once the axis labels
// are accounted for.
func (c Config) BarPixels() float64 {
	return float64(c.ChartWidth - stats.LabelGutterPixels)
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
