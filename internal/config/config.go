// Package config loads application configuration from a YAML file and
// LEARNME_-prefixed environment variables, env taking precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultMaxDepth        = 5
	defaultMaxURLsPerLevel = 200
	defaultTimeout         = 30 * time.Second
	defaultCrawlBudget     = 3 * time.Minute
	defaultListenAddr      = ":8080"
	defaultDataDir         = "./data"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Browser BrowserConfig `mapstructure:"browser"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Log     LogConfig     `mapstructure:"log"`
	DataDir string        `mapstructure:"data_dir"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CrawlerConfig struct {
	MaxDepth        int           `mapstructure:"max_depth"`
	MaxURLsPerLevel int           `mapstructure:"max_urls_per_level"`
	Timeout         time.Duration `mapstructure:"timeout"`
	CrawlBudget     time.Duration `mapstructure:"crawl_budget"`
	StrictMode      bool          `mapstructure:"strict_mode"`
	Mode            string        `mapstructure:"mode"`
}

type BrowserConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HTTPConfig struct {
	Fingerprint bool `mapstructure:"fingerprint"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func (c *Config) Validate() error {
	switch c.Crawler.Mode {
	case "http", "browser", "auto":
	default:
		return fmt.Errorf("crawler.mode must be http, browser or auto, got %q", c.Crawler.Mode)
	}
	if c.Crawler.MaxDepth < 0 {
		return errors.New("crawler.max_depth must not be negative")
	}
	if c.Crawler.MaxURLsPerLevel <= 0 {
		return errors.New("crawler.max_urls_per_level must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// Load reads configuration from path (optional; empty means defaults +
// env only) and the environment. LEARNME_CRAWLER_MAX_DEPTH overrides
// crawler.max_depth, and so on.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEARNME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", defaultListenAddr)
	v.SetDefault("crawler.max_depth", defaultMaxDepth)
	v.SetDefault("crawler.max_urls_per_level", defaultMaxURLsPerLevel)
	v.SetDefault("crawler.timeout", defaultTimeout)
	v.SetDefault("crawler.crawl_budget", defaultCrawlBudget)
	v.SetDefault("crawler.strict_mode", false)
	v.SetDefault("crawler.mode", "auto")
	v.SetDefault("browser.enabled", true)
	v.SetDefault("browser.timeout", 60*time.Second)
	v.SetDefault("http.fingerprint", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("data_dir", defaultDataDir)
}
