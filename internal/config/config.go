package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// NewsAPIConfig holds settings for the upstream keyword-search API.
type NewsAPIConfig struct {
	BaseURL           string `yaml:"base_url"`
	APIKey            string `yaml:"api_key"`
	PageSize          int    `yaml:"page_size"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// AuthConfig holds token-issuing settings.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

type Config struct {
	Addr            string        `yaml:"addr"`
	DataDir         string        `yaml:"data_dir,omitempty"`
	RefreshInterval string        `yaml:"refresh_interval"`
	Retention       string        `yaml:"retention"`
	NewsAPI         NewsAPIConfig `yaml:"news_api"`
	Auth            AuthConfig    `yaml:"auth"`
}

// APIKey returns the resolved upstream API key (config or env var).
func (c *Config) APIKey() string {
	if c.NewsAPI.APIKey != "" {
		return c.NewsAPI.APIKey
	}
	return os.Getenv("BIZPULSE_API_KEY")
}

// JWTSecret returns the resolved token-signing secret (config or env var).
func (c *Config) JWTSecret() string {
	if c.Auth.JWTSecret != "" {
		return c.Auth.JWTSecret
	}
	return os.Getenv("BIZPULSE_JWT_SECRET")
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// RetentionDuration is the age after which cached articles are pruned.
func (c *Config) RetentionDuration() time.Duration {
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func (c *Config) GetPageSize() int {
	if c.NewsAPI.PageSize <= 0 {
		return 10
	}
	return c.NewsAPI.PageSize
}

// StorePath returns the sqlite path for users, bookmarks and history.
func (c *Config) StorePath() string {
	return filepath.Join(c.dataDir(), "bizpulse.db")
}

// CachePath returns the sqlite path for the article cache.
func (c *Config) CachePath() string {
	return filepath.Join(c.dataDir(), "cache.db")
}

func (c *Config) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return filepath.Join(xdg.DataHome, "bizpulse")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "bizpulse", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.NewsAPI.BaseURL == "" {
		return fmt.Errorf("news_api.base_url is required")
	}
	u, err := url.Parse(cfg.NewsAPI.BaseURL)
	if err != nil {
		return fmt.Errorf("news_api.base_url: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("news_api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.RefreshInterval != "" {
		if _, err := time.ParseDuration(cfg.RefreshInterval); err != nil {
			return fmt.Errorf("refresh_interval: %w", err)
		}
	}
	if cfg.Retention != "" {
		if _, err := time.ParseDuration(cfg.Retention); err != nil {
			return fmt.Errorf("retention: %w", err)
		}
	}
	return nil
}
