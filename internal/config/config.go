package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`  // debug, info, warn, error
	LogFormat string `mapstructure:"log_format"` // text or json
}

// BloggerConfig controls the Blogger API client.
type BloggerConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	DiscoveryURL string `mapstructure:"discovery_url"`
	APIKey       string `mapstructure:"api_key"`
	Timeout      string `mapstructure:"timeout"` // duration string, e.g., "30s"
	PageSize     int    `mapstructure:"page_size"`
	MaxPages     int    `mapstructure:"max_pages"` // 0 means no limit
}

// StoreConfig selects where the API key, remember flag and theme live.
type StoreConfig struct {
	Backend   string `mapstructure:"backend"` // file, redis or memory
	Path      string `mapstructure:"path"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig controls the local web UI.
type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	MessageTTL    string `mapstructure:"message_ttl"`     // info/success messages clear after this
	AutoInitDelay string `mapstructure:"auto_init_delay"` // "0s" disables re-initialising after key edits
}

// ExportConfig controls saved HTML lists.
type ExportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// DisplayConfig controls how dates are presented.
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"` // IANA name or "Local"
}

// Config is the top-level configuration structure.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Blogger BloggerConfig `mapstructure:"blogger"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Export  ExportConfig  `mapstructure:"export"`
	Display DisplayConfig `mapstructure:"display"`
}

// MaxPageSize is the largest page the Blogger posts endpoint accepts.
const MaxPageSize = 500

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.Blogger.BaseURL == "" {
		c.Blogger.BaseURL = "https://www.googleapis.com/blogger/v3"
	}
	if c.Blogger.DiscoveryURL == "" {
		c.Blogger.DiscoveryURL = "https://www.googleapis.com/discovery/v1/apis/blogger/v3/rest"
	}
	if c.Blogger.Timeout == "" {
		c.Blogger.Timeout = "30s"
	}
	if c.Blogger.PageSize <= 0 || c.Blogger.PageSize > MaxPageSize {
		c.Blogger.PageSize = MaxPageSize
	}
	if c.Blogger.MaxPages < 0 {
		c.Blogger.MaxPages = 0
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStatePath()
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "blogger-lister:"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.MessageTTL == "" {
		c.Server.MessageTTL = "8s"
	}
	if c.Server.AutoInitDelay == "" {
		c.Server.AutoInitDelay = "0s"
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = "Local"
	}
}

// TimeoutDuration parses blogger.timeout.
func (c BloggerConfig) TimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

// Location resolves display.timezone.
func (c DisplayConfig) Location() (*time.Location, error) {
	if strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "blogger-lister-state.yaml"
	}
	return filepath.Join(home, ".config", "blogger-lister", "state.yaml")
}
