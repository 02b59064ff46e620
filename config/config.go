// Package config loads the gateway configuration from an optional YAML file
// and OAUTH_GATEWAY_* environment variables, with environment taking
// precedence over the file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage driver names accepted by Config.Storage.Driver.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config is the root gateway configuration.
type Config struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Debug  bool   `mapstructure:"debug"`
	Issuer string `mapstructure:"issuer"`

	Backend BackendConfig `mapstructure:"backend"`
	Storage StorageConfig `mapstructure:"storage"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
}

// BackendConfig describes the single upstream the gateway fronts.
type BackendConfig struct {
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PublicPrefixes []string      `mapstructure:"public_prefixes"`
}

// StorageConfig selects and parameterizes the persistence driver.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`

	SQLitePath string `mapstructure:"sqlite_path"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// OAuthConfig tunes the authorization server.
type OAuthConfig struct {
	CodeTTL  time.Duration `mapstructure:"code_ttl"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Subject  string        `mapstructure:"subject"`
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 9100)
	v.SetDefault("debug", false)
	v.SetDefault("issuer", "")
	v.SetDefault("backend.url", "http://127.0.0.1:9101/mcp")
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.public_prefixes", []string{})
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.sqlite_path", "oauth-gateway.db")
	v.SetDefault("storage.redis_addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("oauth.code_ttl", 10*time.Minute)
	v.SetDefault("oauth.token_ttl", time.Hour)
	v.SetDefault("oauth.subject", "default_user")

	v.SetEnvPrefix("OAUTH_GATEWAY")
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
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend url %q must be absolute", c.Backend.URL)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	return nil
}
