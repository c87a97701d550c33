package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"CoinBoard/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"75s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	CoinGecko struct {
		BaseURL      string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		APIKey       string        `yaml:"api_key"`
		APIKeyHeader string        `yaml:"api_key_header" default:"x-cg-demo-api-key"`
		Currency     string        `yaml:"currency" default:"usd"`
		Timeout      time.Duration `yaml:"timeout" default:"10s"`
		RateLimit    struct {
			Burst     int `yaml:"burst" default:"5"`
			PerMinute int `yaml:"per_minute" default:"30"`
		} `yaml:"rate_limit"`
	} `yaml:"coingecko"`
	Refresh struct {
		Assets         []string      `yaml:"assets" default:"[\"bitcoin\",\"ethereum\",\"solana\"]"`
		Interval       time.Duration `yaml:"interval" default:"60s"`
		AutoRefresh    bool          `yaml:"auto_refresh" default:"true"`
		FetchTimeout   time.Duration `yaml:"fetch_timeout" default:"15s"`
		HistoryDays    int           `yaml:"history_days" default:"30"`
		HistoryWorkers int           `yaml:"history_workers" default:"3"`
		ForceOnManual  bool          `yaml:"force_on_manual"`
	} `yaml:"refresh"`
	Cache struct {
		QuotesTTL  time.Duration `yaml:"quotes_ttl" default:"300s"`
		HistoryTTL time.Duration `yaml:"history_ttl" default:"3600s"`
		SweepCron  string        `yaml:"sweep_cron" default:"@every 1m"`
		StatsCron  string        `yaml:"stats_cron" default:"@every 5m"`
		Redis      struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"coinboard"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Default returns a configuration populated from struct defaults only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := getenv("COINGECKO_BASE_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := getenv("ASSETS"); v != "" {
		c.Refresh.Assets = util.SplitAndTrim(v, ",")
	}
	if v := getenv("REFRESH_INTERVAL"); v != "" {
		d, err := util.ParseSeconds(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		c.Refresh.Interval = d
	}
	if v := getenv("AUTO_REFRESH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("AUTO_REFRESH: %w", err)
		}
		c.Refresh.AutoRefresh = b
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.CoinGecko.BaseURL == "" {
		return fmt.Errorf("coingecko.base_url is required")
	}
	if c.CoinGecko.Currency == "" {
		return fmt.Errorf("coingecko.currency is required")
	}
	if c.CoinGecko.Timeout <= 0 {
		return fmt.Errorf("coingecko.timeout must be positive")
	}
	if c.Refresh.Interval < 30*time.Second || c.Refresh.Interval > 300*time.Second {
		return fmt.Errorf("refresh.interval must be between 30s and 300s, got %s", c.Refresh.Interval)
	}
	if c.Refresh.FetchTimeout <= 0 {
		return fmt.Errorf("refresh.fetch_timeout must be positive")
	}
	if c.Refresh.HistoryDays < 1 || c.Refresh.HistoryDays > 365 {
		return fmt.Errorf("refresh.history_days must be between 1 and 365, got %d", c.Refresh.HistoryDays)
	}
	if c.Cache.QuotesTTL <= 0 || c.Cache.HistoryTTL <= 0 {
		return fmt.Errorf("cache ttls must be positive")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}
