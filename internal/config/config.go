package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the sentinel.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Overrides OverridesConfig `yaml:"overrides"`
	Source    SourceConfig    `yaml:"source"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// AnalysisConfig holds the default gap-detection thresholds applied when a
// request does not supply its own.
type AnalysisConfig struct {
	IntervalSeconds float64 `yaml:"intervalSeconds"`
	AllowedMisses   int     `yaml:"allowedMisses"`
	PageSize        int     `yaml:"pageSize"`
	// TrailingCutoff flags services that stopped emitting before the
	// analysis ran, measured against wall-clock now.
	TrailingCutoff bool `yaml:"trailingCutoff"`
}

// OverridesConfig controls per-service threshold rule-pack loading.
type OverridesConfig struct {
	Path string `yaml:"path"`
}

// SourceConfig configures the optional remote batch source.
type SourceConfig struct {
	BaseURL    string        `yaml:"baseURL"`
	EventsPath string        `yaml:"eventsPath"`
	Timeout    time.Duration `yaml:"timeout"`
	BatchTTL   time.Duration `yaml:"batchTTL"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls redis-backed caching of analysis reports and remote
// batches. When disabled an in-memory cache is used instead.
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	ReportTTL    time.Duration `yaml:"reportTTL"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PULSE_SENTINEL_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Analysis: AnalysisConfig{
			IntervalSeconds: 60,
			AllowedMisses:   3,
			PageSize:        50,
		},
		Overrides: OverridesConfig{Path: "configs/overrides.yaml"},
		Source: SourceConfig{
			EventsPath: "/api/v1/heartbeats",
			Timeout:    5 * time.Second,
			BatchTTL:   30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Enabled:      false,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
			ReportTTL:    2 * time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSE_SENTINEL_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("PULSE_SENTINEL_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("PULSE_SENTINEL_INTERVAL_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.IntervalSeconds = f
		}
	}
	if v := os.Getenv("PULSE_SENTINEL_ALLOWED_MISSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.AllowedMisses = n
		}
	}
	if v := os.Getenv("PULSE_SENTINEL_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.PageSize = n
		}
	}
	if v := os.Getenv("PULSE_SENTINEL_TRAILING_CUTOFF"); v != "" {
		cfg.Analysis.TrailingCutoff = isTruthy(v)
	}
	if v := os.Getenv("PULSE_SENTINEL_OVERRIDES_PATH"); v != "" {
		cfg.Overrides.Path = v
	}
	if v := os.Getenv("PULSE_SOURCE_BASE_URL"); v != "" {
		cfg.Source.BaseURL = v
	}
	if v := os.Getenv("PULSE_SOURCE_EVENTS_PATH"); v != "" {
		cfg.Source.EventsPath = v
	}
	if v := os.Getenv("PULSE_SOURCE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Source.Timeout = d
		}
	}
	if v := os.Getenv("PULSE_SENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PULSE_SENTINEL_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = isTruthy(v)
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_TLS"); isTruthy(v) {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("PULSE_SENTINEL_CACHE_REPORT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ReportTTL = d
		}
	}
}

func isTruthy(v string) bool {
	return strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
}
