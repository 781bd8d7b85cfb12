package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds client configuration loaded from YAML and env.
type Config struct {
	LogLevel   string
	LogConsole bool

	GeocodingAPIURL     string
	GeocodingAPITimeout time.Duration
	SuggestionLimit     int

	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	DebounceDelay time.Duration
	DefaultUnit   string // "metric" or "imperial"

	SuggestionCacheBackend string // "in_memory" or "memcached"
	SuggestionCacheTTL     time.Duration
	MemcachedAddrs         string
	MemcachedTimeout       time.Duration
	MemcachedMaxIdleConns  int

	SuggestionRateRPS   int
	SuggestionRateBurst int

	DebugAddr       string // empty disables the debug server
	ShutdownTimeout time.Duration
}

type fileConfig struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	GeocodingAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"geocoding_api"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	UI struct {
		DebounceDelay   string `yaml:"debounce_delay"`
		SuggestionLimit int    `yaml:"suggestion_limit"`
		DefaultUnit     string `yaml:"default_unit"`
	} `yaml:"ui"`

	Suggestions struct {
		CacheBackend string `yaml:"cache_backend"`
		CacheTTL     string `yaml:"cache_ttl"`
		Memcached    struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"suggestions"`

	Debug struct {
		Addr string `yaml:"addr"`
	} `yaml:"debug"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) relative
// to the working directory, then applies env overrides. The file is optional:
// this client runs fine on defaults alone.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.Log.Level
	}
	cfg.LogConsole = strings.EqualFold(strings.TrimSpace(fc.Log.Format), "console")

	cfg.GeocodingAPIURL = os.Getenv("GEOCODING_API_URL")
	if cfg.GeocodingAPIURL == "" {
		cfg.GeocodingAPIURL = fc.GeocodingAPI.URL
	}
	if cfg.GeocodingAPIURL == "" {
		cfg.GeocodingAPIURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	cfg.GeocodingAPITimeout = parseDuration(fc.GeocodingAPI.Timeout, 5*time.Second)

	cfg.WeatherAPIURL = os.Getenv("WEATHER_API_URL")
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = fc.WeatherAPI.URL
	}
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://wttr.in"
	}
	cfg.WeatherAPITimeout = parseDuration(fc.WeatherAPI.Timeout, 10*time.Second)

	cfg.DebounceDelay = parseDuration(fc.UI.DebounceDelay, 300*time.Millisecond)
	cfg.SuggestionLimit = fc.UI.SuggestionLimit
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = 5
	}
	cfg.DefaultUnit = strings.TrimSpace(strings.ToLower(fc.UI.DefaultUnit))
	if cfg.DefaultUnit == "" {
		cfg.DefaultUnit = "metric"
	}

	cfg.SuggestionCacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.SuggestionCacheBackend == "" {
		cfg.SuggestionCacheBackend = strings.TrimSpace(strings.ToLower(fc.Suggestions.CacheBackend))
	}
	if cfg.SuggestionCacheBackend == "" {
		cfg.SuggestionCacheBackend = "in_memory"
	}
	cfg.SuggestionCacheTTL = parseDuration(fc.Suggestions.CacheTTL, 5*time.Minute)

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Suggestions.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Suggestions.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Suggestions.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.SuggestionRateRPS = fc.Suggestions.RateLimitRPS
	if cfg.SuggestionRateRPS <= 0 {
		cfg.SuggestionRateRPS = 5
	}
	cfg.SuggestionRateBurst = fc.Suggestions.RateLimitBurst
	if cfg.SuggestionRateBurst <= 0 {
		cfg.SuggestionRateBurst = 10
	}

	cfg.DebugAddr = os.Getenv("DEBUG_ADDR")
	if cfg.DebugAddr == "" {
		cfg.DebugAddr = strings.TrimSpace(fc.Debug.Addr)
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 5*time.Second)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	switch cfg.SuggestionCacheBackend {
	case "in_memory", "memcached":
	default:
		return fmt.Errorf("suggestions.cache_backend must be in_memory or memcached, got %q", cfg.SuggestionCacheBackend)
	}
	switch cfg.DefaultUnit {
	case "metric", "imperial":
	default:
		return fmt.Errorf("ui.default_unit must be metric or imperial, got %q", cfg.DefaultUnit)
	}
	if cfg.SuggestionLimit > 10 {
		cfg.SuggestionLimit = 10
	}
	return nil
}
