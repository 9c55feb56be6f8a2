package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "mrmoney.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MRMONEY_"

// Config represents the top-level mrmoney.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Import   ImportConfig   `yaml:"import"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	RateLimit    float64 `yaml:"rate_limit"` // requests per second per client, 0 disables
	RateBurst    int     `yaml:"rate_burst"`
	MaxBodyBytes int64   `yaml:"max_body_bytes"`
}

// ImportConfig controls the import pipeline.
type ImportConfig struct {
	RulesPath       string        `yaml:"rules_path,omitempty"` // empty means built-in rules
	LogDir          string        `yaml:"log_dir"`
	BookingCacheTTL time.Duration `yaml:"booking_cache_ttl"`
}

// Load reads a mrmoney.yaml file from disk. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ResolvePaths makes the relative file paths in cfg relative to dir, the
// directory holding the config file.
func ResolvePaths(cfg *Config, dir string) {
	for _, p := range []*string{&cfg.Database.Path, &cfg.Import.RulesPath, &cfg.Import.LogDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a local install.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "mrmoney.db"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{
			Addr:         ":8080",
			RateLimit:    5,
			RateBurst:    10,
			MaxBodyBytes: 10 << 20,
		},
		Import: ImportConfig{
			LogDir:          "logs",
			BookingCacheTTL: time.Minute,
		},
	}
}

// LoadEnvFiles loads .env style files into the process environment. Files
// that do not exist are skipped; variables already set are not replaced.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays MRMONEY_* variables read through getenv onto cfg.
// A nil getenv uses os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	get := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		return v, v != ""
	}

	if v, ok := get("DATABASE_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	if v, ok := get("SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := get("SERVER_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSERVER_RATE_LIMIT: %w", EnvPrefix, err)
		}
		cfg.Server.RateLimit = f
	}
	if v, ok := get("SERVER_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSERVER_RATE_BURST: %w", EnvPrefix, err)
		}
		cfg.Server.RateBurst = n
	}
	if v, ok := get("SERVER_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sSERVER_MAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		cfg.Server.MaxBodyBytes = n
	}
	if v, ok := get("IMPORT_RULES_PATH"); ok {
		cfg.Import.RulesPath = v
	}
	if v, ok := get("IMPORT_LOG_DIR"); ok {
		cfg.Import.LogDir = v
	}
	if v, ok := get("IMPORT_BOOKING_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sIMPORT_BOOKING_CACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.Import.BookingCacheTTL = d
	}
	return nil
}
