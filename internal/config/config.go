// Package config assembles Byte Buddy settings from defaults, an optional
// YAML file and BYTEBUDDY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/bytebuddy/internal/backend"
	"github.com/abhisek/bytebuddy/internal/llm"
)

// Backend modes.
const (
	ModeHTTP = "http" // the knowledge service
	ModeLLM  = "llm"  // call an LLM provider directly
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds all Byte Buddy settings.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
	LLM     llm.Config    `yaml:"llm"`

	// MemoryEnabled controls whether answers are recorded in history.
	MemoryEnabled bool `yaml:"memory_enabled"`

	// LogFile receives diagnostics in TUI mode. Empty discards them.
	LogFile string `yaml:"log_file"`
}

// BackendConfig selects where answers and quizzes come from.
type BackendConfig struct {
	Mode    string `yaml:"mode"`
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// StorageConfig selects where history is persisted.
type StorageConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"` // sqlite file
	DSN    string      `yaml:"dsn"`  // postgres
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Mode:    ModeHTTP,
			URL:     backend.DefaultBaseURL,
			Timeout: "60s",
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "bytebuddy:",
			},
		},
		LLM:           llm.DefaultConfig(),
		MemoryEnabled: true,
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment, in increasing precedence. An empty path reads
// DefaultPath and ignores a missing file there.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/bytebuddy/config.yaml, falling back
// to ~/.config. It returns "" if no home directory can be resolved.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bytebuddy", "config.yaml")
}

// ApplyEnv overrides cfg with any BYTEBUDDY_* variables that are set.
func ApplyEnv(cfg *Config) {
	cfg.Backend.Mode = envOr("BYTEBUDDY_BACKEND_MODE", cfg.Backend.Mode)
	cfg.Backend.URL = envOr("BYTEBUDDY_BACKEND_URL", cfg.Backend.URL)
	cfg.Backend.Timeout = envOr("BYTEBUDDY_BACKEND_TIMEOUT", cfg.Backend.Timeout)

	cfg.Storage.Driver = envOr("BYTEBUDDY_STORE", cfg.Storage.Driver)
	cfg.Storage.Path = envOr("BYTEBUDDY_DB", cfg.Storage.Path)
	cfg.Storage.DSN = envOr("BYTEBUDDY_POSTGRES_DSN", cfg.Storage.DSN)
	cfg.Storage.Redis.Addr = envOr("BYTEBUDDY_REDIS_ADDR", cfg.Storage.Redis.Addr)
	cfg.Storage.Redis.Password = envOr("BYTEBUDDY_REDIS_PASSWORD", cfg.Storage.Redis.Password)
	cfg.Storage.Redis.DB = envInt("BYTEBUDDY_REDIS_DB", cfg.Storage.Redis.DB)

	cfg.MemoryEnabled = envBool("BYTEBUDDY_MEMORY", cfg.MemoryEnabled)
	cfg.LogFile = envOr("BYTEBUDDY_LOG", cfg.LogFile)

	llm.ApplyEnv(&cfg.LLM)
}

// BackendTimeout parses Backend.Timeout, returning fallback when it is
// empty or invalid.
func (c Config) BackendTimeout(fallback time.Duration) time.Duration {
	return parseDuration(c.Backend.Timeout, fallback)
}

// Validate checks the settings that must be correct before startup.
func (c Config) Validate() error {
	switch c.Backend.Mode {
	case ModeHTTP:
		if c.Backend.URL == "" {
			return errors.New("backend.url is required in http mode")
		}
	case ModeLLM:
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend mode: %q", c.Backend.Mode)
	}

	if c.Backend.Timeout != "" {
		if _, err := time.ParseDuration(c.Backend.Timeout); err != nil {
			return fmt.Errorf("backend.timeout: %w", err)
		}
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the postgres driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
