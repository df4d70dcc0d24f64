// Package config loads psdrun server settings from an optional YAML file,
// a .env file and PSDRUN_* environment variables, in that order of
// precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names a storage implementation.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Sessions SessionsConfig `yaml:"sessions"`
	Hints    HintsConfig    `yaml:"hints"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	CORSOrigins []string      `yaml:"cors_origins"`
	AsyncRender bool          `yaml:"async_render"`
	Shutdown    time.Duration `yaml:"shutdown_timeout"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

type SessionsConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type HintsConfig struct {
	Backend        string        `yaml:"backend"`
	Path           string        `yaml:"path"`
	Expiration     time.Duration `yaml:"expiration"`
	EncryptionKey  string        `yaml:"encryption_key"`
	FallbackKeys   []string      `yaml:"fallback_keys"`
	RedactPatterns []string      `yaml:"redact_patterns"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":8080",
			Shutdown: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "psdrun:",
		},
		Sessions: SessionsConfig{Backend: BackendMemory, Path: ".psdrun/sessions"},
		Hints:    HintsConfig{Backend: BackendMemory, Path: ".psdrun/hints"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (skipped when empty), then .env, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup("PSDRUN_" + key); ok {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup("PSDRUN_" + key); ok {
			*dst = splitList(v)
		}
	}
	var errs []error
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup("PSDRUN_" + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("PSDRUN_%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("ADDR", &c.Server.Addr)
	list("CORS_ORIGINS", &c.Server.CORSOrigins)
	if v, ok := lookup("PSDRUN_ASYNC_RENDER"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PSDRUN_ASYNC_RENDER: %w", err))
		}
		c.Server.AsyncRender = b
	}
	duration("SHUTDOWN_TIMEOUT", &c.Server.Shutdown)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	if v, ok := lookup("PSDRUN_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PSDRUN_REDIS_DB: %w", err))
		}
		c.Redis.DB = n
	}
	str("REDIS_PREFIX", &c.Redis.Prefix)
	duration("REDIS_TTL", &c.Redis.TTL)

	str("SESSIONS_BACKEND", &c.Sessions.Backend)
	str("SESSIONS_PATH", &c.Sessions.Path)

	str("HINTS_BACKEND", &c.Hints.Backend)
	str("HINTS_PATH", &c.Hints.Path)
	duration("HINTS_EXPIRATION", &c.Hints.Expiration)
	str("ENCRYPTION_KEY", &c.Hints.EncryptionKey)
	list("ENCRYPTION_FALLBACK_KEYS", &c.Hints.FallbackKeys)
	list("REDACT_PATTERNS", &c.Hints.RedactPatterns)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate rejects unknown backends and formats.
func (c *Config) Validate() error {
	var errs []error
	for name, b := range map[string]string{"sessions": c.Sessions.Backend, "hints": c.Hints.Backend} {
		switch b {
		case BackendMemory, BackendFile, BackendRedis:
		default:
			errs = append(errs, fmt.Errorf("%s backend %q: expected memory, file or redis", name, b))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q: expected text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether any backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Sessions.Backend == BackendRedis || c.Hints.Backend == BackendRedis
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
