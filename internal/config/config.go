// Package config assembles the run configuration from an optional YAML file,
// the environment (including a .env file) and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shanehull/oslonotify/internal/types"
)

const (
	DirectoryFile     = "file"
	DirectoryPostgres = "postgres"

	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	SMTP      SMTPConfig      `yaml:"smtp"`
	Source    SourceConfig    `yaml:"source"`
	Directory DirectoryConfig `yaml:"directory"`
	Store     StoreConfig     `yaml:"store"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Timezone  string          `yaml:"timezone"`
}

type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SourceConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`
}

type DirectoryConfig struct {
	Kind        string `yaml:"kind"`
	File        string `yaml:"file"`
	DatabaseURL string `yaml:"database_url"`
}

type StoreConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Load reads path (when non-empty), overlays the environment and applies
// defaults. A .env file in the working directory is loaded first if present;
// it never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %w", types.ErrConfig, err)
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read config file: %w", types.ErrConfig, err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("%w: parse config yaml: %w", types.ErrConfig, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&c.SMTP.Server, "SMTP_SERVER")
	set(&c.SMTP.Username, "SMTP_USERNAME")
	set(&c.SMTP.Password, "SMTP_PASSWORD")
	set(&c.SMTP.From, "SMTP_FROM")
	set(&c.Directory.DatabaseURL, "DATABASE_URL")
	set(&c.Store.RedisURL, "REDIS_URL")
	set(&c.Gemini.APIKey, "GEMINI_API_KEY")

	if v := strings.TrimSpace(getenv("SMTP_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SMTP_PORT %q is not a number", types.ErrConfig, v)
		}
		c.SMTP.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.SMTP.Server == "" {
		c.SMTP.Server = "smtp.gmail.com"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.Username
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 60 * time.Second
	}
	if c.Source.RateLimit == 0 {
		c.Source.RateLimit = 5
	}
	if c.Directory.Kind == "" {
		if c.Directory.File == "" && c.Directory.DatabaseURL != "" {
			c.Directory.Kind = DirectoryPostgres
		} else {
			c.Directory.Kind = DirectoryFile
		}
	}
	if c.Directory.Kind == DirectoryFile && c.Directory.File == "" {
		c.Directory.File = "subscribers.yaml"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreFile
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "tmp"
	}
	if c.Store.RedisPrefix == "" {
		c.Store.RedisPrefix = "oslonotify:notified"
	}
}

// Validate reports missing credentials and unknown backends. Every error
// wraps types.ErrConfig.
func (c *Config) Validate() error {
	var errs []error

	if c.SMTP.Username == "" || c.SMTP.Password == "" {
		errs = append(errs, errors.New("SMTP_USERNAME and SMTP_PASSWORD are required"))
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("smtp port %d out of range", c.SMTP.Port))
	}

	switch c.Directory.Kind {
	case DirectoryFile:
		if c.Directory.File == "" {
			errs = append(errs, errors.New("directory.file is required for the file directory"))
		}
	case DirectoryPostgres:
		if c.Directory.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres directory"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown directory kind %q", c.Directory.Kind))
	}

	switch c.Store.Backend {
	case StoreFile:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", types.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Location resolves Timezone, defaulting to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone name '%s': %w", c.Timezone, err)
	}
	return loc, nil
}
