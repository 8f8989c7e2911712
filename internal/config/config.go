// Package config loads dashboard settings from YAML, .env files and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMongo      = "mongo"
	BackendPostgres   = "postgres"
	BackendClickhouse = "clickhouse"
	BackendMemory     = "memory"
)

// Config is the complete dashboard configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend       string      `yaml:"backend"`
	Mongo         MongoConfig `yaml:"mongo"`
	PostgresDSN   string      `yaml:"postgres_dsn"`
	ClickhouseDSN string      `yaml:"clickhouse_dsn"`
}

// MongoConfig holds the document store connection.
type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	Collection     string        `yaml:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// DashboardConfig holds the HTTP surface and pipeline settings.
type DashboardConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Quote          string        `yaml:"quote"`
	Timezone       string        `yaml:"timezone"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMongo,
			Mongo: MongoConfig{
				URI:            "mongodb://localhost:27017",
				Database:       "ctb-simulation",
				Collection:     "analytics",
				ConnectTimeout: 10 * time.Second,
			},
		},
		Dashboard: DashboardConfig{
			Host:           "127.0.0.1",
			Port:           8501,
			Quote:          "USDT",
			Timezone:       "UTC",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			RequestTimeout: 20 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then variables from envFile (if it exists), then the
// process environment. The result is validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Store.Backend, "SIMDASH_STORE_BACKEND")
	setString(&c.Store.Mongo.URI, "MONGO_URI")
	setString(&c.Store.Mongo.Database, "MONGO_DATABASE")
	setString(&c.Store.Mongo.Collection, "MONGO_COLLECTION")
	setString(&c.Store.PostgresDSN, "POSTGRES_DSN")
	setString(&c.Store.ClickhouseDSN, "CLICKHOUSE_DSN")
	setString(&c.Dashboard.Host, "DASHBOARD_HOST")
	setString(&c.Dashboard.Quote, "QUOTE_CURRENCY")
	setString(&c.Dashboard.Timezone, "DASHBOARD_TIMEZONE")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := os.Getenv("DASHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DASHBOARD_PORT: %w", err)
		}
		c.Dashboard.Port = port
	}
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MONGO_CONNECT_TIMEOUT: %w", err)
		}
		c.Store.Mongo.ConnectTimeout = d
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMongo:
		if c.Store.Mongo.URI == "" || c.Store.Mongo.Database == "" || c.Store.Mongo.Collection == "" {
			return errors.New("store.mongo: uri, database and collection are required")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store.postgres_dsn is required for the postgres backend")
		}
	case BackendClickhouse:
		if c.Store.ClickhouseDSN == "" {
			return errors.New("store.clickhouse_dsn is required for the clickhouse backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port %d out of range", c.Dashboard.Port)
	}
	if c.Dashboard.Quote == "" {
		return errors.New("dashboard.quote is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Location returns the configured display time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return loc, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Dashboard.Host, c.Dashboard.Port)
}
