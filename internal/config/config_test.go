package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SIMDASH_STORE_BACKEND", "MONGO_URI", "MONGO_DATABASE", "MONGO_COLLECTION",
		"MONGO_CONNECT_TIMEOUT", "POSTGRES_DSN", "CLICKHOUSE_DSN", "DASHBOARD_HOST",
		"DASHBOARD_PORT", "QUOTE_CURRENCY", "DASHBOARD_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, "ctb-simulation", cfg.Store.Mongo.Database)
	assert.Equal(t, "analytics", cfg.Store.Mongo.Collection)
	assert.Equal(t, "USDT", cfg.Dashboard.Quote)
	assert.Equal(t, "127.0.0.1:8501", cfg.Addr())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: postgres
  postgres_dsn: postgres://u:p@localhost/sim
dashboard:
  port: 9000
  quote: BUSD
  request_timeout: 5s
log:
  format: json
`), 0o600))

	t.Setenv("DASHBOARD_PORT", "9100")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://u:p@localhost/sim", cfg.Store.PostgresDSN)
	assert.Equal(t, 9100, cfg.Dashboard.Port)
	assert.Equal(t, "BUSD", cfg.Dashboard.Quote)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.RequestTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.WriteTimeout, "unset keys keep defaults")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SIMDASH_STORE_BACKEND=memory\nQUOTE_CURRENCY=EUR\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SIMDASH_STORE_BACKEND")
		os.Unsetenv("QUOTE_CURRENCY")
	})

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "EUR", cfg.Dashboard.Quote)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"clickhouse without dsn", func(c *Config) { c.Store.Backend = BackendClickhouse }},
		{"mongo without uri", func(c *Config) { c.Store.Mongo.URI = "" }},
		{"bad port", func(c *Config) { c.Dashboard.Port = 70000 }},
		{"empty quote", func(c *Config) { c.Dashboard.Quote = "" }},
		{"bad timezone", func(c *Config) { c.Dashboard.Timezone = "Mars/Olympus" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_BadEnvPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("DASHBOARD_PORT", "eighty")

	_, err := Load("", "")
	assert.Error(t, err)
}
