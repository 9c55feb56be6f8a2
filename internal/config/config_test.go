package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/var/lib/mrmoney/data.db"
	cfg.Import.RulesPath = "rules.yaml"
	cfg.Import.BookingCacheTTL = 90 * time.Second

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "mrmoney.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.InDelta(t, 5.0, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 10, cfg.Server.RateBurst)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "logs", cfg.Import.LogDir)
	assert.Empty(t, cfg.Import.RulesPath)
	assert.Equal(t, time.Minute, cfg.Import.BookingCacheTTL)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nimport:\n  booking_cache_ttl: 5m\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5*time.Minute, cfg.Import.BookingCacheTTL)
	assert.Equal(t, "mrmoney.db", cfg.Database.Path)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "path: mrmoney.db")
	assert.Contains(t, contents, "rate_limit: 5")
	assert.Contains(t, contents, "booking_cache_ttl: 1m0s")
	assert.NotContains(t, contents, "rules_path")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MRMONEY_DATABASE_PATH":            "/tmp/x.db",
		"MRMONEY_LOG_LEVEL":                "warn",
		"MRMONEY_LOG_FORMAT":               "json",
		"MRMONEY_SERVER_ADDR":              "127.0.0.1:9000",
		"MRMONEY_SERVER_RATE_LIMIT":        "0.5",
		"MRMONEY_SERVER_RATE_BURST":        "2",
		"MRMONEY_SERVER_MAX_BODY_BYTES":    "1024",
		"MRMONEY_IMPORT_RULES_PATH":        "r.yaml",
		"MRMONEY_IMPORT_LOG_DIR":           "/var/log/mrmoney",
		"MRMONEY_IMPORT_BOOKING_CACHE_TTL": "0s",
	}
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, func(k string) string { return env[k] }))

	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.InDelta(t, 0.5, cfg.Server.RateLimit, 0.001)
	assert.Equal(t, 2, cfg.Server.RateBurst)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "r.yaml", cfg.Import.RulesPath)
	assert.Equal(t, "/var/log/mrmoney", cfg.Import.LogDir)
	assert.Zero(t, cfg.Import.BookingCacheTTL)
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, key := range []string{"SERVER_RATE_LIMIT", "SERVER_RATE_BURST", "SERVER_MAX_BODY_BYTES", "IMPORT_BOOKING_CACHE_TTL"} {
		err := ApplyEnv(Default(), func(k string) string {
			if k == EnvPrefix+key {
				return "lots"
			}
			return ""
		})
		assert.ErrorContains(t, err, key)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MRMONEY_TEST_ONLY_KEY=from-file\n"), 0o644))
	t.Setenv("MRMONEY_TEST_ONLY_KEY", "")
	os.Unsetenv("MRMONEY_TEST_ONLY_KEY")

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("MRMONEY_TEST_ONLY_KEY"))
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "/data/mrmoney.db"
	cfg.Import.RulesPath = filepath.Join("rules", "r.yaml")

	ResolvePaths(cfg, "/srv/site")
	assert.Equal(t, "/data/mrmoney.db", cfg.Database.Path)
	assert.Equal(t, filepath.Join("/srv/site", "rules", "r.yaml"), cfg.Import.RulesPath)
	assert.Equal(t, filepath.Join("/srv/site", "logs"), cfg.Import.LogDir)

	empty := &Config{}
	ResolvePaths(empty, "/srv/site")
	assert.Empty(t, empty.Import.RulesPath)
}
