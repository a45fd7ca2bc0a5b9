package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, ArtifactIndexSQLite, cfg.Artifacts.Index)
	assert.Equal(t, 7*24*time.Hour, cfg.Artifacts.TTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, cfg.SummaryChart)
	assert.False(t, cfg.LegacyRawQuery)
	assert.NoError(t, cfg.RequireTelegram(true))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PUBLIC_BASE_URL", "https://bot.example.com/")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ARTIFACT_TTL", "0")
	t.Setenv("SUMMARY_CHART", "off")
	t.Setenv("LEGACY_RAW_QUERY", "yes")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://bot.example.com", cfg.PublicBaseURL)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 2, cfg.Session.RedisDB)
	assert.Zero(t, cfg.Artifacts.TTL)
	assert.False(t, cfg.SummaryChart)
	assert.True(t, cfg.LegacyRawQuery)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port: "8080",
			Font: FontConfig{Path: "font.ttf", Family: "Noto"},
			Artifacts: ArtifactConfig{
				Dir:    "out",
				Index:  ArtifactIndexSQLite,
				DBPath: "db.sqlite",
			},
			Session: SessionConfig{Backend: SessionBackendMemory},
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty font", func(c *Config) { c.Font.Path = "" }},
		{"unknown index", func(c *Config) { c.Artifacts.Index = "mongo" }},
		{"supabase without key", func(c *Config) { c.Artifacts.Index = ArtifactIndexSupabase }},
		{"redis without addr", func(c *Config) { c.Session.Backend = SessionBackendRedis }},
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }},
		{"negative ttl", func(c *Config) { c.Artifacts.TTL = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{TelegramToken: "token"}
	assert.NoError(t, cfg.RequireTelegram(false))
	assert.Error(t, cfg.RequireTelegram(true))

	cfg.TelegramToken = ""
	assert.Error(t, cfg.RequireTelegram(false))
}
