package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	ArtifactIndexSQLite   = "sqlite"
	ArtifactIndexSupabase = "supabase"
)

type Config struct {
	TelegramToken  string
	WebhookSecret  string
	Port           string
	PublicBaseURL  string
	LogLevel       slog.Level
	Font           FontConfig
	Artifacts      ArtifactConfig
	Session        SessionConfig
	SummaryChart   bool
	LegacyRawQuery bool
}

// FontConfig описывает шрифт с поддержкой японского текста
type FontConfig struct {
	Path   string
	Family string
}

// ArtifactConfig настройки хранения готовых документов
type ArtifactConfig struct {
	Dir         string
	TTL         time.Duration
	Index       string
	DBPath      string
	SupabaseURL string
	SupabaseKey string
}

// SessionConfig настройки хранилища состояний пользователей
type SessionConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// LoadConfig читает .env (если он есть) и переменные окружения
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Info("No .env file found, using environment variables")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		LogLevel:      getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		Font: FontConfig{
			Path:   getEnv("FONT_PATH", "./fonts/NotoSansJP-Regular.ttf"),
			Family: getEnv("FONT_FAMILY", "NotoSansJP"),
		},
		Artifacts: ArtifactConfig{
			Dir:         getEnv("ARTIFACT_DIR", "./static/itinerary"),
			TTL:         getEnvDuration("ARTIFACT_TTL", 7*24*time.Hour),
			Index:       strings.ToLower(getEnv("ARTIFACT_INDEX", ArtifactIndexSQLite)),
			DBPath:      getEnv("DB_PATH", "./data/itinerary.db"),
			SupabaseURL: os.Getenv("SUPABASE_URL"),
			SupabaseKey: os.Getenv("SUPABASE_KEY"),
		},
		Session: SessionConfig{
			Backend:       strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		SummaryChart:   getEnvBool("SUMMARY_CHART", true),
		LegacyRawQuery: getEnvBool("LEGACY_RAW_QUERY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate проверяет настройки, не зависящие от режима запуска
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Font.Path == "" || c.Font.Family == "" {
		return fmt.Errorf("FONT_PATH and FONT_FAMILY cannot be empty")
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("ARTIFACT_DIR cannot be empty")
	}
	if c.Artifacts.TTL < 0 {
		return fmt.Errorf("ARTIFACT_TTL cannot be negative")
	}

	switch c.Artifacts.Index {
	case ArtifactIndexSQLite:
		if c.Artifacts.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case ArtifactIndexSupabase:
		if c.Artifacts.SupabaseURL == "" || c.Artifacts.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase index")
		}
	default:
		return fmt.Errorf("unknown ARTIFACT_INDEX %q", c.Artifacts.Index)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	return nil
}

// RequireTelegram проверяет секреты канала, нужные для работы с Telegram
func (c *Config) RequireTelegram(webhook bool) error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN cannot be empty")
	}
	if webhook && c.WebhookSecret == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_SECRET cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
