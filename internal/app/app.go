// Package app собирает зависимости бота из конфигурации.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ivanoskov/itinerary_bot/internal/artifact"
	"github.com/ivanoskov/itinerary_bot/internal/charts"
	"github.com/ivanoskov/itinerary_bot/internal/config"
	"github.com/ivanoskov/itinerary_bot/internal/document"
	"github.com/ivanoskov/itinerary_bot/internal/repository"
	"github.com/ivanoskov/itinerary_bot/internal/service"
	"github.com/ivanoskov/itinerary_bot/internal/session"
)

type App struct {
	Config    *config.Config
	Sessions  session.Store
	Repo      repository.Repository
	Artifacts *artifact.Service
	Tracker   *service.ItineraryTracker
}

// NewRenderer создает отрисовщик с японским шрифтом из конфигурации.
// Отсутствие шрифта считается фатальной ошибкой запуска.
func NewRenderer(cfg *config.Config) (*document.Renderer, error) {
	font, err := document.LoadFont(cfg.Font.Family, cfg.Font.Path)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	opts := document.Options{
		Font:           font,
		LegacyRawQuery: cfg.LegacyRawQuery,
	}
	if cfg.SummaryChart {
		gen := charts.NewChartGenerator()
		if err := gen.SetFont(font.Data); err != nil {
			slog.Warn("Summary chart falls back to the default font", "font", cfg.Font.Path, "error", err)
		}
		opts.Summary = gen.GenerateDailySummary
	}
	return document.NewRenderer(opts), nil
}

// NewRepository открывает реестр документов, выбранный в конфигурации
func NewRepository(cfg *config.Config) (repository.Repository, error) {
	switch cfg.Artifacts.Index {
	case config.ArtifactIndexSupabase:
		return repository.NewSupabaseRepository(cfg.Artifacts.SupabaseURL, cfg.Artifacts.SupabaseKey)
	default:
		return repository.NewSQLiteRepository(cfg.Artifacts.DBPath)
	}
}

// NewSessionStore открывает хранилище сессий, выбранное в конфигурации
func NewSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		return session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
			TTL:      cfg.Session.TTL,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}

// New собирает все компоненты; при ошибке уже открытые ресурсы закрываются
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	renderer, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}

	files, err := artifact.NewFileStore(cfg.Artifacts.Dir)
	if err != nil {
		return nil, err
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize artifact index: %w", err)
	}
	if err := repo.Ping(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("artifact index health check: %w", err)
	}

	sessions, err := NewSessionStore(cfg)
	if err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("initialize session store: %w", err)
	}

	artifacts := artifact.NewService(renderer, files, repo)
	slog.Info("Application initialized",
		"session_backend", cfg.Session.Backend,
		"artifact_index", cfg.Artifacts.Index,
		"artifact_dir", cfg.Artifacts.Dir)

	return &App{
		Config:    cfg,
		Sessions:  sessions,
		Repo:      repo,
		Artifacts: artifacts,
		Tracker:   service.NewItineraryTracker(sessions, artifacts),
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.Sessions.Close(), a.Repo.Close())
}
