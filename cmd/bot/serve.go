package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivanoskov/itinerary_bot/internal/app"
	"github.com/ivanoskov/itinerary_bot/internal/bot"
	"github.com/ivanoskov/itinerary_bot/internal/config"
	"github.com/ivanoskov/itinerary_bot/internal/metrics"
	"github.com/ivanoskov/itinerary_bot/internal/server"
)

const pruneInterval = time.Hour

func setupLogger(level slog.Level) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

// bootstrap загружает конфигурацию и собирает приложение
func bootstrap(ctx context.Context, webhook bool) (*app.App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.LogLevel)

	if err := cfg.RequireTelegram(webhook); err != nil {
		return nil, err
	}

	metrics.Init()
	return app.New(ctx, cfg)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the Telegram webhook and rendered documents over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); closeErr != nil {
					slog.Error("Failed to close resources", "error", closeErr)
				}
			}()

			cfg := a.Config
			b, err := bot.NewBot(cfg.TelegramToken, a.Tracker, cfg.PublicBaseURL)
			if err != nil {
				return err
			}

			a.Artifacts.StartPruneWorker(ctx, pruneInterval, cfg.Artifacts.TTL)

			srv := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      server.NewRouter(server.NewHandler(b, a.Artifacts, cfg.WebhookSecret)),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("Shutting down gracefully...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			slog.Info("Server stopped successfully")
			return nil
		},
	}
}

func newPollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Receive updates by long polling instead of a webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, false)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(); closeErr != nil {
					slog.Error("Failed to close resources", "error", closeErr)
				}
			}()

			b, err := bot.NewBot(a.Config.TelegramToken, a.Tracker, a.Config.PublicBaseURL)
			if err != nil {
				return err
			}

			a.Artifacts.StartPruneWorker(ctx, pruneInterval, a.Config.Artifacts.TTL)
			slog.Info("Long polling started")
			return b.Start(ctx)
		},
	}
}
