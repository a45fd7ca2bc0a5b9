// Package server HTTP-слой бота: webhook, выдача документов и служебные маршруты.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ivanoskov/itinerary_bot/internal/artifact"
	"github.com/ivanoskov/itinerary_bot/internal/metrics"
	"github.com/ivanoskov/itinerary_bot/internal/model"
	"github.com/ivanoskov/itinerary_bot/internal/repository"
)

// SecretHeader заголовок, в котором Telegram передает секрет webhook
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxWebhookBody = 1 << 20

// WebhookHandler обрабатывает тело webhook-запроса
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte, baseURL string) error
}

// ArtifactOpener находит документ по идентификатору
type ArtifactOpener interface {
	Open(ctx context.Context, id string) (*model.Artifact, artifact.ReadSeekCloser, error)
}

type Handler struct {
	webhook   WebhookHandler
	artifacts ArtifactOpener
	secret    string
}

func NewHandler(webhook WebhookHandler, artifacts ArtifactOpener, secret string) *Handler {
	return &Handler{
		webhook:   webhook,
		artifacts: artifacts,
		secret:    secret,
	}
}

// NewRouter собирает маршруты сервера
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/callback", h.Callback)
	r.Get(model.ArtifactRoute+"{file}", h.Artifact)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// Callback принимает обновление от Telegram
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	got := r.Header.Get(SecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		http.Error(w, "invalid secret token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.webhook.HandleWebhook(r.Context(), body, RequestOrigin(r)); err != nil {
		slog.Error("Webhook handling failed", "request_id", chiMiddleware.GetReqID(r.Context()), "error", err)
	}

	// Telegram повторяет доставку при ошибке, поэтому отвечаем 200 всегда
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Artifact отдает готовый PDF
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	id, ok := strings.CutSuffix(file, ".pdf")
	if !ok {
		http.NotFound(w, r)
		return
	}

	a, f, err := h.artifacts.Open(r.Context(), id)
	if err != nil {
		if errors.Is(err, artifact.ErrInvalidID) || errors.Is(err, repository.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to open artifact", "artifact_id", id, "error", err)
		http.Error(w, "failed to open document", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="itinerary.pdf"`)
	http.ServeContent(w, r, a.FileName(), a.CreatedAt, f)
}

// RequestOrigin восстанавливает схему и хост, с которых пришел запрос
func RequestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
