package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/ivanoskov/itinerary_bot/internal/app"
	"github.com/ivanoskov/itinerary_bot/internal/bot"
	"github.com/ivanoskov/itinerary_bot/internal/config"
	"github.com/ivanoskov/itinerary_bot/internal/server"
)

// Request структура входящего запроса от API Gateway
type Request struct {
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Response структура ответа для API Gateway
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

type webhookHandler interface {
	HandleWebhook(ctx context.Context, body []byte, baseURL string) error
}

// Handler точка входа serverless-функции. PDF отдаются сервером по PUBLIC_BASE_URL.
func Handler(ctx context.Context, request Request) (*Response, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}
	if err := cfg.RequireTelegram(true); err != nil {
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}
	if cfg.PublicBaseURL == "" {
		return errorResponse(http.StatusInternalServerError, "PUBLIC_BASE_URL cannot be empty"), nil
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("Failed to close resources", "error", closeErr)
		}
	}()

	b, err := bot.NewBot(cfg.TelegramToken, a.Tracker, cfg.PublicBaseURL)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err.Error()), nil
	}

	return handle(ctx, b, cfg.WebhookSecret, request), nil
}

func handle(ctx context.Context, webhook webhookHandler, secret string, request Request) *Response {
	got := header(request.Headers, server.SecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
		return errorResponse(http.StatusUnauthorized, "invalid secret token")
	}

	if err := webhook.HandleWebhook(ctx, []byte(request.Body), ""); err != nil {
		slog.Error("Webhook handling failed", "error", err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Body:       "OK",
		Headers: map[string]string{
			"Content-Type": "text/plain",
		},
	}
}

// header ищет заголовок без учета регистра, шлюзы присылают их по-разному
func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func errorResponse(status int, msg string) *Response {
	return &Response{
		StatusCode: status,
		Body:       msg,
		Headers: map[string]string{
			"Content-Type": "text/plain",
		},
	}
}

// main для локального тестирования: читает Request из stdin и печатает Response
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		slog.Error("Failed to decode request", "error", err)
		os.Exit(1)
	}

	resp, err := Handler(context.Background(), req)
	if err != nil {
		slog.Error("Handler failed", "error", err)
		os.Exit(1)
	}
	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		slog.Error("Failed to encode response", "error", err)
		os.Exit(1)
	}
}
