package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/itinerary_bot/internal/service"
)

// Sender отправляет сообщения в Telegram; *tgbotapi.BotAPI реализует его
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Tracker обрабатывает текст пользователя и возвращает ответ
type Tracker interface {
	Handle(ctx context.Context, msg service.Message) (service.Reply, error)
	Cancel(ctx context.Context, userID string) (service.Reply, error)
	History(ctx context.Context, userID, baseURL string) (service.Reply, error)
}

type Bot struct {
	api     Sender
	poller  *tgbotapi.BotAPI
	tracker Tracker
	// baseURL адрес сервера для ссылок на документы в режиме long polling
	baseURL string
}

// NewBot подключается к Telegram API
func NewBot(token string, tracker Tracker, baseURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	slog.Info("Authorized on Telegram", "account", api.Self.UserName)

	b := NewBotWithSender(api, tracker, baseURL)
	b.poller = api
	return b, nil
}

// NewBotWithSender создает бота без подключения к API (для webhook и тестов)
func NewBotWithSender(sender Sender, tracker Tracker, baseURL string) *Bot {
	return &Bot{
		api:     sender,
		tracker: tracker,
		baseURL: baseURL,
	}
}

// Start запускает бота в режиме long polling до отмены ctx
func (b *Bot) Start(ctx context.Context) error {
	if b.poller == nil {
		return fmt.Errorf("long polling requires a connected bot")
	}
	if b.baseURL == "" {
		return fmt.Errorf("long polling requires PUBLIC_BASE_URL for document links")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.poller.GetUpdatesChan(u)
	defer b.poller.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update, b.baseURL); err != nil {
				// Логируем ошибку, но продолжаем работу
				slog.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}

// HandleWebhook точка входа для обработки входящих webhook-обновлений.
// baseURL адрес, с которого пришел запрос; пустое значение заменяется настроенным.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte, baseURL string) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	if b.baseURL != "" {
		baseURL = b.baseURL
	}
	return b.handleUpdate(ctx, update, baseURL)
}
