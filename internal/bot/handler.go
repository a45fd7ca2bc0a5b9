package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/itinerary_bot/internal/service"
)

const (
	greeting = "旅のしおりを作成します。\n「" + service.StartKeyword + "」と送ってください。\n" +
		"/history 最近作成したしおり\n/cancel 入力の取り消し"

	historyFailed = "履歴を取得できませんでした。"

	renderFailed = "PDFの作成に失敗しました。もう一度「" + service.NoToken + "」と送ってください。"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update, baseURL string) error {
	message := update.Message
	if message == nil || message.From == nil || message.Text == "" {
		return nil
	}

	if message.IsCommand() {
		return b.handleCommand(ctx, message, baseURL)
	}
	return b.handleMessage(ctx, message, baseURL)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message, baseURL string) error {
	userID := strconv.FormatInt(message.From.ID, 10)

	switch message.Command() {
	case "start", "help":
		msg := tgbotapi.NewMessage(message.Chat.ID, greeting)
		msg.ReplyMarkup = b.getStartKeyboard()
		return b.send(msg)

	case "cancel":
		reply, err := b.tracker.Cancel(ctx, userID)
		if err != nil {
			return fmt.Errorf("cancel dialogue for %s: %w", userID, err)
		}
		msg := tgbotapi.NewMessage(message.Chat.ID, reply.Text)
		msg.ReplyMarkup = b.getStartKeyboard()
		return b.send(msg)

	case "history":
		reply, err := b.tracker.History(ctx, userID, baseURL)
		if err != nil {
			slog.Error("Failed to load history", "user_id", userID, "error", err)
			return b.sendErrorMessage(message, historyFailed)
		}
		msg := tgbotapi.NewMessage(message.Chat.ID, reply.Text)
		msg.DisableWebPagePreview = true
		return b.send(msg)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message, baseURL string) error {
	userID := strconv.FormatInt(message.From.ID, 10)

	reply, err := b.tracker.Handle(ctx, service.Message{
		UserID:  userID,
		Text:    message.Text,
		BaseURL: baseURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrRender) {
			slog.Error("Itinerary render failed", "user_id", userID, "error", err)
			return b.sendErrorMessage(message, renderFailed)
		}
		return fmt.Errorf("handle message from %s: %w", userID, err)
	}

	if reply.Empty() {
		return nil
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply.Text)
	msg.ReplyToMessageID = message.MessageID
	if len(reply.Choices) > 0 {
		msg.ReplyMarkup = b.getChoicesKeyboard(reply.Choices)
	} else {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	if reply.Artifact != nil {
		msg.DisableWebPagePreview = true
	}
	return b.send(msg)
}

func (b *Bot) sendErrorMessage(message *tgbotapi.Message, text string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, "❌ "+text)
	msg.ReplyToMessageID = message.MessageID
	return b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) error {
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message to chat %d: %w", msg.ChatID, err)
	}
	return nil
}
