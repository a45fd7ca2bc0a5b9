package bot

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/itinerary_bot/internal/model"
	"github.com/ivanoskov/itinerary_bot/internal/service"
	"github.com/ivanoskov/itinerary_bot/internal/session"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

type fakePublisher struct {
	err     error
	history []model.Artifact
}

func (p *fakePublisher) Publish(ctx context.Context, userID string, items []model.ItineraryEntry) (*model.Artifact, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &model.Artifact{ID: "abc", UserID: userID, EntryCount: len(items)}, nil
}

func (p *fakePublisher) History(ctx context.Context, userID string, limit int) ([]model.Artifact, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.history, nil
}

func update(t *testing.T, messageID int, text string) []byte {
	t.Helper()
	u := map[string]interface{}{
		"update_id": messageID,
		"message": map[string]interface{}{
			"message_id": messageID,
			"from":       map[string]interface{}{"id": 42, "is_bot": false, "first_name": "Taro"},
			"chat":       map[string]interface{}{"id": 4242, "type": "private"},
			"date":       0,
			"text":       text,
		},
	}
	if len(text) > 0 && text[0] == '/' {
		u["message"].(map[string]interface{})["entities"] = []map[string]interface{}{
			{"type": "bot_command", "offset": 0, "length": len(text)},
		}
	}
	body, err := json.Marshal(u)
	require.NoError(t, err)
	return body
}

func newTestBot(pub *fakePublisher) (*Bot, *fakeSender) {
	sender := &fakeSender{}
	tracker := service.NewItineraryTracker(session.NewMemoryStore(), pub)
	return NewBotWithSender(sender, tracker, ""), sender
}

func TestHandleWebhook_Dialogue(t *testing.T) {
	b, sender := newTestBot(&fakePublisher{})
	ctx := context.Background()

	texts := []string{service.StartKeyword, "2025-03-12", "Tokyo", "museum", service.NoToken}
	for i, text := range texts {
		require.NoError(t, b.HandleWebhook(ctx, update(t, i+1, text), "https://bot.example.com"))
	}

	require.Len(t, sender.sent, len(texts))
	for i, msg := range sender.sent {
		assert.Equal(t, int64(4242), msg.ChatID)
		assert.Equal(t, i+1, msg.ReplyToMessageID)
	}

	assert.Equal(t, service.PromptDate, sender.sent[0].Text)
	_, removes := sender.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, removes)

	keyboard, ok := sender.sent[3].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.Keyboard, 1)
	assert.Equal(t, service.YesToken, keyboard.Keyboard[0][0].Text)
	assert.Equal(t, service.NoToken, keyboard.Keyboard[0][1].Text)

	assert.Equal(t, service.DoneMessage("https://bot.example.com/static/itinerary/abc.pdf"), sender.sent[4].Text)
}

func TestHandleWebhook_ConfiguredBaseURLWins(t *testing.T) {
	sender := &fakeSender{}
	tracker := service.NewItineraryTracker(session.NewMemoryStore(), &fakePublisher{})
	b := NewBotWithSender(sender, tracker, "https://public.example.com")

	for i, text := range []string{service.StartKeyword, "d", "p", "m", service.NoToken} {
		require.NoError(t, b.HandleWebhook(context.Background(), update(t, i+1, text), "http://internal:8080"))
	}
	assert.Contains(t, sender.sent[4].Text, "https://public.example.com/static/itinerary/abc.pdf")
}

func TestHandleWebhook_IdleMessageIsSilent(t *testing.T) {
	b, sender := newTestBot(&fakePublisher{})

	require.NoError(t, b.HandleWebhook(context.Background(), update(t, 1, "hello"), ""))
	assert.Empty(t, sender.sent)
}

func TestHandleWebhook_StartCommand(t *testing.T) {
	b, sender := newTestBot(&fakePublisher{})

	require.NoError(t, b.HandleWebhook(context.Background(), update(t, 1, "/start"), ""))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, greeting, sender.sent[0].Text)

	keyboard, ok := sender.sent[0].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, service.StartKeyword, keyboard.Keyboard[0][0].Text)
}

func TestHandleWebhook_CancelCommand(t *testing.T) {
	b, sender := newTestBot(&fakePublisher{})
	ctx := context.Background()

	for i, text := range []string{service.StartKeyword, "2025-03-12", "/cancel", "Tokyo"} {
		require.NoError(t, b.HandleWebhook(ctx, update(t, i+1, text), ""))
	}

	require.Len(t, sender.sent, 3, "text after /cancel is ignored")
	assert.Equal(t, service.CancelledMessage, sender.sent[2].Text)
	_, ok := sender.sent[2].ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, ok)
}

func TestHandleWebhook_HistoryCommand(t *testing.T) {
	pub := &fakePublisher{history: []model.Artifact{
		{ID: "a2", EntryCount: 3, CreatedAt: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)},
		{ID: "a1", EntryCount: 1, CreatedAt: time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)},
	}}
	b, sender := newTestBot(pub)

	require.NoError(t, b.HandleWebhook(context.Background(), update(t, 1, "/history"), "https://bot.example.com"))
	require.Len(t, sender.sent, 1)

	text := sender.sent[0].Text
	assert.Contains(t, text, "2025-03-12 09:00（3件）\nhttps://bot.example.com/static/itinerary/a2.pdf")
	assert.Contains(t, text, "https://bot.example.com/static/itinerary/a1.pdf")
	assert.Less(t, strings.Index(text, "a2.pdf"), strings.Index(text, "a1.pdf"))
}

func TestHandleWebhook_HistoryEmptyAndFailing(t *testing.T) {
	pub := &fakePublisher{}
	b, sender := newTestBot(pub)
	ctx := context.Background()

	require.NoError(t, b.HandleWebhook(ctx, update(t, 1, "/history"), ""))
	assert.Equal(t, service.NoHistoryMessage, sender.sent[0].Text)

	pub.err = errors.New("db down")
	require.NoError(t, b.HandleWebhook(ctx, update(t, 2, "/history"), ""))
	assert.Equal(t, "❌ "+historyFailed, sender.sent[1].Text)
}

func TestHandleWebhook_RenderFailure(t *testing.T) {
	pub := &fakePublisher{}
	b, sender := newTestBot(pub)
	ctx := context.Background()

	for i, text := range []string{service.StartKeyword, "d", "p", "m"} {
		require.NoError(t, b.HandleWebhook(ctx, update(t, i+1, text), ""))
	}

	pub.err = errors.New("boom")
	require.NoError(t, b.HandleWebhook(ctx, update(t, 5, service.NoToken), ""))

	last := sender.sent[len(sender.sent)-1]
	assert.Equal(t, "❌ "+renderFailed, last.Text)
}

func TestHandleWebhook_InvalidBody(t *testing.T) {
	b, _ := newTestBot(&fakePublisher{})
	assert.Error(t, b.HandleWebhook(context.Background(), []byte("{"), ""))
}

func TestHandleWebhook_SendError(t *testing.T) {
	b, sender := newTestBot(&fakePublisher{})
	sender.err = errors.New("telegram down")

	err := b.HandleWebhook(context.Background(), update(t, 1, service.StartKeyword), "")
	assert.ErrorIs(t, err, sender.err)
}

func TestStartRequiresConnection(t *testing.T) {
	b, _ := newTestBot(&fakePublisher{})
	assert.Error(t, b.Start(context.Background()))
}
