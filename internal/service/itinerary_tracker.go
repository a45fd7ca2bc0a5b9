package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ivanoskov/itinerary_bot/internal/metrics"
	"github.com/ivanoskov/itinerary_bot/internal/model"
	"github.com/ivanoskov/itinerary_bot/internal/session"
)

// HistoryLimit сколько последних документов показывает /history
const HistoryLimit = 5

// ErrRender документ не удалось сформировать; сессия пользователя не сброшена
var ErrRender = errors.New("itinerary render failed")

// Publisher формирует документ из записей пользователя и хранит уже созданные
type Publisher interface {
	Publish(ctx context.Context, userID string, items []model.ItineraryEntry) (*model.Artifact, error)
	History(ctx context.Context, userID string, limit int) ([]model.Artifact, error)
}

// Message входящее текстовое сообщение
type Message struct {
	UserID string
	Text   string
	// BaseURL адрес сервера, к которому добавляется путь документа
	BaseURL string
}

// Reply ответ пользователю. Пустой Text означает, что отвечать не нужно.
type Reply struct {
	Text     string
	Choices  []string
	Artifact *model.Artifact
}

func (r Reply) Empty() bool {
	return r.Text == ""
}

// renderJob записи, которые нужно отрисовать после сохранения сессии
type renderJob struct {
	token string
	items []model.ItineraryEntry
}

// transition меняет сессию на конкретном шаге. Вызывается внутри Store.Update
// и может быть повторена, поэтому только описывает рендер, но не выполняет его.
type transition func(s *model.UserSession, msg Message) (Reply, *renderJob)

// ItineraryTracker ведет пошаговый диалог сбора маршрута
type ItineraryTracker struct {
	store     session.Store
	publisher Publisher
	table     map[model.Step]transition
}

// NewItineraryTracker создает новый экземпляр ItineraryTracker
func NewItineraryTracker(store session.Store, publisher Publisher) *ItineraryTracker {
	t := &ItineraryTracker{
		store:     store,
		publisher: publisher,
	}
	t.table = map[model.Step]transition{
		model.StepIdle:          t.onIdle,
		model.StepAwaitDate:     t.onDate,
		model.StepAwaitPlace:    t.onPlace,
		model.StepAwaitMemo:     t.onMemo,
		model.StepAwaitContinue: t.onContinue,
	}
	return t
}

// Handle применяет сообщение к сессии пользователя и возвращает ровно один ответ
func (t *ItineraryTracker) Handle(ctx context.Context, msg Message) (Reply, error) {
	msg.Text = strings.TrimSpace(msg.Text)

	var (
		from  model.Step
		reply Reply
		job   *renderJob
	)
	err := t.store.Update(ctx, msg.UserID, func(s *model.UserSession) error {
		from, reply, job = s.Step, Reply{}, nil

		if msg.Text == StartKeyword {
			s.Reset()
			s.Step = model.StepAwaitDate
			reply = Reply{Text: PromptDate}
			return nil
		}

		handle, ok := t.table[s.Step]
		if !ok {
			return fmt.Errorf("session %s: unexpected step %d", s.UserID, s.Step)
		}
		reply, job = handle(s, msg)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	metrics.RecordMessage(from.String())

	if job == nil {
		return reply, nil
	}
	return t.render(ctx, msg, job)
}

// render публикует документ и завершает диалог, если сессию не перезапустили
func (t *ItineraryTracker) render(ctx context.Context, msg Message, job *renderJob) (Reply, error) {
	artifact, pubErr := t.publisher.Publish(ctx, msg.UserID, job.items)

	err := t.store.Update(ctx, msg.UserID, func(s *model.UserSession) error {
		if s.Rendering != job.token {
			return nil
		}
		if pubErr != nil {
			// сессия остается на шаге подтверждения, пользователь может повторить
			s.Rendering = ""
			return nil
		}
		s.Reset()
		return nil
	})

	if pubErr != nil {
		if err != nil {
			slog.Error("Failed to release render claim", "user_id", msg.UserID, "error", err)
		}
		return Reply{}, fmt.Errorf("%w: %w", ErrRender, pubErr)
	}
	if err != nil {
		// документ уже создан, отдаем ссылку; /cancel или ключевое слово снимут метку
		slog.Error("Failed to reset session after render", "user_id", msg.UserID, "artifact_id", artifact.ID, "error", err)
	}

	return Reply{
		Text:     DoneMessage(strings.TrimRight(msg.BaseURL, "/") + artifact.Path()),
		Artifact: artifact,
	}, nil
}

// onIdle сообщения вне диалога намеренно игнорируются
func (t *ItineraryTracker) onIdle(s *model.UserSession, msg Message) (Reply, *renderJob) {
	slog.Debug("Ignoring message outside dialogue", "user_id", s.UserID)
	return Reply{}, nil
}

func (t *ItineraryTracker) onDate(s *model.UserSession, msg Message) (Reply, *renderJob) {
	s.Pending.Date = msg.Text
	s.Step = model.StepAwaitPlace
	return Reply{Text: PromptPlace}, nil
}

func (t *ItineraryTracker) onPlace(s *model.UserSession, msg Message) (Reply, *renderJob) {
	s.Pending.Place = msg.Text
	s.Step = model.StepAwaitMemo
	return Reply{Text: PromptMemo, Choices: []string{SkipMemoToken}}, nil
}

func (t *ItineraryTracker) onMemo(s *model.UserSession, msg Message) (Reply, *renderJob) {
	s.Pending.Memo = msg.Text
	if msg.Text == SkipMemoToken {
		s.Pending.Memo = ""
	}
	s.Commit()
	s.Step = model.StepAwaitContinue
	return Reply{Text: PromptContinue, Choices: []string{YesToken, NoToken}}, nil
}

func (t *ItineraryTracker) onContinue(s *model.UserSession, msg Message) (Reply, *renderJob) {
	if s.Rendering != "" {
		return Reply{Text: PromptRendering}, nil
	}

	switch {
	case strings.HasPrefix(msg.Text, YesToken):
		s.Step = model.StepAwaitDate
		return Reply{Text: PromptNextDate}, nil

	case strings.HasPrefix(msg.Text, NoToken):
		job := &renderJob{
			token: uuid.NewString(),
			items: append([]model.ItineraryEntry(nil), s.Items...),
		}
		s.Rendering = job.token
		return Reply{}, job

	default:
		return Reply{Text: PromptYesNo, Choices: []string{YesToken, NoToken}}, nil
	}
}

// Cancel прерывает диалог пользователя
func (t *ItineraryTracker) Cancel(ctx context.Context, userID string) (Reply, error) {
	if err := t.store.Reset(ctx, userID); err != nil {
		return Reply{}, err
	}
	return Reply{Text: CancelledMessage}, nil
}

// History ссылки на последние документы пользователя
func (t *ItineraryTracker) History(ctx context.Context, userID, baseURL string) (Reply, error) {
	artifacts, err := t.publisher.History(ctx, userID, HistoryLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("history for %s: %w", userID, err)
	}
	if len(artifacts) == 0 {
		return Reply{Text: NoHistoryMessage}, nil
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var sb strings.Builder
	sb.WriteString(historyHeader)
	for _, a := range artifacts {
		fmt.Fprintf(&sb, "\n%s（%d件）\n%s", a.CreatedAt.Format("2006-01-02 15:04"), a.EntryCount, baseURL+a.Path())
	}
	return Reply{Text: sb.String()}, nil
}

// Session текущее состояние диалога пользователя
func (t *ItineraryTracker) Session(ctx context.Context, userID string) (*model.UserSession, error) {
	return t.store.Get(ctx, userID)
}
