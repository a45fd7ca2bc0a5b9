// Package session хранит состояние диалога каждого пользователя.
package session

import (
	"context"
	"errors"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

// ErrClosed возвращается после закрытия хранилища
var ErrClosed = errors.New("session store closed")

// UpdateFunc изменяет сессию. Если функция вернула ошибку, изменения не сохраняются.
// Хранилище может вызвать ее повторно на свежей копии (RedisStore при конфликте WATCH),
// поэтому функция не должна иметь внешних побочных эффектов.
type UpdateFunc func(s *model.UserSession) error

// Store хранилище сессий с атомарным обновлением по идентификатору пользователя.
// Update для одного пользователя выполняются строго последовательно,
// разные пользователи друг друга не блокируют.
type Store interface {
	// Get возвращает копию сессии; отсутствующая сессия создается в состоянии StepIdle
	Get(ctx context.Context, userID string) (*model.UserSession, error)

	// Update загружает (или создает) сессию, применяет fn и сохраняет результат
	Update(ctx context.Context, userID string, fn UpdateFunc) error

	// Reset возвращает сессию в состояние StepIdle без записей
	Reset(ctx context.Context, userID string) error

	Close() error
}
