package model

import "time"

// Step обозначает позицию пользователя в диалоге составления маршрута
type Step int

const (
	StepIdle Step = iota
	StepAwaitDate
	StepAwaitPlace
	StepAwaitMemo
	StepAwaitContinue
)

// Valid сообщает, является ли шаг одним из известных значений
func (s Step) Valid() bool {
	return s >= StepIdle && s <= StepAwaitContinue
}

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepAwaitDate:
		return "await_date"
	case StepAwaitPlace:
		return "await_place"
	case StepAwaitMemo:
		return "await_memo"
	case StepAwaitContinue:
		return "await_continue"
	}
	return "unknown"
}

// PendingEntry хранит поля записи, которые пользователь вводит по шагам
type PendingEntry struct {
	Date  string `json:"date"`
	Place string `json:"place"`
	Memo  string `json:"memo"`
}

// UserSession представляет текущее состояние диалога пользователя
type UserSession struct {
	UserID    string           `json:"user_id"`
	Step      Step             `json:"step"`
	Items     []ItineraryEntry `json:"items"`
	Pending   PendingEntry     `json:"pending"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Rendering метка документа, который сейчас формируется; пусто, если рендера нет
	Rendering string `json:"rendering,omitempty"`
}

// NewUserSession создает пустую сессию в состоянии ожидания
func NewUserSession(userID string) *UserSession {
	return &UserSession{
		UserID: userID,
		Step:   StepIdle,
		Items:  []ItineraryEntry{},
	}
}

// Reset возвращает сессию в начальное состояние
func (s *UserSession) Reset() {
	s.Step = StepIdle
	s.Items = []ItineraryEntry{}
	s.Pending = PendingEntry{}
	s.Rendering = ""
}

// Commit переносит введенные поля в список записей и очищает их
func (s *UserSession) Commit() {
	s.Items = append(s.Items, ItineraryEntry{
		Date:  s.Pending.Date,
		Place: s.Pending.Place,
		Memo:  s.Pending.Memo,
	})
	s.Pending = PendingEntry{}
}

// Clone возвращает копию сессии, не разделяющую список записей с оригиналом
func (s *UserSession) Clone() *UserSession {
	c := *s
	c.Items = make([]ItineraryEntry, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}
