package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

// ErrNotFound документ с таким идентификатором не найден
var ErrNotFound = errors.New("artifact not found")

// Repository реестр сформированных документов
type Repository interface {
	CreateArtifact(ctx context.Context, artifact *model.Artifact) error
	GetArtifact(ctx context.Context, id string) (*model.Artifact, error)
	// ListArtifacts возвращает документы пользователя, новые первыми
	ListArtifacts(ctx context.Context, userID string, limit int) ([]model.Artifact, error)
	// ListExpiredArtifacts возвращает документы, созданные раньше before
	ListExpiredArtifacts(ctx context.Context, before time.Time) ([]model.Artifact, error)
	DeleteArtifact(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
