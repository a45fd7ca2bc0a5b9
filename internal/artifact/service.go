// Package artifact формирует PDF с маршрутом, хранит его и отдает по идентификатору.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ivanoskov/itinerary_bot/internal/document"
	"github.com/ivanoskov/itinerary_bot/internal/metrics"
	"github.com/ivanoskov/itinerary_bot/internal/model"
	"github.com/ivanoskov/itinerary_bot/internal/repository"
)

// Renderer рисует документ из записей
type Renderer interface {
	Render(w io.Writer, items []model.ItineraryEntry) (*document.Result, error)
}

// Service связывает отрисовку, файловое хранилище и реестр документов
type Service struct {
	renderer Renderer
	files    *FileStore
	repo     repository.Repository
	now      func() time.Time
}

func NewService(renderer Renderer, files *FileStore, repo repository.Repository) *Service {
	return &Service{
		renderer: renderer,
		files:    files,
		repo:     repo,
		now:      time.Now,
	}
}

// Publish формирует документ с уникальным идентификатором и регистрирует его
func (s *Service) Publish(ctx context.Context, userID string, items []model.ItineraryEntry) (*model.Artifact, error) {
	start := s.now()
	a, err := s.publish(ctx, userID, items)
	pages := 0
	if a != nil {
		pages = a.PageCount
	}
	metrics.RecordRender(err, pages, s.now().Sub(start))
	return a, err
}

func (s *Service) publish(ctx context.Context, userID string, items []model.ItineraryEntry) (*model.Artifact, error) {
	var buf bytes.Buffer
	res, err := s.renderer.Render(&buf, items)
	if err != nil {
		return nil, fmt.Errorf("render itinerary: %w", err)
	}

	a := &model.Artifact{
		UserID:     userID,
		EntryCount: res.Entries,
		PageCount:  res.Pages,
		SizeBytes:  int64(buf.Len()),
		CreatedAt:  s.now(),
	}
	a.GenerateID()

	if err := s.files.Write(a.ID, buf.Bytes()); err != nil {
		return nil, err
	}
	if err := s.repo.CreateArtifact(ctx, a); err != nil {
		if rmErr := s.files.Remove(a.ID); rmErr != nil {
			slog.Warn("Failed to remove unregistered artifact", "artifact_id", a.ID, "error", rmErr)
		}
		return nil, fmt.Errorf("register artifact: %w", err)
	}

	slog.Info("Itinerary published",
		"user_id", userID,
		"artifact_id", a.ID,
		"entries", a.EntryCount,
		"pages", a.PageCount,
		"bytes", a.SizeBytes)
	return a, nil
}

// Open находит документ в реестре и открывает его файл
func (s *Service) Open(ctx context.Context, id string) (*model.Artifact, ReadSeekCloser, error) {
	if _, err := s.files.path(id); err != nil {
		return nil, nil, err
	}
	a, err := s.repo.GetArtifact(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.files.Open(id)
	if err != nil {
		return nil, nil, fmt.Errorf("open artifact %s: %w", id, err)
	}
	return a, f, nil
}

// History последние документы пользователя
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.Artifact, error) {
	return s.repo.ListArtifacts(ctx, userID, limit)
}

// Prune удаляет документы старше olderThan и возвращает их количество
func (s *Service) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	expired, err := s.repo.ListExpiredArtifacts(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, a := range expired {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if err := s.files.Remove(a.ID); err != nil {
			slog.Warn("Failed to remove expired artifact file", "artifact_id", a.ID, "error", err)
			continue
		}
		if err := s.repo.DeleteArtifact(ctx, a.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("Failed to delete expired artifact record", "artifact_id", a.ID, "error", err)
			continue
		}
		removed++
	}

	metrics.RecordPruned(removed)
	return removed, nil
}

// StartPruneWorker периодически удаляет устаревшие документы до отмены ctx
func (s *Service) StartPruneWorker(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 || interval <= 0 {
		slog.Info("Artifact pruning disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.Prune(ctx, ttl)
				if err != nil {
					slog.Error("Artifact pruning failed", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("Expired artifacts removed", "count", n)
				}
			}
		}
	}()
}
