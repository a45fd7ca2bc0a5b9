package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

const artifactsTable = "artifacts"

// SupabaseRepository реализует Repository поверх таблицы artifacts в Supabase
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

func (r *SupabaseRepository) CreateArtifact(ctx context.Context, artifact *model.Artifact) error {
	artifact.GenerateID()
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}

	_, count, err := r.client.From(artifactsTable).Insert(artifact, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	slog.Debug("Artifact recorded in supabase", "artifact_id", artifact.ID, "count", count)
	return nil
}

func (r *SupabaseRepository) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	data, _, err := r.client.From(artifactsTable).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	artifacts, err := decodeArtifacts(data)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, ErrNotFound
	}
	return &artifacts[0], nil
}

func (r *SupabaseRepository) ListArtifacts(ctx context.Context, userID string, limit int) ([]model.Artifact, error) {
	query := r.client.From(artifactsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return decodeArtifacts(data)
}

func (r *SupabaseRepository) ListExpiredArtifacts(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	data, _, err := r.client.From(artifactsTable).
		Select("*", "", false).
		Lt("created_at", before.UTC().Format(time.RFC3339Nano)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list expired artifacts: %w", err)
	}
	return decodeArtifacts(data)
}

func (r *SupabaseRepository) DeleteArtifact(ctx context.Context, id string) error {
	data, _, err := r.client.From(artifactsTable).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	deleted, err := decodeArtifacts(data)
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping проверяет доступность таблицы минимальным запросом
func (r *SupabaseRepository) Ping(ctx context.Context) error {
	_, _, err := r.client.From(artifactsTable).
		Select("id", "", false).
		Limit(1, "").
		Execute()
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) Close() error {
	return nil
}

func decodeArtifacts(data []byte) ([]model.Artifact, error) {
	var artifacts []model.Artifact
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return nil, fmt.Errorf("failed to parse artifacts: %w", err)
	}
	return artifacts, nil
}
