package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

// SQLiteRepository реализует Repository поверх SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository открывает (или создает) базу и схему
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		entry_count INTEGER NOT NULL,
		page_count INTEGER NOT NULL,
		size_bytes INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_user ON artifacts(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateArtifact(ctx context.Context, artifact *model.Artifact) error {
	artifact.GenerateID()
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO artifacts (id, user_id, entry_count, page_count, size_bytes, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		artifact.ID, artifact.UserID, artifact.EntryCount,
		artifact.PageCount, artifact.SizeBytes, artifact.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetArtifact(ctx context.Context, id string) (*model.Artifact, error) {
	query := `
		SELECT id, user_id, entry_count, page_count, size_bytes, created_at
		FROM artifacts WHERE id = ?`

	a, err := scanArtifact(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan artifact row: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListArtifacts(ctx context.Context, userID string, limit int) ([]model.Artifact, error) {
	query := `
		SELECT id, user_id, entry_count, page_count, size_bytes, created_at
		FROM artifacts WHERE user_id = ? ORDER BY created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *SQLiteRepository) ListExpiredArtifacts(ctx context.Context, before time.Time) ([]model.Artifact, error) {
	query := `
		SELECT id, user_id, entry_count, page_count, size_bytes, created_at
		FROM artifacts WHERE created_at < ? ORDER BY created_at`
	return r.query(ctx, query, before.UnixNano())
}

func (r *SQLiteRepository) DeleteArtifact(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]model.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close artifact rows", "error", closeErr)
		}
	}()

	artifacts := make([]model.Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact row: %w", err)
		}
		artifacts = append(artifacts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return artifacts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row rowScanner) (*model.Artifact, error) {
	var a model.Artifact
	var createdAt int64
	if err := row.Scan(&a.ID, &a.UserID, &a.EntryCount, &a.PageCount, &a.SizeBytes, &createdAt); err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(0, createdAt)
	return &a, nil
}
