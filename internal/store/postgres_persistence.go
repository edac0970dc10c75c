package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"consensus-be/internal/domain"
	"consensus-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// pollDocumentID is the fixed row key; the whole collection is one
// jsonb document, the same layout the Redis backend uses.
const pollDocumentID = "polls"

// PostgresPersistence keeps the poll collection as a single jsonb row.
type PostgresPersistence struct {
	db *database.PostgresDB
}

// NewPostgresPersistence creates a Postgres-backed persistence
func NewPostgresPersistence(db *database.PostgresDB) *PostgresPersistence {
	return &PostgresPersistence{db: db}
}

// EnsureSchema creates the document table if it does not exist
func (p *PostgresPersistence) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS poll_document (
			id TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create poll_document table: %w", err)
	}
	return nil
}

func (p *PostgresPersistence) Load(ctx context.Context) ([]domain.Poll, error) {
	var data []byte
	err := p.db.Pool.QueryRow(ctx,
		`SELECT data FROM poll_document WHERE id = $1`, pollDocumentID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.Poll{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read poll document: %w", err)
	}
	var polls []domain.Poll
	if err := json.Unmarshal(data, &polls); err != nil {
		return nil, fmt.Errorf("malformed poll document: %w", err)
	}
	return polls, nil
}

func (p *PostgresPersistence) Save(ctx context.Context, polls []domain.Poll) error {
	data, err := json.Marshal(polls)
	if err != nil {
		return err
	}
	_, err = p.db.Pool.Exec(ctx, `
		INSERT INTO poll_document (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, pollDocumentID, data)
	if err != nil {
		return fmt.Errorf("failed to write poll document: %w", err)
	}
	return nil
}
