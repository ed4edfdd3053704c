package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docelucro/backend-doce/internal/state"
)

// PostgresRemote mirrors the document to a JSONB row keyed by user.
type PostgresRemote struct {
	Pool *pgxpool.Pool
}

func (r *PostgresRemote) Load(ctx context.Context, userID string) (*state.Document, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("postgres remote not configured")
	}
	var raw []byte
	err := r.Pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRemoteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document for %s: %w", userID, err)
	}
	doc := &state.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode document for %s: %w", userID, err)
	}
	return doc, nil
}

func (r *PostgresRemote) Save(ctx context.Context, userID string, doc *state.Document) error {
	if r == nil || r.Pool == nil {
		return errors.New("postgres remote not configured")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document for %s: %w", userID, err)
	}
	_, err = r.Pool.Exec(ctx, `
		INSERT INTO documents (user_id, doc, version, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET doc = EXCLUDED.doc, version = EXCLUDED.version, updated_at = now()`,
		userID, raw, doc.SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("upsert document for %s: %w", userID, err)
	}
	return nil
}
