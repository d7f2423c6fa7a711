package logbook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed writer.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Write(ctx context.Context, entry Entry) error {
	flags, err := json.Marshal(entry.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	summary, err := json.Marshal(entry.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO reply_log (chat_id, platform, phase, reply_text, blocked, flags, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ChatID, entry.Platform, entry.Phase, entry.ReplyText, entry.Blocked, flags, summary)
	if err != nil {
		return fmt.Errorf("insert reply log: %w", err)
	}
	return nil
}
