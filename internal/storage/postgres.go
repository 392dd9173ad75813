package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate — идемпотентная инициализация схемы.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id            BIGINT PRIMARY KEY,
			preferred_provider TEXT NOT NULL DEFAULT '',
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS user_api_keys (
			user_id    BIGINT NOT NULL,
			provider   TEXT NOT NULL,
			key_cipher TEXT NOT NULL,
			key_mask   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, provider)
		)`,
		`CREATE TABLE IF NOT EXISTS user_interactions (
			id              BIGSERIAL PRIMARY KEY,
			user_id         BIGINT NOT NULL,
			chat_id         BIGINT NOT NULL,
			action          TEXT NOT NULL,
			message_type    TEXT NOT NULL DEFAULT '',
			message_length  INTEGER NOT NULL DEFAULT 0,
			response_length INTEGER NOT NULL DEFAULT 0,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_interactions_user_id
			ON user_interactions (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_interactions_created_at
			ON user_interactions (created_at)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id             BIGINT PRIMARY KEY,
			total_messages      BIGINT NOT NULL DEFAULT 0,
			messages_today      BIGINT NOT NULL DEFAULT 0,
			messages_this_week  BIGINT NOT NULL DEFAULT 0,
			tokens_used         BIGINT NOT NULL DEFAULT 0,
			avg_response_length BIGINT NOT NULL DEFAULT 0,
			first_used          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_used           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
