package repository

import (
	"context"
	"database/sql"
	"log"
)

// Schema is applied at startup. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS portal_activity (
	id SERIAL PRIMARY KEY,
	actor_id TEXT NOT NULL,
	screen TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS portal_activity_actor_idx ON portal_activity (actor_id, created_at DESC);

CREATE TABLE IF NOT EXISTS portal_uploads (
	id SERIAL PRIMARY KEY,
	url TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS portal_uploads_url_idx ON portal_uploads (url);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return err
	}
	log.Println("[db] schema ready")
	return nil
}
