package library

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres opens a Postgres-backed library index, used instead of
// the sqlite default when a shared-machine/multi-profile deployment
// points DATABASE_URL at a real server. Pool tuning mirrors
// internal/db.NewDatabase's settings.
func OpenPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("library: open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("library: ping postgres: %w", err)
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS recordings (
	video_name  TEXT PRIMARY KEY,
	game_id     BIGINT NOT NULL,
	platform_id TEXT NOT NULL,
	queue_name  TEXT NOT NULL DEFAULT '',
	champion    TEXT NOT NULL DEFAULT '',
	favorite    BOOLEAN NOT NULL DEFAULT FALSE,
	recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_game_id ON recordings(game_id);
`); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: migrate postgres: %w", err)
	}

	log.Println("[library] postgres index ready")
	return &Store{db: db, dialect: dialectPostgres}, nil
}
