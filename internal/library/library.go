// Package library indexes known recordings for fast GUI queries. The
// video+sidecar pair on disk remains the source of truth; this is a
// queryable cache whose rows are added only through Upsert. It is not
// rebuilt from disk on startup, and sidecar writes do not update it.
// Backed by modernc.org/sqlite by
// default; set DATABASE_URL to an externally-reachable Postgres DSN
// (see postgres.go) for a shared-machine deployment instead.
package library

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// Recording is one row of the recording library index.
type Recording struct {
	VideoName  string
	GameId     int64
	PlatformId string
	QueueName  string
	Champion   string
	Favorite   bool
	RecordedAt time.Time
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is the recording-library index, sqlite-backed unless a
// Postgres DSN is supplied at construction (see OpenPostgres). The two
// backends need different placeholder syntax ("?" vs "$n"), so Upsert
// branches on dialect rather than pulling in a query builder for one
// difference.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLite opens (creating if needed) the sqlite-backed index file.
func OpenSQLite(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("library: open sqlite: %w", err)
	}
	s := &Store{db: db, dialect: dialectSQLite}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("[library] sqlite index ready")
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS recordings (
	video_name  TEXT PRIMARY KEY,
	game_id     INTEGER NOT NULL,
	platform_id TEXT NOT NULL,
	queue_name  TEXT NOT NULL DEFAULT '',
	champion    TEXT NOT NULL DEFAULT '',
	favorite    INTEGER NOT NULL DEFAULT 0,
	recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recordings_game_id ON recordings(game_id);
`)
	return err
}

// Upsert records or updates one recording's index entry, keyed by
// video name.
func (s *Store) Upsert(r Recording) error {
	query := `
INSERT INTO recordings (video_name, game_id, platform_id, queue_name, champion, favorite, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(video_name) DO UPDATE SET
	game_id = excluded.game_id,
	platform_id = excluded.platform_id,
	queue_name = excluded.queue_name,
	champion = excluded.champion,
	favorite = excluded.favorite`
	if s.dialect == dialectPostgres {
		query = `
INSERT INTO recordings (video_name, game_id, platform_id, queue_name, champion, favorite, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT(video_name) DO UPDATE SET
	game_id = excluded.game_id,
	platform_id = excluded.platform_id,
	queue_name = excluded.queue_name,
	champion = excluded.champion,
	favorite = excluded.favorite`
	}
	_, err := s.db.Exec(query, r.VideoName, r.GameId, r.PlatformId, r.QueueName, r.Champion, r.Favorite, r.RecordedAt)
	if err != nil {
		return fmt.Errorf("library: upsert %s: %w", r.VideoName, err)
	}
	return nil
}

// SetFavorite flips the favorite flag for a known recording.
func (s *Store) SetFavorite(videoName string, favorite bool) error {
	query := `UPDATE recordings SET favorite = ? WHERE video_name = ?`
	if s.dialect == dialectPostgres {
		query = `UPDATE recordings SET favorite = $1 WHERE video_name = $2`
	}
	_, err := s.db.Exec(query, favorite, videoName)
	return err
}

// List returns all indexed recordings, most recent first.
func (s *Store) List() ([]Recording, error) {
	rows, err := s.db.Query(`SELECT video_name, game_id, platform_id, queue_name, champion, favorite, recorded_at FROM recordings ORDER BY recorded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recording
	for rows.Next() {
		var r Recording
		// favorite is INTEGER under sqlite and BOOLEAN under postgres;
		// scanning into interface{} and normalizing avoids a second
		// dialect branch just for this column's Go type.
		var favorite interface{}
		if err := rows.Scan(&r.VideoName, &r.GameId, &r.PlatformId, &r.QueueName, &r.Champion, &favorite, &r.RecordedAt); err != nil {
			return nil, err
		}
		switch v := favorite.(type) {
		case bool:
			r.Favorite = v
		case int64:
			r.Favorite = v != 0
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
