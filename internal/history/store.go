// Package history keeps a SQLite index of persisted interview sessions. The
// JSON artifacts stay the source of truth; the index only makes them
// searchable.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/session"
	_ "modernc.org/sqlite"
)

const defaultLimit = 20

// Entry is one indexed session.
type Entry struct {
	ID                string
	Role              string
	StartedAt         time.Time
	TotalScore        int
	QuestionsAnswered int
	Path              string
}

// EntryFromArtifact builds an index entry for an artifact written to path.
func EntryFromArtifact(a *session.Artifact, path string) Entry {
	return Entry{
		ID:                a.ID,
		Role:              a.Role,
		StartedAt:         a.StartTime,
		TotalScore:        a.TotalScore,
		QuestionsAnswered: a.QuestionsAnswered,
		Path:              path,
	}
}

// Store is the SQLite-backed index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index at dbPath and prepares its schema.
func Open(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("history database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		total_score INTEGER NOT NULL,
		questions_answered INTEGER NOT NULL,
		path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_role_started ON sessions(role, started_at DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record adds or replaces the entry for e.ID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("history entry id is required")
	}

	query := `
	INSERT INTO sessions (id, role, started_at, total_score, questions_answered, path)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		role = excluded.role,
		started_at = excluded.started_at,
		total_score = excluded.total_score,
		questions_answered = excluded.questions_answered,
		path = excluded.path`

	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Role, e.StartedAt.UnixNano(), e.TotalScore, e.QuestionsAnswered, e.Path,
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", e.ID, err)
	}
	return nil
}

// List returns the most recent entries, newest first. An empty role matches
// every role; a non-positive limit uses the default.
func (s *Store) List(ctx context.Context, role string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `
		SELECT id, role, started_at, total_score, questions_answered, path
		FROM sessions
		WHERE (? = '' OR role = ?)
		ORDER BY started_at DESC
		LIMIT ?`

	role = strings.TrimSpace(role)
	rows, err := s.db.QueryContext(ctx, query, role, role, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var started int64
		if err := rows.Scan(&e.ID, &e.Role, &started, &e.TotalScore, &e.QuestionsAnswered, &e.Path); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		e.StartedAt = time.Unix(0, started)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return entries, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
