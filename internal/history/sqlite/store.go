package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/leonardotrapani/keysim/internal/history"
	"github.com/leonardotrapani/keysim/internal/history/sqlite/migrations"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store keeps session history in a SQLite database.
type Store struct {
	db *sql.DB
}

func NewStore(filename string, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Record(ctx context.Context, e history.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (started_at, finished_at, source, chars, outcome, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.StartedAt.UnixMilli(), e.FinishedAt.UnixMilli(), e.Source, e.Chars, string(e.Outcome), e.Reason,
	)
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, source, chars, outcome, reason
		 FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var (
			e                 history.Entry
			started, finished int64
			outcome           string
		)
		if err := rows.Scan(&e.ID, &started, &finished, &e.Source, &e.Chars, &outcome, &e.Reason); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		e.StartedAt = time.UnixMilli(started)
		e.FinishedAt = time.UnixMilli(finished)
		e.Outcome = history.Outcome(outcome)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}

	return out, nil
}
