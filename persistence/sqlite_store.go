package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"deadgrid/server/models"
)

// SQLiteStore keeps runs in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// NewSQLiteStore opens the database at path and creates the schema. The
// path ":memory:" opens a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// An in-memory database lives and dies with its single connection.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		player_name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		days_survived INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		camp_level INTEGER NOT NULL,
		inventory TEXT NOT NULL,
		ended_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS runs_leaderboard
		ON runs (days_survived DESC, kills DESC, ended_at ASC, id ASC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts a finished run.
func (s *SQLiteStore) SaveRun(ctx context.Context, run models.RunRecord) error {
	inventory, err := marshalInventory(run.Inventory)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO runs (id, session_id, player_name, seed, days_survived, kills, camp_level, inventory, ended_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SessionID, run.PlayerName, run.Seed,
		run.DaysSurvived, run.Kills, run.CampLevel,
		inventory, toMillis(run.EndedAt))
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("save run %s: %w", run.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// LoadRun loads a run by id.
func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (models.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanSQLiteRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RunRecord{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return models.RunRecord{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return run, nil
}

// TopRuns returns the best runs first.
func (s *SQLiteStore) TopRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs `+leaderboardOrder+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunRecord{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// scanSQLiteRun is scanRun with ended_at stored as unix milliseconds.
func scanSQLiteRun(row rowScanner) (models.RunRecord, error) {
	var endedAt int64
	run, err := scanRun(scanFunc(func(dest ...any) error {
		dest[len(dest)-1] = &endedAt
		return row.Scan(dest...)
	}))
	if err != nil {
		return models.RunRecord{}, err
	}
	run.EndedAt = fromMillis(endedAt)
	return run, nil
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
