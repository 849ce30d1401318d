package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver

	"deadgrid/server/models"
)

// PostgresStore keeps runs in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and creates the schema if needed
func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		player_name TEXT NOT NULL,
		seed BIGINT NOT NULL,
		days_survived INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		camp_level INTEGER NOT NULL,
		inventory JSONB NOT NULL,
		ended_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS runs_leaderboard
		ON runs (days_survived DESC, kills DESC, ended_at ASC, id ASC);
	`

	_, err := ps.db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts a finished run
func (ps *PostgresStore) SaveRun(ctx context.Context, run models.RunRecord) error {
	inventory, err := marshalInventory(run.Inventory)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO runs (id, session_id, player_name, seed, days_survived, kills, camp_level, inventory, ended_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = ps.db.ExecContext(ctx, query,
		run.ID, run.SessionID, run.PlayerName, run.Seed,
		run.DaysSurvived, run.Kills, run.CampLevel,
		inventory, run.EndedAt.UTC())

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("save run %s: %w", run.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	return nil
}

// LoadRun loads a run by ID
func (ps *PostgresStore) LoadRun(ctx context.Context, id string) (models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	run, err := scanRun(ps.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RunRecord{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
		}
		return models.RunRecord{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return run, nil
}

// TopRuns returns the best runs first
func (ps *PostgresStore) TopRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ` + leaderboardOrder + ` LIMIT $1`

	rows, err := ps.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// Close closes the database connection
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
