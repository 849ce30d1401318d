package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"deadgrid/server/models"
)

const runColumns = `id, session_id, player_name, seed, days_survived, kills, camp_level, inventory, ended_at`

const leaderboardOrder = `ORDER BY days_survived DESC, kills DESC, ended_at ASC, id ASC`

type rowScanner interface {
	Scan(dest ...any) error
}

func marshalInventory(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal inventory: %w", err)
	}
	return string(data), nil
}

// scanRun reads one row selected with runColumns.
func scanRun(row rowScanner) (models.RunRecord, error) {
	var run models.RunRecord
	var inventory string
	err := row.Scan(
		&run.ID, &run.SessionID, &run.PlayerName, &run.Seed,
		&run.DaysSurvived, &run.Kills, &run.CampLevel,
		&inventory, &run.EndedAt,
	)
	if err != nil {
		return models.RunRecord{}, err
	}
	if err := json.Unmarshal([]byte(inventory), &run.Inventory); err != nil {
		return models.RunRecord{}, fmt.Errorf("unmarshal inventory: %w", err)
	}
	run.EndedAt = run.EndedAt.UTC()
	return run, nil
}

func collectRuns(rows *sql.Rows) ([]models.RunRecord, error) {
	defer rows.Close()
	runs := []models.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
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
