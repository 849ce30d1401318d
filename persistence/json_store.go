package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"deadgrid/server/models"
)

// JSONStore keeps runs in a single local JSON file
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	data     *JSONData
}

// JSONData is the on-disk layout of the JSON file
type JSONData struct {
	Runs map[string]models.RunRecord `json:"runs"`
}

// NewJSONStore opens the file at filePath, creating it when missing
func NewJSONStore(filePath string) (*JSONStore, error) {
	store := &JSONStore{
		filePath: filePath,
		data: &JSONData{
			Runs: make(map[string]models.RunRecord),
		},
	}

	if _, err := os.Stat(filePath); err == nil {
		if err := store.loadFromFile(); err != nil {
			return nil, fmt.Errorf("load JSON store: %w", err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := store.saveToFile(); err != nil {
			return nil, fmt.Errorf("create JSON store file: %w", err)
		}
	} else {
		return nil, fmt.Errorf("stat JSON store: %w", err)
	}

	return store, nil
}

func (js *JSONStore) loadFromFile() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	file, err := os.ReadFile(js.filePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(file, js.data); err != nil {
		return err
	}
	if js.data.Runs == nil {
		js.data.Runs = make(map[string]models.RunRecord)
	}
	return nil
}

// saveToFile writes through a temp file so a crash never leaves a torn file.
// Callers hold the write lock.
func (js *JSONStore) saveToFile() error {
	data, err := json.MarshalIndent(js.data, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".runs-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// SaveRun adds a finished run
func (js *JSONStore) SaveRun(ctx context.Context, run models.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	js.mutex.Lock()
	defer js.mutex.Unlock()

	if _, exists := js.data.Runs[run.ID]; exists {
		return fmt.Errorf("save run %s: %w", run.ID, ErrAlreadyExists)
	}
	js.data.Runs[run.ID] = run
	if err := js.saveToFile(); err != nil {
		delete(js.data.Runs, run.ID)
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// LoadRun loads a run by ID
func (js *JSONStore) LoadRun(ctx context.Context, id string) (models.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.RunRecord{}, err
	}
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	run, exists := js.data.Runs[id]
	if !exists {
		return models.RunRecord{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, nil
}

// TopRuns returns the best runs first
func (js *JSONStore) TopRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	js.mutex.RLock()
	runs := make([]models.RunRecord, 0, len(js.data.Runs))
	for _, run := range js.data.Runs {
		runs = append(runs, run)
	}
	js.mutex.RUnlock()

	SortRuns(runs)
	if limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close is a no-op for the JSON store
func (js *JSONStore) Close() error {
	return nil
}
