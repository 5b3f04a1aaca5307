package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mealwheel/config"
	"mealwheel/conversation"
	"mealwheel/model"
)

// RunRecord is one row of run history.
type RunRecord struct {
	ID            string
	UserName      string
	UserID        string
	Provider      string
	Model         string
	Selected      string
	MainDishCount int
	Error         string // Empty for successful runs
	Transcript    []TranscriptEntry
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Succeeded reports whether the run ended with a pick.
func (r RunRecord) Succeeded() bool {
	return r.Error == ""
}

// TranscriptEntry is the stored form of a transcript message.
type TranscriptEntry struct {
	Role      string              `json:"role"`
	Name      string              `json:"name,omitempty"`
	Content   string              `json:"content,omitempty"`
	Call      *model.FunctionCall `json:"call,omitempty"`
	CallID    string              `json:"call_id,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// NewRunRecord builds a history row from a finished (or failed) run.
func NewRunRecord(out *conversation.Outcome, provider, modelName string, runErr error) RunRecord {
	rec := RunRecord{
		ID:            out.RunID,
		UserName:      out.UserName,
		UserID:        out.UserID,
		Provider:      provider,
		Model:         modelName,
		Selected:      out.Selected.Name,
		MainDishCount: len(out.MainDishes),
		StartedAt:     out.StartedAt,
		FinishedAt:    out.FinishedAt,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
		rec.Selected = ""
	}
	for _, msg := range out.Transcript {
		rec.Transcript = append(rec.Transcript, TranscriptEntry{
			Role:      msg.Role,
			Name:      msg.Name,
			Content:   msg.Content,
			Call:      msg.Call,
			CallID:    msg.CallID,
			Timestamp: msg.Timestamp,
		})
	}
	return rec
}

type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (creating if needed) <dataDir>/history.db.
func NewRunStore(dataDir string) (*RunStore, error) {
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &RunStore{db: db}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (rs *RunStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		main_dish_count INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	if _, err := rs.db.Exec(schema); err != nil {
		return err
	}

	if err := rs.migrateSchema(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	return nil
}

// migrateSchema adds columns introduced after the first release.
func (rs *RunStore) migrateSchema() error {
	hasTranscript, err := rs.columnExists("runs", "transcript")
	if err != nil {
		return fmt.Errorf("failed to check for transcript column: %w", err)
	}

	if !hasTranscript {
		if _, err := rs.db.Exec(`ALTER TABLE runs ADD COLUMN transcript TEXT NOT NULL DEFAULT '[]'`); err != nil {
			return fmt.Errorf("failed to add transcript column: %w", err)
		}
	}

	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (rs *RunStore) columnExists(tableName, columnName string) (bool, error) {
	rows, err := rs.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name string
		var dataType string
		var notNull int
		var defaultValue any
		var pk int

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
			return false, err
		}
		if name == columnName {
			return true, nil
		}
	}

	return false, rows.Err()
}

// Record inserts a run. Recording the same id twice replaces the row.
func (rs *RunStore) Record(rec RunRecord) error {
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	if rec.Transcript == nil {
		transcript = []byte("[]")
	}

	query := `
	INSERT OR REPLACE INTO runs (id, user_name, user_id, provider, model, selected, main_dish_count, error, transcript, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = rs.db.Exec(query,
		rec.ID,
		rec.UserName,
		rec.UserID,
		rec.Provider,
		rec.Model,
		rec.Selected,
		rec.MainDishCount,
		rec.Error,
		string(transcript),
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Storage] Recorded run %s (selected=%q, error=%q)", rec.ID, rec.Selected, rec.Error)
	}

	return nil
}

const runColumns = `id, user_name, user_id, provider, model, selected, main_dish_count, error, transcript, started_at, finished_at`

// Load returns the run with id, or nil if there is none.
func (rs *RunStore) Load(id string) (*RunRecord, error) {
	row := rs.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (rs *RunStore) List(limit int) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := rs.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Storage] Skipping unreadable run row: %v", err)
			}
			continue
		}
		runs = append(runs, *rec)
	}

	return runs, rows.Err()
}

func (rs *RunStore) Delete(id string) error {
	_, err := rs.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	return err
}

func (rs *RunStore) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var transcript string
	err := row.Scan(
		&rec.ID,
		&rec.UserName,
		&rec.UserID,
		&rec.Provider,
		&rec.Model,
		&rec.Selected,
		&rec.MainDishCount,
		&rec.Error,
		&transcript,
		&rec.StartedAt,
		&rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(transcript), &rec.Transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript of run %s: %w", rec.ID, err)
	}
	return &rec, nil
}
