package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mealwheel/config"
)

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-",
		"\"", "-", "<", "-", ">", "-", "|", "-", " ", "-",
		"\n", "-", "\r", "-",
	)
	name = strings.Trim(replacer.Replace(name), "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "run"
	}

	return name
}

// GenerateExportPath returns ~/Downloads/mealwheel-run-<user>-<timestamp>.json.
func GenerateExportPath(rec RunRecord) string {
	downloadsDir := filepath.Join(config.GetHomeDir(), "Downloads")
	filename := fmt.Sprintf("mealwheel-run-%s-%s.json",
		SanitizeFilename(rec.UserName),
		rec.StartedAt.Format("20060102-150405"))
	return filepath.Join(downloadsDir, filename)
}

type runExport struct {
	ID            string            `json:"id"`
	UserName      string            `json:"user_name"`
	UserID        string            `json:"user_id,omitempty"`
	Provider      string            `json:"provider"`
	Model         string            `json:"model"`
	Selected      string            `json:"selected,omitempty"`
	MainDishCount int               `json:"main_dish_count"`
	Error         string            `json:"error,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
	Transcript    []TranscriptEntry `json:"transcript"`
}

// ExportToJSON writes the run with id, transcript included, to exportPath.
func (rs *RunStore) ExportToJSON(id string, exportPath string) error {
	rec, err := rs.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("run %s not found", id)
	}

	data, err := json.MarshalIndent(runExport{
		ID:            rec.ID,
		UserName:      rec.UserName,
		UserID:        rec.UserID,
		Provider:      rec.Provider,
		Model:         rec.Model,
		Selected:      rec.Selected,
		MainDishCount: rec.MainDishCount,
		Error:         rec.Error,
		StartedAt:     rec.StartedAt,
		FinishedAt:    rec.FinishedAt,
		Transcript:    rec.Transcript,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// 0600: transcripts include user names and ids
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
