package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mealwheel/conversation"
	"mealwheel/mealwheel"
	"mealwheel/model"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := NewRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewRunStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleOutcome(id string, started time.Time) *conversation.Outcome {
	out := &conversation.Outcome{
		RunID:      id,
		UserName:   "crapshack",
		UserID:     "42",
		MainDishes: []mealwheel.Dish{{Name: "Lasagna"}, {Name: "Curry"}},
		Selected:   mealwheel.Dish{Name: "Curry"},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
	out.Transcript.Append(model.Message{Role: model.RoleUser, Content: conversation.QuestionFor("crapshack")})
	out.Transcript.Append(model.Message{Role: model.RoleAssistant, Call: &model.FunctionCall{
		ID: "call_1", Name: "getMealWheelUserId", Arguments: `{"name":"crapshack"}`,
	}})
	out.Transcript.Append(model.Message{Role: model.RoleFunction, Name: "getMealWheelUserId", CallID: "call_1", Content: `{"id":"42"}`})
	return out
}

func TestRunStoreRecordAndLoad(t *testing.T) {
	store := newTestStore(t)
	started := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)

	rec := NewRunRecord(sampleOutcome("run-1", started), "openai", "gpt-4o-mini", nil)
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.Load("run-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() returned nil")
	}

	if got.Selected != "Curry" || got.MainDishCount != 2 || got.UserID != "42" {
		t.Errorf("record = %+v", got)
	}
	if !got.Succeeded() {
		t.Error("Succeeded() = false")
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if len(got.Transcript) != 3 {
		t.Fatalf("transcript length = %d, want 3", len(got.Transcript))
	}
	if call := got.Transcript[1].Call; call == nil || call.Name != "getMealWheelUserId" {
		t.Errorf("directive not preserved: %+v", got.Transcript[1])
	}
	if got.Transcript[2].CallID != "call_1" {
		t.Errorf("CallID = %q", got.Transcript[2].CallID)
	}

	missing, err := store.Load("nope")
	if err != nil || missing != nil {
		t.Errorf("Load(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestRunStoreRecordsFailures(t *testing.T) {
	store := newTestStore(t)

	out := sampleOutcome("run-err", time.Now())
	rec := NewRunRecord(out, "ollama", "llama3.1", errors.New("round 1: no match"))
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := store.Load("run-err")
	if err != nil || got == nil {
		t.Fatalf("Load() = %v, %v", got, err)
	}
	if got.Succeeded() || got.Error != "round 1: no match" {
		t.Errorf("Error = %q", got.Error)
	}
	if got.Selected != "" {
		t.Errorf("failed run should have no selection, got %q", got.Selected)
	}
}

func TestRunStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		rec := NewRunRecord(sampleOutcome(id, base.Add(time.Duration(i)*time.Hour)), "openai", "m", nil)
		if err := store.Record(rec); err != nil {
			t.Fatalf("Record(%s) error = %v", id, err)
		}
	}

	all, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("List(0) order = %v", ids(all))
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "c" {
		t.Errorf("List(2) = %v", ids(limited))
	}

	if err := store.Delete("c"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	after, _ := store.List(0)
	if len(after) != 2 {
		t.Errorf("after Delete, %d runs remain", len(after))
	}
}

func TestRunStoreReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewRunStore(dir)
	if err != nil {
		t.Fatalf("NewRunStore() error = %v", err)
	}
	if err := store.Record(NewRunRecord(sampleOutcome("keep", time.Now()), "openai", "m", nil)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	store.Close()

	reopened, err := NewRunStore(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load("keep")
	if err != nil || got == nil {
		t.Errorf("Load after reopen = %v, %v", got, err)
	}
}

func TestExportToJSON(t *testing.T) {
	store := newTestStore(t)
	if err := store.Record(NewRunRecord(sampleOutcome("exp", time.Now()), "openai", "m", nil)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "run.json")
	if err := store.ExportToJSON("exp", path); err != nil {
		t.Fatalf("ExportToJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc["selected"] != "Curry" {
		t.Errorf("selected = %v", doc["selected"])
	}
	if entries, _ := doc["transcript"].([]any); len(entries) != 3 {
		t.Errorf("transcript entries = %v", doc["transcript"])
	}

	if err := store.ExportToJSON("missing", path); err == nil {
		t.Error("expected error exporting a missing run")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"crapshack", "crapshack"},
		{"a/b c", "a-b-c"},
		{"..", "run"},
		{"", "run"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func ids(runs []RunRecord) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}
