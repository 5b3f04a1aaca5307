package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"mealwheel/functions"
	"mealwheel/mealwheel"
	"mealwheel/model"
	"mealwheel/provider/testutil"
)

const (
	usersFixture  = `[{"id":"7","userName":"ted"},{"id":"42","userName":"crapshack"}]`
	dishesFixture = `[
  {"id":"d1","name":"Lasagna","type":"main","minimumInterval":7,"last":"2023-06-01T18:30:00.000Z","suggestedAccompanimentTypeSpecs":[{"suggestedAccompanimentTypeEntityId":"bread","count":1}],"prepEffort":3,"prepTime":60,"cleanupEffort":4},
  {"id":"d2","name":"Garlic bread","type":"bread","minimumInterval":0,"last":null,"prepEffort":1,"prepTime":10,"cleanupEffort":1},
  {"id":"d3","name":"Curry","type":"main","minimumInterval":5,"last":null,"prepEffort":2,"prepTime":45,"cleanupEffort":2}
]`
)

// mealWheelServer serves the fixture users and dishes.
func mealWheelServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/users":
			_, _ = w.Write([]byte(usersFixture))
		case "/api/v1/dishes":
			if r.URL.Query().Get("id") != "42" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(dishesFixture))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRunner(t *testing.T, provider model.Provider, cfg RunnerConfig) *Runner {
	t.Helper()
	srv := mealWheelServer(t)
	client, err := mealwheel.NewClient(srv.URL, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	dispatcher, err := functions.NewMealWheelDispatcher(client)
	if err != nil {
		t.Fatalf("NewMealWheelDispatcher() error = %v", err)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(1, 2))
	}
	return NewRunner(provider, dispatcher, cfg)
}

func TestRunEndToEnd(t *testing.T) {
	provider := testutil.NewMockProvider("test-model",
		testutil.CallTurn("call_1", functions.GetUserIDFunction, `{"name":"crapshack"}`),
		testutil.CallTurn("call_2", functions.GetMainDishesFunction, `{"userId":"42"}`),
	)

	var events []Event
	runner := newTestRunner(t, provider, RunnerConfig{
		SystemPrompt: "You pick dinner.",
		Observer:     func(ev Event) { events = append(events, ev) },
	})

	out, err := runner.Run(context.Background(), "crapshack")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if out.UserID != "42" {
		t.Errorf("UserID = %q, want 42", out.UserID)
	}
	if len(out.MainDishes) != 2 {
		t.Fatalf("MainDishes = %d, want 2", len(out.MainDishes))
	}
	if name := out.Selected.Name; name != "Lasagna" && name != "Curry" {
		t.Errorf("Selected = %q, want Lasagna or Curry", name)
	}
	if out.RunID == "" {
		t.Error("RunID is empty")
	}
	if out.FinishedAt.Before(out.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}

	// system, user, directive, result, directive, result
	if len(out.Transcript) != 6 {
		t.Fatalf("transcript length = %d, want 6", len(out.Transcript))
	}
	if out.Transcript[1].Content != QuestionFor("crapshack") {
		t.Errorf("question = %q", out.Transcript[1].Content)
	}
	lookup := out.Transcript[3]
	if lookup.Role != model.RoleFunction || lookup.Name != functions.GetUserIDFunction ||
		lookup.CallID != "call_1" || lookup.Content != `{"id":"42"}` {
		t.Errorf("lookup result message = %+v", lookup)
	}

	var dishes []mealwheel.Dish
	if err := json.Unmarshal([]byte(out.Transcript[5].Content), &dishes); err != nil {
		t.Fatalf("dish result is not a JSON dish list: %v", err)
	}
	if len(dishes) != 2 || dishes[0].Last == nil || dishes[1].Last != nil {
		t.Errorf("dish result = %+v", dishes)
	}

	reqs := provider.Requests()
	if len(reqs) != 2 {
		t.Fatalf("provider saw %d turns, want 2 (selection is not sent back)", len(reqs))
	}
	if !reqs[0].Opts.ForceAuto || reqs[1].Opts.ForceAuto {
		t.Error("ForceAuto should be set on the first turn only")
	}
	if len(reqs[0].Tools) != 2 {
		t.Errorf("tools sent = %d, want 2", len(reqs[0].Tools))
	}
	if len(reqs[1].Messages) != 4 {
		t.Errorf("second turn carried %d messages, want 4", len(reqs[1].Messages))
	}

	wantKinds := []EventKind{
		EventTurnSent, EventFunctionCalled, EventFunctionResult,
		EventTurnSent, EventFunctionCalled, EventFunctionResult,
		EventDishPicked,
	}
	if len(events) != len(wantKinds) {
		t.Fatalf("events = %d, want %d", len(events), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if events[i].Kind != kind {
			t.Errorf("event %d = %s, want %s", i, events[i].Kind, kind)
		}
	}
	if events[5].Count != 2 {
		t.Errorf("dish result count = %d, want 2", events[5].Count)
	}
	if events[6].Detail != out.Selected.Name {
		t.Errorf("picked event = %q, selected %q", events[6].Detail, out.Selected.Name)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name    string
		turns   []testutil.Turn
		wantErr error
	}{
		{
			name:    "model answers in text",
			turns:   []testutil.Turn{testutil.ContentTurn("I can't help with that.")},
			wantErr: model.ErrMalformedResponse,
		},
		{
			name:    "provider failure",
			turns:   []testutil.Turn{testutil.ErrorTurn(model.ErrNetworkFailure)},
			wantErr: model.ErrNetworkFailure,
		},
		{
			name: "unknown user",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":"crapshak"}`),
			},
			wantErr: model.ErrNoMatch,
		},
		{
			name: "unknown function",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", "getMealWheelDishes", `{"id":"42"}`),
			},
			wantErr: model.ErrUnknownFunction,
		},
		{
			name: "arguments violate schema",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":42}`),
			},
			wantErr: model.ErrSchemaViolation,
		},
		{
			name: "arguments are not JSON",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":`),
			},
			wantErr: model.ErrMalformedResponse,
		},
		{
			name: "user has no main dishes",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", functions.GetMainDishesFunction, `{"userId":"7"}`),
			},
			wantErr: model.ErrEmptySelection,
		},
		{
			name: "round limit",
			turns: []testutil.Turn{
				testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":"crapshack"}`),
				testutil.CallTurn("c2", functions.GetUserIDFunction, `{"name":"crapshack"}`),
			},
			wantErr: model.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockProvider("test-model", tt.turns...)
			runner := newTestRunner(t, provider, RunnerConfig{MaxRounds: 2})

			out, err := runner.Run(context.Background(), "crapshack")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if out == nil || out.RunID == "" {
				t.Error("failed run should still return its partial outcome")
			}
			if provider.Remaining() != 0 {
				t.Errorf("%d scripted turns left unused", provider.Remaining())
			}
		})
	}
}

func TestRunNoMatchCarriesSuggestions(t *testing.T) {
	provider := testutil.NewMockProvider("test-model",
		testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":"crapshak"}`),
	)
	runner := newTestRunner(t, provider, RunnerConfig{})

	_, err := runner.Run(context.Background(), "crapshak")

	var noMatch *functions.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error = %v, want *functions.NoMatchError", err)
	}
	if len(noMatch.Suggestions) == 0 || noMatch.Suggestions[0] != "crapshack" {
		t.Errorf("Suggestions = %v, want crapshack first", noMatch.Suggestions)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	provider := testutil.NewMockProvider("test-model",
		testutil.CallTurn("c1", functions.GetUserIDFunction, `{"name":"crapshack"}`),
	)
	runner := newTestRunner(t, provider, RunnerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx, "crapshack"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
