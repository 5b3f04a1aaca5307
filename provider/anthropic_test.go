package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealwheel/model"
	"mealwheel/provider/testutil"
)

func anthropicServer(t *testing.T, status int, body string, requests *[]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if requests != nil {
			*requests = append(*requests, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnthropicSendTurnToolUse(t *testing.T) {
	body := `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [
    {"type": "text", "text": "Looking that up."},
    {"type": "tool_use", "id": "toolu_1", "name": "getMealWheelUserId", "input": {"name": "crapshack"}}
  ],
  "stop_reason": "tool_use",
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`
	var requests []map[string]any
	srv := anthropicServer(t, http.StatusOK, body, &requests)

	p, err := NewAnthropicProvider(srv.URL, "test-key", "claude-test")
	if err != nil {
		t.Fatalf("NewAnthropicProvider() error = %v", err)
	}

	turn, err := p.SendTurn(context.Background(), testutil.FunctionRoundTrip(),
		[]mcptypes.Tool{testutil.LookupTool()}, model.TurnOptions{ForceAuto: true})
	if err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}
	if turn.Call == nil {
		t.Fatal("expected a directive")
	}
	if turn.Call.ID != "toolu_1" || turn.Call.Name != "getMealWheelUserId" {
		t.Errorf("call = %+v", turn.Call)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(turn.Call.Arguments), &args); err != nil || args["name"] != "crapshack" {
		t.Errorf("arguments = %s (%v)", turn.Call.Arguments, err)
	}

	req := requests[0]
	if req["model"] != "claude-test" {
		t.Errorf("model = %v", req["model"])
	}
	if _, ok := req["system"]; !ok {
		t.Error("system prompt not sent")
	}
	choice, _ := req["tool_choice"].(map[string]any)
	if choice["type"] != "auto" {
		t.Errorf("tool_choice = %v, want auto", req["tool_choice"])
	}
}

func TestAnthropicSendTurnText(t *testing.T) {
	body := `{
  "id": "msg_2",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [{"type": "text", "text": "Enjoy "}, {"type": "text", "text": "dinner."}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`
	srv := anthropicServer(t, http.StatusOK, body, nil)
	p, _ := NewAnthropicProvider(srv.URL, "test-key", "claude-test")

	turn, err := p.SendTurn(context.Background(), testutil.SingleUserMessage("pick"), nil, model.TurnOptions{})
	if err != nil {
		t.Fatalf("SendTurn() error = %v", err)
	}
	if !turn.IsTerminal() || turn.Content != "Enjoy dinner." {
		t.Errorf("turn = %+v", turn)
	}
}

func TestAnthropicSendTurnServerError(t *testing.T) {
	srv := anthropicServer(t, http.StatusBadRequest,
		`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, nil)
	p, _ := NewAnthropicProvider(srv.URL, "test-key", "claude-test")

	_, err := p.SendTurn(context.Background(), testutil.SingleUserMessage("pick"), nil, model.TurnOptions{})
	if !errors.Is(err, model.ErrNetworkFailure) {
		t.Errorf("error = %v, want ErrNetworkFailure", err)
	}
}
