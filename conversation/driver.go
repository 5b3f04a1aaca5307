// Package conversation runs a MealWheel conversation: it sends the
// transcript to the chat provider, executes the function the model asks
// for, feeds the result back, and finally picks a main dish at random.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/model"
)

// Driver sends one turn at a time to a provider. It holds no conversation
// state; the caller owns the transcript.
type Driver struct {
	provider model.Provider
	catalog  *functions.Catalog
}

func NewDriver(provider model.Provider, catalog *functions.Catalog) *Driver {
	return &Driver{provider: provider, catalog: catalog}
}

// SendTurn sends the transcript and the whole catalog and returns either a
// directive or terminal content.
func (d *Driver) SendTurn(ctx context.Context, transcript model.Transcript, opts model.TurnOptions) (model.TurnResult, error) {
	turn, err := d.provider.SendTurn(ctx, transcript.Messages(), d.catalog.Tools(), opts)
	if err != nil {
		return model.TurnResult{}, err
	}

	if turn.NoChoice {
		return model.TurnResult{}, fmt.Errorf("%w: response has no choices", model.ErrMalformedResponse)
	}

	if turn.Call != nil {
		if turn.Call.Name == "" {
			return model.TurnResult{}, fmt.Errorf("%w: directive without a function name", model.ErrMalformedResponse)
		}
		if turn.Call.Arguments != "" && !json.Valid([]byte(turn.Call.Arguments)) {
			return model.TurnResult{}, fmt.Errorf("%w: arguments for %s are not valid JSON", model.ErrMalformedResponse, turn.Call.Name)
		}
	}

	if config.DebugLog != nil {
		if turn.Call != nil {
			config.DebugLog.Printf("[Driver] Model requested %s(%s)", turn.Call.Name, turn.Call.Arguments)
		} else {
			config.DebugLog.Printf("[Driver] Model answered without a function call (%d chars)", len(turn.Content))
		}
	}

	return turn, nil
}

// ExpectCall is SendTurn for protocol steps that need a directive; terminal
// content is reported as a malformed response.
func (d *Driver) ExpectCall(ctx context.Context, transcript model.Transcript, opts model.TurnOptions) (model.FunctionCall, error) {
	turn, err := d.SendTurn(ctx, transcript, opts)
	if err != nil {
		return model.FunctionCall{}, err
	}
	if turn.IsTerminal() {
		return model.FunctionCall{}, &UnexpectedContentError{Content: turn.Content}
	}
	return *turn.Call, nil
}

// UnexpectedContentError is returned by ExpectCall when the model answered
// in text instead of calling a function.
type UnexpectedContentError struct {
	Content string
}

func (e *UnexpectedContentError) Error() string {
	return fmt.Sprintf("%v: expected a function call, model answered %q", model.ErrMalformedResponse, truncate(e.Content, 120))
}

func (e *UnexpectedContentError) Unwrap() error {
	return model.ErrMalformedResponse
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
