package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts chat API implementations (OpenAI, Anthropic, Ollama)
// using the provider-agnostic types of this package.
//
// This interface lives in the model package (not provider) so that both the
// provider implementations and the conversation driver can depend on it
// without an import cycle.
type Provider interface {
	// SendTurn sends the whole transcript plus the function catalog and
	// returns the first choice: either a directive or terminal content.
	SendTurn(ctx context.Context, messages []Message, functions []mcptypes.Tool, opts TurnOptions) (TurnResult, error)

	// GetModel returns the model name used for API calls.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// TurnOptions tweaks a single request.
type TurnOptions struct {
	// ForceAuto sends an explicit "auto" function-selection mode.
	// The first turn sets it; later turns leave the choice to the API default.
	ForceAuto bool
}

// TurnResult is the first choice of one chat response. Exactly one of Call
// and Content is meaningful: Call != nil means the model wants a function.
type TurnResult struct {
	Call    *FunctionCall
	Content string

	// NoChoice is set by providers when the response carried no message at
	// all, so the driver can report it as malformed.
	NoChoice bool
}

// IsTerminal reports whether the model answered without a directive.
func (r TurnResult) IsTerminal() bool {
	return r.Call == nil
}
