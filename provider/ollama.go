package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/model"
	"mealwheel/ollama"
)

// OllamaProvider wraps ollama.Client to implement the Provider interface.
//
// Ollama ignores tool_choice; with tools present the model always decides
// on its own, so TurnOptions.ForceAuto has no effect here.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL. Defaults to "http://localhost:11434".
//   - model: The model name to use. Defaults to "llama3.1:latest".
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{client: client}, nil
}

// SendTurn implements Provider.SendTurn.
func (p *OllamaProvider) SendTurn(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.TurnOptions) (model.TurnResult, error) {
	reply, err := p.client.Chat(ctx, ToOllamaMessages(messages), functions.ToOllamaTools(tools))
	if err != nil {
		return model.TurnResult{}, fmt.Errorf("%w: Ollama chat: %w", model.ErrNetworkFailure, err)
	}

	if reply.Role == "" && reply.Content == "" && len(reply.ToolCalls) == 0 {
		return model.TurnResult{NoChoice: true}, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Ollama reply tool_calls=%d", len(reply.ToolCalls))
	}

	turn, err := fromOllamaMessage(reply)
	if err != nil {
		return model.TurnResult{}, fmt.Errorf("%w: Ollama tool call arguments: %v", model.ErrMalformedResponse, err)
	}
	return turn, nil
}

// GetModel implements Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}

// SetModel implements Provider.SetModel.
func (p *OllamaProvider) SetModel(model string) {
	p.client.SetModel(model)
}

// Ping implements Provider.Ping.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
