package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/model"
)

const anthropicMaxTokens = 1024

// AnthropicProvider implements the Provider interface using Anthropic's official API.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//   - model: Initial model to use (default: "claude-sonnet-4-5-20250929")
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(baseURL, apiKey, model string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: baseURL,
	}, nil
}

// SendTurn implements Provider.SendTurn with a single Messages.New call.
func (p *AnthropicProvider) SendTurn(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.TurnOptions) (model.TurnResult, error) {
	anthropicMessages, systemPrompt := ToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: anthropicMaxTokens, // Required by Anthropic API
	}
	if len(systemPrompt) > 0 {
		params.System = systemPrompt
	}
	if len(tools) > 0 {
		params.Tools = functions.ToAnthropicTools(tools)
		if opts.ForceAuto {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{
				OfAuto: &anthropic.ToolChoiceAutoParam{},
			}
		}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return model.TurnResult{}, fmt.Errorf("%w: Anthropic messages: %w", model.ErrNetworkFailure, err)
	}

	if len(msg.Content) == 0 {
		return model.TurnResult{NoChoice: true}, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Anthropic stop_reason=%s blocks=%d", msg.StopReason, len(msg.Content))
	}

	return fromAnthropicContent(msg.Content), nil
}

// GetModel implements Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// SetModel implements Provider.SetModel.
func (p *AnthropicProvider) SetModel(model string) {
	p.model = anthropic.Model(model)
}

// Ping implements Provider.Ping with a minimal request, as Anthropic has no
// health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
