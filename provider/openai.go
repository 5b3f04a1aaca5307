package provider

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mealwheel/config"
	"mealwheel/functions"
	"mealwheel/model"
)

// OpenAIProvider implements the Provider interface using OpenAI's official API.
// It is also used for OpenRouter, which is OpenAI-compatible.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
	name    string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Initial model to use (default: "gpt-4o-mini")
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newOpenAICompatible("OpenAI", baseURL, apiKey, model), nil
}

// NewOpenRouterProvider creates an OpenAI-compatible provider pointed at OpenRouter.
func NewOpenRouterProvider(baseURL, apiKey, model string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	if model == "" {
		model = "openai/gpt-4o-mini"
	}
	return newOpenAICompatible("OpenRouter", baseURL, apiKey, model), nil
}

func newOpenAICompatible(name, baseURL, apiKey, model string) *OpenAIProvider {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // failures surface to the caller, never retried
	)

	return &OpenAIProvider{
		client:  client,
		model:   model,
		baseURL: baseURL,
		name:    name,
	}
}

// SendTurn implements Provider.SendTurn with a single non-streaming request.
func (p *OpenAIProvider) SendTurn(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, opts model.TurnOptions) (model.TurnResult, error) {
	params := openai.ChatCompletionNewParams{
		Messages: ToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}

	if len(tools) > 0 {
		params.Tools = functions.ToOpenAITools(tools)
		// One directive per turn
		params.ParallelToolCalls = openai.Bool(false)
		if opts.ForceAuto {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String("auto"),
			}
		}
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.TurnResult{}, fmt.Errorf("%w: %s chat completion: %w", model.ErrNetworkFailure, p.name, err)
	}

	if len(completion.Choices) == 0 {
		return model.TurnResult{NoChoice: true}, nil
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] %s finish_reason=%s tool_calls=%d", p.name,
			completion.Choices[0].FinishReason, len(completion.Choices[0].Message.ToolCalls))
	}

	return fromOpenAIMessage(completion.Choices[0].Message), nil
}

// GetModel implements Provider.GetModel.
func (p *OpenAIProvider) GetModel() string {
	return p.model
}

// SetModel implements Provider.SetModel.
func (p *OpenAIProvider) SetModel(model string) {
	p.model = model
}

// Ping implements Provider.Ping by attempting to list models.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", p.name, err)
	}
	return nil
}
