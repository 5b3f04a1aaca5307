package provider

import (
	"fmt"

	"mealwheel/model"
)

// NewProvider creates a provider based on configuration.
//
// Supported provider types:
//   - ProviderTypeOpenAI: OpenAI chat completions
//   - ProviderTypeOpenRouter: OpenRouter (OpenAI-compatible, different default URL)
//   - ProviderTypeAnthropic: Anthropic messages API
//   - ProviderTypeOllama: Local Ollama server
//
// Returns an error if the type is unknown or the provider-specific
// constructor fails (e.g., missing API key, invalid URL).
func NewProvider(cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a ProviderType.
// Unknown IDs are passed through as-is (NewProvider will reject them).
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	default:
		return ProviderType(id)
	}
}
