// Package provider implements model.Provider for the supported chat APIs.
//
// Every provider speaks the same small contract: send the whole transcript
// plus the function catalog, get back either one function-call directive or
// terminal content. The provider layer owns all conversions between the
// provider-agnostic model types and each SDK's request/response types (see
// conversions.go), so the conversation driver never sees SDK types.
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.OpenAIProvider implements it with openai-go (also used for OpenRouter)
//   - provider.AnthropicProvider implements it with anthropic-sdk-go
//   - provider.OllamaProvider implements it with the Ollama API client
//   - provider.NewProvider() creates providers from a Config
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    Model:  "gpt-4o-mini",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    // handle error
//	}
//	turn, err := p.SendTurn(ctx, messages, catalog.Tools(), model.TurnOptions{ForceAuto: true})
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Unused for Ollama
}
