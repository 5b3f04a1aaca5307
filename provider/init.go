package provider

import (
	"fmt"

	"mealwheel/config"
	"mealwheel/model"
	"mealwheel/ollama"
)

// FromConfig creates the provider selected in the application config,
// with its endpoint, model and credential.
func FromConfig(cfg *config.Config) (model.Provider, error) {
	providerType := MapProviderIDToType(cfg.Provider)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.BaseURL(),
		Model:   cfg.Model,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.Provider, err)
	}

	if providerType == ProviderTypeOllama && !ollama.ModelSupportsToolCalling(p.GetModel()) {
		// Not fatal: the model may still emit tool calls, but warn.
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Provider] Warning: Ollama model %s is not known to support tool calling", p.GetModel())
		}
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Provider] Using %s provider with model %s", cfg.Provider, p.GetModel())
	}

	return p, nil
}
