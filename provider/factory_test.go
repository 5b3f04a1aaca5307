package provider

import (
	"fmt"
	"testing"

	"mealwheel/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantModel   string
	}{
		{
			name:      "ollama provider with defaults",
			config:    Config{Type: ProviderTypeOllama},
			wantModel: "llama3.1:latest",
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			wantModel: "llama3.1",
		},
		{
			name: "openai provider",
			config: Config{
				Type:   ProviderTypeOpenAI,
				APIKey: "test-key",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:   ProviderTypeOpenRouter,
				APIKey: "test-key",
				Model:  "anthropic/claude-3.5-haiku",
			},
			wantModel: "anthropic/claude-3.5-haiku",
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:   ProviderTypeAnthropic,
				Model:  "claude-sonnet-4-5-20250929",
				APIKey: "test-key",
			},
			wantModel: "claude-sonnet-4-5-20250929",
		},
		{
			name:        "openai without key",
			config:      Config{Type: ProviderTypeOpenAI},
			expectError: true,
		},
		{
			name: "unknown provider type",
			config: Config{
				Type:  ProviderType("unknown"),
				Model: "test",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := p.GetModel(); got != tt.wantModel {
				t.Errorf("GetModel() = %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"ollama", ProviderTypeOllama},
		{"openrouter", ProviderTypeOpenRouter},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"gemini", ProviderType("gemini")},
	}
	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// The factory returns concrete types callers can assert on.
func TestFactoryReturnsConcreteTypes(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Type: ProviderTypeOllama}, "*provider.OllamaProvider"},
		{Config{Type: ProviderTypeOpenAI, APIKey: "k"}, "*provider.OpenAIProvider"},
		{Config{Type: ProviderTypeOpenRouter, APIKey: "k"}, "*provider.OpenAIProvider"},
		{Config{Type: ProviderTypeAnthropic, APIKey: "k"}, "*provider.AnthropicProvider"},
	}

	for _, tt := range tests {
		p, err := NewProvider(tt.cfg)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.cfg.Type, err)
		}
		if got := fmt.Sprintf("%T", p); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.cfg.Type, got, tt.want)
		}
	}
}

func TestProvidersImplementInterface(t *testing.T) {
	var _ model.Provider = (*OllamaProvider)(nil)
	var _ model.Provider = (*OpenAIProvider)(nil)
	var _ model.Provider = (*AnthropicProvider)(nil)
}
