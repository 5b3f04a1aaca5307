package config

const (
	DefaultMealWheelBaseURL = "https://tsmealwheel.herokuapp.com"
	DefaultUserName         = "crapshack"
	DefaultMaxRounds        = 4
)

func DefaultSettings() *Settings {
	return &Settings{
		DataDirectory:         "~/.local/share/mealwheel",
		Provider:              "openai",
		UserName:              DefaultUserName,
		MaxRounds:             DefaultMaxRounds,
		RequestTimeoutSeconds: 60,
		HistoryEnabled:        true,
		OpenAI:                EndpointConfig{BaseURL: "https://api.openai.com/v1"},
		Anthropic:             EndpointConfig{BaseURL: "https://api.anthropic.com"},
		OpenRouter:            EndpointConfig{BaseURL: "https://openrouter.ai/api/v1"},
		Ollama:                OllamaConfig{Host: "http://localhost:11434"},
		MealWheel:             MealWheelConfig{BaseURL: DefaultMealWheelBaseURL},
	}
}

func GenerateSettingsTemplate() string {
	return `# MealWheel Configuration
# Location: ~/.config/mealwheel/settings.toml
# This file uses TOML format: https://toml.io

# Directory where run history and the debug log are stored
data_directory = "~/.local/share/mealwheel"

# Chat provider: "openai", "anthropic", "openrouter" or "ollama"
# API keys are read from OPENAI_API_KEY, ANTHROPIC_API_KEY and OPENROUTER_API_KEY
provider = "openai"

# Model name (empty = provider default)
model = ""

# Optional system prompt prepended to every conversation
system_prompt = ""

# MealWheel user to pick a dish for (overridden by the first CLI argument)
user_name = "crapshack"

# Upper bound on model round trips before giving up
max_rounds = 4

# Timeout applied to each outbound call
request_timeout_seconds = 60

# Record every run in <data_directory>/history.db
history_enabled = true

[openai]
base_url = "https://api.openai.com/v1"

[anthropic]
base_url = "https://api.anthropic.com"

[openrouter]
base_url = "https://openrouter.ai/api/v1"

[ollama]
host = "http://localhost:11434"

[mealwheel]
base_url = "https://tsmealwheel.herokuapp.com"
`
}
