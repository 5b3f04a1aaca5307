package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Settings mirrors settings.toml.
type Settings struct {
	DataDirectory         string          `toml:"data_directory"`
	Provider              string          `toml:"provider"`
	Model                 string          `toml:"model,omitempty"`
	SystemPrompt          string          `toml:"system_prompt,omitempty"`
	UserName              string          `toml:"user_name"`
	MaxRounds             int             `toml:"max_rounds"`
	RequestTimeoutSeconds int             `toml:"request_timeout_seconds"`
	HistoryEnabled        bool            `toml:"history_enabled"`
	OpenAI                EndpointConfig  `toml:"openai"`
	Anthropic             EndpointConfig  `toml:"anthropic"`
	OpenRouter            EndpointConfig  `toml:"openrouter"`
	Ollama                OllamaConfig    `toml:"ollama"`
	MealWheel             MealWheelConfig `toml:"mealwheel"`
}

type EndpointConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

type OllamaConfig struct {
	Host string `toml:"host"`
}

type MealWheelConfig struct {
	BaseURL string `toml:"base_url"`
}

// Config is the resolved runtime configuration: settings.toml, then
// environment overrides, then credentials from the environment.
type Config struct {
	DataDirectory     string
	Provider          string
	Model             string
	SystemPrompt      string
	UserName          string
	MaxRounds         int
	RequestTimeout    time.Duration
	HistoryEnabled    bool
	OpenAIBaseURL     string
	AnthropicBaseURL  string
	OpenRouterBaseURL string
	OllamaHost        string
	MealWheelBaseURL  string

	// Read once at startup, never persisted.
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	OpenRouterAPIKey string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// BaseURL returns the chat endpoint for the configured provider.
func (c *Config) BaseURL() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIBaseURL
	case "anthropic":
		return c.AnthropicBaseURL
	case "openrouter":
		return c.OpenRouterBaseURL
	case "ollama":
		return c.OllamaHost
	default:
		return ""
	}
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("MEALWHEEL_PROVIDER"); p != "" {
		c.Provider = p
	}
	if m := os.Getenv("MEALWHEEL_MODEL"); m != "" {
		c.Model = m
	}
	if u := os.Getenv("MEALWHEEL_BASE_URL"); u != "" {
		c.MealWheelBaseURL = u
	}
	if dataDir := os.Getenv("MEALWHEEL_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if name := os.Getenv("MEALWHEEL_USER"); name != "" {
		c.UserName = name
	}
	if rounds := os.Getenv("MEALWHEEL_MAX_ROUNDS"); rounds != "" {
		if n, err := strconv.Atoi(rounds); err == nil && n > 0 {
			c.MaxRounds = n
		}
	}
}

func (c *Config) applySettings(s *Settings) {
	c.DataDirectory = s.DataDirectory
	c.Provider = s.Provider
	c.Model = s.Model
	c.SystemPrompt = s.SystemPrompt
	c.UserName = s.UserName
	c.HistoryEnabled = s.HistoryEnabled
	c.OpenAIBaseURL = s.OpenAI.BaseURL
	c.AnthropicBaseURL = s.Anthropic.BaseURL
	c.OpenRouterBaseURL = s.OpenRouter.BaseURL
	c.OllamaHost = s.Ollama.Host
	c.MealWheelBaseURL = s.MealWheel.BaseURL
	if s.MaxRounds > 0 {
		c.MaxRounds = s.MaxRounds
	}
	if s.RequestTimeoutSeconds > 0 {
		c.RequestTimeout = time.Duration(s.RequestTimeoutSeconds) * time.Second
	}
}

func (c *Config) validate(requireCredentials bool) error {
	switch c.Provider {
	case "openai", "anthropic", "openrouter", "ollama":
	default:
		return fmt.Errorf("unknown provider %q (expected openai, anthropic, openrouter or ollama)", c.Provider)
	}
	if c.MealWheelBaseURL == "" {
		return fmt.Errorf("mealwheel base_url is empty")
	}
	if requireCredentials && c.Provider != "ollama" && c.APIKey() == "" {
		return fmt.Errorf("missing API key for provider %s: set %s", c.Provider, apiKeyEnvVar(c.Provider))
	}
	return nil
}

func apiKeyEnvVar(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func CheckDebug() bool {
	debug := os.Getenv("MEALWHEEL_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log contains transcript content
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (MEALWHEEL_DEBUG=%s) ===", os.Getenv("MEALWHEEL_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load reads settings.toml (creating it from the template on first run),
// applies environment overrides and reads the provider credentials. A
// missing API key for the selected provider is an error.
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline is Load for commands that never talk to a chat provider
// (history, the MCP server); a missing API key is not an error.
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(requireCredentials bool) (*Config, error) {
	cfg := &Config{}
	cfg.applySettings(DefaultSettings())

	settings, err := LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	cfg.applySettings(settings)
	cfg.applyEnvOverrides()

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")

	if err := cfg.validate(requireCredentials); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
