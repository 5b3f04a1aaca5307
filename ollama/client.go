package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

type Client struct {
	client *api.Client
	model  string
}

func NewClient(baseURL, model string) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client: api.NewClient(parsedURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Chat sends one non-streaming chat request with optional tool definitions
// and returns the assistant message. Tool calls from every response chunk
// are collected in order.
func (c *Client) Chat(ctx context.Context, messages []api.Message, tools []api.Tool) (api.Message, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   &stream,
	}

	var reply api.Message
	var content strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		if reply.Role == "" {
			reply.Role = resp.Message.Role
		}
		content.WriteString(resp.Message.Content)
		reply.ToolCalls = append(reply.ToolCalls, resp.Message.ToolCalls...)
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return api.Message{}, err
	}

	reply.Content = content.String()
	return reply, nil
}

func (c *Client) SetModel(model string) {
	c.model = model
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.client.Heartbeat(ctx)
}

// toolCallingModels is a curated list of model families and whether their
// Ollama builds support the tool calling API.
var toolCallingModels = map[string]bool{
	"qwen":      true, // qwen2.5, qwen3
	"llama3.1":  true,
	"llama3.2":  true, // 3b and above
	"llama3.3":  true,
	"mistral":   true, // mistral, mistral-nemo
	"command-r": true,
	"nemotron":  true,
	"granite3":  true,

	"llama3-gradient": false,
	"llama3":          false, // Original llama3 (not 3.1/3.2/3.3)
	"phi":             false,
	"gemma":           false,
	"codellama":       false,
	"deepseek":        false,
}

// orderedPrefixes lists the most specific prefixes first so that "llama3.2"
// is not matched as generic "llama3".
var orderedPrefixes = []string{
	"llama3.3", "llama3.2", "llama3.1",
	"llama3-gradient",
	"command-r", "qwen", "mistral", "nemotron", "granite3",
	"codellama",
	"llama3",
	"deepseek", "phi", "gemma",
}

// ModelSupportsToolCalling checks a model name against the known families.
// Unknown models are assumed not to support tools.
func ModelSupportsToolCalling(modelName string) bool {
	modelName = strings.ToLower(modelName)

	for _, prefix := range orderedPrefixes {
		if strings.HasPrefix(modelName, prefix) {
			if supported, exists := toolCallingModels[prefix]; exists {
				return supported
			}
		}
	}

	return false
}
