package provider

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"mealwheel/model"
)

// ToOpenAIMessages converts the transcript to OpenAI chat messages.
//
// An assistant message carrying a directive becomes an assistant message
// with one function tool call; a function-role message becomes the matching
// tool message (tool_call_id = CallID).
//
// Example:
//
//	msgs := ToOpenAIMessages([]model.Message{
//	    {Role: "user", Content: "Pick a dish for crapshack"},
//	    {Role: "assistant", Call: &model.FunctionCall{ID: "call_1", Name: "getMealWheelUserId", Arguments: `{"name":"crapshack"}`}},
//	    {Role: "function", Name: "getMealWheelUserId", CallID: "call_1", Content: `{"id":"42"}`},
//	})
func ToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))

		case model.RoleAssistant:
			if msg.Call == nil {
				result = append(result, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: msg.Call.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      msg.Call.Name,
							Arguments: argumentsOrEmpty(msg.Call.Arguments),
						},
					},
				}},
			}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})

		case model.RoleFunction:
			result = append(result, openai.ToolMessage(msg.Content, msg.CallID))

		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

// fromOpenAIMessage extracts the first directive, or the content when the
// model answered in text.
func fromOpenAIMessage(msg openai.ChatCompletionMessage) model.TurnResult {
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == "" {
			continue
		}
		return model.TurnResult{Call: &model.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}}
	}
	return model.TurnResult{Content: msg.Content}
}

// ToAnthropicMessages converts the transcript to Anthropic format.
// Returns the message array and any system prompt found.
//
// Directives become tool_use blocks in an assistant message and function
// results become tool_result blocks in a user message, which is how the
// messages API pairs them.
func ToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			// Anthropic uses a separate system parameter, not in messages array
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})

		case model.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			if msg.Call != nil {
				input := json.RawMessage(argumentsOrEmpty(msg.Call.Arguments))
				blocks = append(blocks, anthropic.NewToolUseBlock(msg.Call.ID, input, msg.Call.Name))
			}
			if len(blocks) == 0 {
				continue
			}
			anthropicMsgs = append(anthropicMsgs, anthropic.NewAssistantMessage(blocks...))

		case model.RoleFunction:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewToolResultBlock(msg.CallID, msg.Content, false)),
			)

		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}

	return anthropicMsgs, systemBlocks
}

// fromAnthropicContent returns the first tool_use block as a directive,
// otherwise the concatenated text.
func fromAnthropicContent(content []anthropic.ContentBlockUnion) model.TurnResult {
	var text string
	for _, block := range content {
		switch variant := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			return model.TurnResult{Call: &model.FunctionCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: string(variant.Input),
			}}
		case anthropic.TextBlock:
			text += variant.Text
		}
	}
	return model.TurnResult{Content: text}
}

// ToOllamaMessages converts the transcript to Ollama messages. Function
// results are sent with the "tool" role and the function name.
func ToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleFunction:
			result = append(result, api.Message{
				Role:     "tool",
				Content:  msg.Content,
				ToolName: msg.Name,
			})

		case model.RoleAssistant:
			out := api.Message{Role: msg.Role, Content: msg.Content}
			if msg.Call != nil {
				var args map[string]any
				// Arguments were validated before the directive was appended.
				_ = json.Unmarshal([]byte(argumentsOrEmpty(msg.Call.Arguments)), &args)
				out.ToolCalls = []api.ToolCall{{
					Function: api.ToolCallFunction{
						Name:      msg.Call.Name,
						Arguments: args,
					},
				}}
			}
			result = append(result, out)

		default:
			result = append(result, api.Message{Role: msg.Role, Content: msg.Content})
		}
	}
	return result
}

// fromOllamaMessage extracts the first tool call. Ollama does not assign
// call ids, so one is generated to keep the transcript pairing intact.
func fromOllamaMessage(msg api.Message) (model.TurnResult, error) {
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name == "" {
			continue
		}
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil {
			return model.TurnResult{}, err
		}
		if tc.Function.Arguments == nil {
			args = []byte("{}")
		}
		return model.TurnResult{Call: &model.FunctionCall{
			ID:        "call_" + uuid.NewString(),
			Name:      tc.Function.Name,
			Arguments: string(args),
		}}, nil
	}
	return model.TurnResult{Content: msg.Content}, nil
}

func argumentsOrEmpty(args string) string {
	if args == "" {
		return "{}"
	}
	return args
}
