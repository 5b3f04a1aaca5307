package functions

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ToOpenAITools converts catalog specs to OpenAI function tools.
//
// Catalog entry (mcp.Tool) structure:
//
//	{
//	  "name": "getMealWheelUserId",
//	  "description": "...",
//	  "inputSchema": {"type": "object", "properties": {...}, "required": [...]}
//	}
//
// OpenAI structure:
//
//	{
//	  "type": "function",
//	  "function": {"name": "getMealWheelUserId", "description": "...", "parameters": {...}}
//	}
func ToOpenAITools(tools []mcptypes.Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, tool := range tools {
		params := openai.FunctionParameters{
			"type":       schemaType(tool.InputSchema),
			"properties": tool.InputSchema.Properties,
		}
		if len(tool.InputSchema.Required) > 0 {
			params["required"] = tool.InputSchema.Required
		}
		if tool.InputSchema.Defs != nil {
			params["$defs"] = tool.InputSchema.Defs
		}

		result[i] = openai.ChatCompletionFunctionTool(
			openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  params,
			},
		)
	}
	return result
}

// ToAnthropicTools converts catalog specs to Anthropic tool definitions.
func ToAnthropicTools(tools []mcptypes.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		// Type defaults to "object" when omitted
		inputSchema := anthropic.ToolInputSchemaParam{
			Properties: tool.InputSchema.Properties,
		}
		if len(tool.InputSchema.Required) > 0 {
			inputSchema.Required = tool.InputSchema.Required
		}
		if tool.InputSchema.Defs != nil {
			inputSchema.ExtraFields = map[string]any{
				"$defs": tool.InputSchema.Defs,
			}
		}

		result[i] = anthropic.ToolUnionParamOfTool(inputSchema, tool.Name)
		if tool.Description != "" {
			result[i].OfTool.Description = anthropic.String(tool.Description)
		}
	}
	return result
}

// ToOllamaTools converts catalog specs to Ollama tools.
func ToOllamaTools(tools []mcptypes.Tool) []api.Tool {
	ollamaTools := make([]api.Tool, 0, len(tools))
	for _, tool := range tools {
		ollamaTools = append(ollamaTools, api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  toOllamaParameters(tool.InputSchema),
			},
		})
	}
	return ollamaTools
}

func toOllamaParameters(inputSchema mcptypes.ToolInputSchema) api.ToolFunctionParameters {
	params := api.ToolFunctionParameters{
		Type:       schemaType(inputSchema),
		Required:   inputSchema.Required,
		Properties: make(map[string]api.ToolProperty),
	}
	if inputSchema.Defs != nil {
		params.Defs = inputSchema.Defs
	}
	for name, value := range inputSchema.Properties {
		params.Properties[name] = toOllamaProperty(value)
	}
	return params
}

func toOllamaProperty(value any) api.ToolProperty {
	prop := api.ToolProperty{}

	propMap, ok := value.(map[string]any)
	if !ok {
		// Round-trip through JSON for struct-typed schemas
		bytes, err := json.Marshal(value)
		if err != nil {
			return prop
		}
		if err := json.Unmarshal(bytes, &propMap); err != nil {
			return prop
		}
	}

	if types := propertyTypes(propMap["type"]); len(types) > 0 {
		prop.Type = api.PropertyType(types)
	}
	if desc, ok := propMap["description"].(string); ok {
		prop.Description = desc
	}
	if enum, ok := propMap["enum"].([]any); ok {
		prop.Enum = enum
	}
	if items, ok := propMap["items"]; ok {
		prop.Items = items
	}
	if anyOf, ok := propMap["anyOf"].([]any); ok {
		props := make([]api.ToolProperty, 0, len(anyOf))
		for _, item := range anyOf {
			props = append(props, toOllamaProperty(item))
		}
		prop.AnyOf = props
	}
	return prop
}

func schemaType(s mcptypes.ToolInputSchema) string {
	if s.Type == "" {
		return "object"
	}
	return s.Type
}
