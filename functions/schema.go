package functions

import (
	"bytes"
	"encoding/json"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"mealwheel/model"
)

// ArgumentSchema is a function's input schema compiled for validation.
// Schemas are closed: a property the function does not declare is rejected.
type ArgumentSchema struct {
	name   string
	schema *jsonschema.Schema
}

// CompileArgumentSchema compiles a function's input schema. A raw schema on
// the tool takes precedence over the structured one, as it does on the wire.
func CompileArgumentSchema(tool mcptypes.Tool) (*ArgumentSchema, error) {
	name := tool.Name
	raw := []byte(tool.RawInputSchema)
	if len(raw) == 0 {
		input := tool.InputSchema
		if input.Type == "" {
			input.Type = "object"
		}
		var err error
		if raw, err = json.Marshal(input); err != nil {
			return nil, fmt.Errorf("failed to encode schema for %s: %w", name, err)
		}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema for %s: %w", name, err)
	}
	if obj, ok := doc.(map[string]any); ok {
		if _, set := obj["additionalProperties"]; !set {
			obj["additionalProperties"] = false
		}
	}

	url := "mem://functions/" + name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema for %s: %w", name, err)
	}

	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid schema for %s: %w", name, err)
	}
	return &ArgumentSchema{name: name, schema: sch}, nil
}

// Validate checks parsed arguments against the schema. Failures wrap
// model.ErrSchemaViolation.
func (s *ArgumentSchema) Validate(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	if err := s.schema.Validate(args); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrSchemaViolation, s.name, err)
	}
	return nil
}
