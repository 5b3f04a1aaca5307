// Package functions holds the function catalog exposed to the model and the
// dispatcher that executes a model's function-call directives.
//
// Catalog entries are mcp-go Tool values: a name, a description and a JSON
// schema for the arguments. The same entries are converted to each chat
// provider's tool format (see convert.go) and used to validate arguments
// before a handler runs.
package functions

import (
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Catalog is an immutable, ordered set of function specs. Each entry's
// argument schema is compiled once, when the catalog is built.
type Catalog struct {
	tools   []mcptypes.Tool
	schemas []*ArgumentSchema
	byName  map[string]int
}

// NewCatalog builds a catalog. Names must be non-empty and unique, and every
// input schema must compile.
func NewCatalog(tools ...mcptypes.Tool) (*Catalog, error) {
	c := &Catalog{
		tools:   make([]mcptypes.Tool, 0, len(tools)),
		schemas: make([]*ArgumentSchema, 0, len(tools)),
		byName:  make(map[string]int, len(tools)),
	}
	for _, tool := range tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("function spec with empty name")
		}
		if _, dup := c.byName[tool.Name]; dup {
			return nil, fmt.Errorf("duplicate function spec %q", tool.Name)
		}

		tool = cloneTool(tool)
		schema, err := CompileArgumentSchema(tool)
		if err != nil {
			return nil, err
		}

		c.byName[tool.Name] = len(c.tools)
		c.tools = append(c.tools, tool)
		c.schemas = append(c.schemas, schema)
	}
	return c, nil
}

// Tools returns deep copies of the specs in declaration order.
func (c *Catalog) Tools() []mcptypes.Tool {
	out := make([]mcptypes.Tool, len(c.tools))
	for i, t := range c.tools {
		out[i] = cloneTool(t)
	}
	return out
}

// Lookup finds a spec by exact, case-sensitive name. The result is a copy.
func (c *Catalog) Lookup(name string) (mcptypes.Tool, bool) {
	i, ok := c.byName[name]
	if !ok {
		return mcptypes.Tool{}, false
	}
	return cloneTool(c.tools[i]), true
}

// Schema returns the compiled argument schema of the named function.
func (c *Catalog) Schema(name string) (*ArgumentSchema, bool) {
	i, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return c.schemas[i], true
}

// Names returns the function names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tools))
	for i, t := range c.tools {
		names[i] = t.Name
	}
	return names
}

func (c *Catalog) Len() int {
	return len(c.tools)
}

func cloneTool(t mcptypes.Tool) mcptypes.Tool {
	if t.InputSchema.Properties != nil {
		props := make(map[string]any, len(t.InputSchema.Properties))
		for k, v := range t.InputSchema.Properties {
			props[k] = cloneValue(v)
		}
		t.InputSchema.Properties = props
	}
	if t.InputSchema.Required != nil {
		t.InputSchema.Required = append([]string(nil), t.InputSchema.Required...)
	}
	if t.RawInputSchema != nil {
		t.RawInputSchema = append([]byte(nil), t.RawInputSchema...)
	}

	a := &t.Annotations
	a.ReadOnlyHint = cloneBool(a.ReadOnlyHint)
	a.DestructiveHint = cloneBool(a.DestructiveHint)
	a.IdempotentHint = cloneBool(a.IdempotentHint)
	a.OpenWorldHint = cloneBool(a.OpenWorldHint)
	return t
}

// cloneValue copies the JSON-shaped values found in schema properties.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
