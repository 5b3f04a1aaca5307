package functions

import (
	"context"
	"fmt"

	"mealwheel/config"
	"mealwheel/model"
)

// Handler executes one catalog function with already validated arguments.
type Handler func(ctx context.Context, args map[string]any) (Result, error)

// Result is what a handler produced. Content is the JSON text appended to the
// transcript as the function message; Value carries the typed payload for
// the orchestration (a user id string, or []mealwheel.Dish).
type Result struct {
	Name    string
	Content string
	Value   any
}

// Dispatcher routes directives to handlers by exact function name.
type Dispatcher struct {
	catalog  *Catalog
	handlers map[string]Handler
}

// NewDispatcher pairs every catalog entry with a handler. Missing or extra
// handlers are configuration errors.
func NewDispatcher(catalog *Catalog, handlers map[string]Handler) (*Dispatcher, error) {
	for _, name := range catalog.Names() {
		if handlers[name] == nil {
			return nil, fmt.Errorf("no handler for function %q", name)
		}
	}
	for name := range handlers {
		if _, ok := catalog.Lookup(name); !ok {
			return nil, fmt.Errorf("handler %q has no catalog entry", name)
		}
	}

	hs := make(map[string]Handler, len(handlers))
	for name, h := range handlers {
		hs[name] = h
	}
	return &Dispatcher{catalog: catalog, handlers: hs}, nil
}

// Catalog returns the catalog the dispatcher serves.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Dispatch parses and validates the directive's arguments and invokes the
// matching handler. Handler errors are returned unchanged; nothing is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.FunctionCall) (Result, error) {
	schema, ok := d.catalog.Schema(call.Name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", model.ErrUnknownFunction, call.Name)
	}

	args, err := call.ParseArguments()
	if err != nil {
		return Result{}, fmt.Errorf("%w: arguments for %s: %v", model.ErrParseFailure, call.Name, err)
	}

	if err := schema.Validate(args); err != nil {
		return Result{}, err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Dispatcher] Calling %s with %s", call.Name, call.Arguments)
	}

	res, err := d.handlers[call.Name](ctx, args)
	if err != nil {
		return Result{}, err
	}
	res.Name = call.Name
	return res, nil
}
