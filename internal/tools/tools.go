package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler executes one capability invocation. The returned string is handed
// verbatim back to the model as the tool output.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is an explicit capability descriptor. Registries are built from a
// registration list at session construction; there is no reflection over
// handlers.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Definition is the schema-only view of a tool, advertised to the remote
// assistant.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Call is one model-issued request to invoke a named capability.
type Call struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Result is the outcome of one call. Every Call produces exactly one Result,
// keyed by the originating call id.
type Result struct {
	CallID  string
	Output  string
	IsError bool
}

type Registry struct {
	byName  map[string]Tool
	ordered []string
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name)
	}
	r.byName[t.Name] = t
	r.ordered = append(r.ordered, t.Name)
	return nil
}

func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Definitions returns the advertised schemas in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.ordered))
	for _, name := range r.ordered {
		t := r.byName[name]
		defs = append(defs, Definition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return defs
}
