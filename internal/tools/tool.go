package tools

import (
	"context"
	"fmt"
	"sort"
)

// Tool is a capability a plan step can invoke. Execute receives the
// step's args as a JSON object string and returns the raw result.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, input string) (string, error)
}

// Registry is the name-to-capability lookup used by the executor.
type Registry struct {
	Tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		Tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.Tools[t.Name()] = t
}

// Get returns nil when no tool is registered under name.
func (r *Registry) Get(name string) Tool {
	return r.Tools[name]
}

// Describe lists every registered tool as "- name: description" lines
// in a stable order, for embedding in the planner prompt.
func (r *Registry) Describe() []string {
	names := make([]string, 0, len(r.Tools))
	for name := range r.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("- %s: %s", name, r.Tools[name].Description()))
	}
	return lines
}
