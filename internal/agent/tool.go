package agent

import (
	"context"
	"sort"
	"sync"
)

// Tool is one capability the agent can invoke on the model's behalf.
type Tool interface {
	// Name is the function name exposed to the model.
	Name() string
	// Description tells the model when to use the tool.
	Description() string
	// Parameters is the JSON-schema object describing the arguments.
	Parameters() map[string]any
	// Execute runs the tool. The returned string is handed back to the
	// model verbatim; user-facing failure text should be returned as
	// output, not as an error.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Registry holds the tools available to an agent run.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the registered tools as provider definitions, sorted
// by name for stable request payloads.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, ToolDefinition{
			Type: "function",
			Function: ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Function.Name < defs[j].Function.Name })
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
