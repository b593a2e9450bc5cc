// Package tools exposes the course search capabilities to the language
// model behind a uniform describe-yourself / execute-with-arguments
// contract. Tools are stateless; provenance travels on return values, and
// the registry keeps a per-instance record of the most recent sources so
// one registry serves exactly one in-flight query.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Yates-Labs/lectern/internal/agent"
	"github.com/Yates-Labs/lectern/internal/rag"
)

// Tool is one capability the model can invoke: it can describe itself as a
// schema and execute with named arguments. Execution returns readable
// content plus the source citations backing it; failures are returned as
// errors and converted to content by the registry.
type Tool interface {
	Definition() agent.ToolSchema
	Execute(ctx context.Context, args map[string]any) (string, []rag.Source, error)
}

// Registry maps tool names to implementations and adapts them to the
// generation loop's runner contract. It records the sources of the most
// recent source-producing execution; use one Registry per in-flight query
// so concurrent queries never observe each other's provenance.
type Registry struct {
	mu          sync.Mutex
	tools       map[string]Tool
	order       []string
	lastSources []rag.Source
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(toolList ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, tool := range toolList {
		r.Register(tool)
	}
	return r
}

// Register adds a tool, keyed by its schema name. Registering a second tool
// under an existing name replaces the first.
func (r *Registry) Register(tool Tool) error {
	name := tool.Definition().Name
	if name == "" {
		return fmt.Errorf("tool must have a name in its definition")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
	return nil
}

// Definitions returns every registered tool schema in registration order.
func (r *Registry) Definitions() []agent.ToolSchema {
	r.mu.Lock()
	defer r.mu.Unlock()

	schemas := make([]agent.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Definition())
	}
	return schemas
}

// Execute runs a tool by name with raw JSON arguments. All failures come
// back as readable content so the model can react to them; nothing here
// raises a fault into the generation loop.
func (r *Registry) Execute(ctx context.Context, name, arguments string) string {
	r.mu.Lock()
	tool, ok := r.tools[name]
	r.mu.Unlock()

	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return fmt.Sprintf("Invalid arguments for tool '%s': %v", name, err)
		}
	}

	content, sources, err := tool.Execute(ctx, args)
	if err != nil {
		return err.Error()
	}

	if len(sources) > 0 {
		r.mu.Lock()
		r.lastSources = sources
		r.mu.Unlock()
	}

	return content
}

// CollectSources returns the provenance of the most recent source-producing
// tool execution, in result order.
func (r *Registry) CollectSources() []rag.Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	sources := make([]rag.Source, len(r.lastSources))
	copy(sources, r.lastSources)
	return sources
}

// ResetSources clears the recorded provenance.
func (r *Registry) ResetSources() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSources = nil
}

// stringArg extracts an optional string argument.
func stringArg(args map[string]any, key string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return ""
}

// intArg extracts an optional integer argument. JSON numbers decode as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) *int {
	switch value := args[key].(type) {
	case float64:
		n := int(value)
		return &n
	case int:
		n := value
		return &n
	default:
		return nil
	}
}
