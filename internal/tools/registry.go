// Package tools defines the closed set of capabilities the conversation
// agent may invoke and the registry that dispatches to them.
//
// The registry boundary is an error firewall: a tool that returns an
// error or panics produces an error-describing content string, never a
// failure of the enclosing turn. The model reads that string like any
// other tool result and can recover on its next generation.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/halvard/scout/internal/log"
)

// Tool is one invocable capability. Arguments arrive as decoded JSON,
// so values are the usual any-typed shapes (string, float64, ...).
type Tool interface {
	Name() string
	Run(ctx context.Context, args map[string]any) (string, error)
}

// Registry holds the closed tool set. It is populated once at startup
// and read-only afterwards.
type Registry struct {
	tools  map[string]Tool
	logger log.Logger
}

// NewRegistry validates and indexes the given tools. Registration fails
// on an empty or duplicate name so wiring mistakes surface at startup.
func NewRegistry(logger log.Logger, toolset ...Tool) (*Registry, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	tools := make(map[string]Tool, len(toolset))
	for _, t := range toolset {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		tools[name] = t
	}

	return &Registry{tools: tools, logger: logger}, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool and always returns content. Unknown names,
// tool errors, and tool panics all become descriptive result text.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (content string) {
	tool, ok := r.tools[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return fmt.Sprintf("Tool %s not found", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", rec)
			content = fmt.Sprintf("Tool %s failed: %v", name, rec)
		}
	}()

	result, err := tool.Run(ctx, args)
	if err != nil {
		r.logger.Warn("tool returned error", "tool", name, "error", err)
		return fmt.Sprintf("Tool %s failed: %v", name, err)
	}
	return result
}
