// README: Tool registry; definitions are validated at registration and looked up by exact name.
package tools

import (
	"fmt"
	"regexp"
	"slices"
	"sync"

	"tripmate/internal/ai"
)

var toolNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,63}$`)

// Registry maps tool names to definitions. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register validates and adds a tool. Names are unique.
func (r *Registry) Register(t Tool) error {
	if !toolNamePattern.MatchString(t.Name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidTool, t.Name)
	}
	if t.Handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalidTool, t.Name)
	}
	if t.Description == "" {
		return fmt.Errorf("%w: %s has no description", ErrInvalidTool, t.Name)
	}
	if t.Schema == nil {
		t.Schema = &ai.Schema{Type: "object"}
	}
	if t.Schema.Type != "object" {
		return fmt.Errorf("%w: %s arguments must be an object schema", ErrInvalidTool, t.Name)
	}
	if err := checkSchema(t.Schema, t.Name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTool, err)
	}
	if t.InjectsUserID {
		if _, ok := t.Schema.Properties[UserIDKey]; !ok {
			return fmt.Errorf("%w: %s injects %s but does not declare it", ErrInvalidTool, t.Name, UserIDKey)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister panics on an invalid definition. Meant for static wiring at startup.
func (r *Registry) MustRegister(tools ...Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names lists tools in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Specs is the catalog handed to the reasoning step. Injected identity fields are hidden
// so the model never has to (or gets to) supply them.
func (r *Registry) Specs() []ai.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ai.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		params := t.Schema
		if t.InjectsUserID {
			params = withoutField(params, UserIDKey)
		}
		specs = append(specs, ai.ToolSpec{Name: t.Name, Description: t.Description, Parameters: params})
	}
	return specs
}

func withoutField(s *ai.Schema, field string) *ai.Schema {
	out := *s
	out.Properties = make(map[string]*ai.Schema, len(s.Properties))
	for k, v := range s.Properties {
		if k != field {
			out.Properties[k] = v
		}
	}
	out.Required = slices.DeleteFunc(slices.Clone(s.Required), func(k string) bool { return k == field })
	return &out
}
