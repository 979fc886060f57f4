package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"interpagent/internal/logging"
	"interpagent/internal/pyval"
)

// Registry holds all catalog entries in registration order and provides
// lookup, enumeration and execution. It is thread-safe.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []*Tool

	// byCategory provides fast lookup by category.
	byCategory map[ToolCategory][]*Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		byCategory: make(map[ToolCategory][]*Tool),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool %q: %w", tool.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}

	// Set default priority if not specified
	if tool.Priority == 0 {
		tool.Priority = 50
	}
	if tool.Category == "" {
		tool.Category = CategoryGeneral
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool)
	r.byCategory[tool.Category] = append(r.byCategory[tool.Category], tool)

	logging.ToolsDebug("Registered tool: %s%s (category=%s, forwarding=%v)", tool.Name, tool.Signature, tool.Category, tool.Forwarding)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at init time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Resolve looks up a callable by catalog name, accepting the bare primitive
// name as well ("abs" finds "w_abs").
func (r *Registry) Resolve(name string) *Tool {
	if t := r.Get(name); t != nil {
		return t
	}
	if !strings.HasPrefix(name, ForwardPrefix) {
		return r.Get(ForwardPrefix + name)
	}
	return nil
}

// GetByCategory returns all tools in a category, sorted by priority
// (descending) and then registration order.
func (r *Registry) GetByCategory(category ToolCategory) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, len(r.byCategory[category]))
	copy(tools, r.byCategory[category])

	sort.SliceStable(tools, func(i, j int) bool {
		return tools[i].Priority > tools[j].Priority
	})

	return tools
}

// GetMultiple returns tools matching the given names.
// Missing tools are silently skipped.
func (r *Registry) GetMultiple(names []string) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, 0, len(names))
	for _, name := range names {
		if tool, ok := r.tools[name]; ok {
			result = append(result, tool)
		}
	}
	return result
}

// All returns all registered tools in registration order.
func (r *Registry) All() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Tool, len(r.order))
	copy(result, r.order)
	return result
}

// Names enumerates the catalog: the names of every forwarding tool that
// does not start with the private marker, in registration order. This is
// the tool set declared to the agent.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, tool := range r.order {
		if tool.Public() {
			names = append(names, tool.Name)
		}
	}
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions returns model-facing definitions for the named tools, in the
// order given. Unknown names are an error.
func (r *Registry) Definitions(names []string) ([]Definition, error) {
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		tool := r.Get(name)
		if tool == nil {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
		defs = append(defs, Definition{
			Name:        tool.Name,
			Description: tool.Description,
			Schema:      tool.Signature.Schema(tool.Description),
		})
	}
	return defs, nil
}

// Execute runs a tool by name with named arguments. Keys are bound in
// sorted order so var-keyword collection is deterministic.
// Returns ErrToolNotFound if the tool doesn't exist.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	values := make([]any, len(names))
	for i, k := range names {
		values[i] = args[k]
	}
	return r.ExecuteTool(ctx, tool, names, values)
}

// ExecuteJSON runs a tool with the raw JSON arguments of a model tool call.
// Argument order is preserved and integers stay integers.
func (r *Registry) ExecuteJSON(ctx context.Context, name string, raw []byte) (*ToolResult, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	var names []string
	var values []any
	if len(strings.TrimSpace(string(raw))) > 0 {
		decoded, err := pyval.DecodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
		if decoded != nil {
			d, ok := decoded.(*pyval.Dict)
			if !ok {
				return nil, ErrInvalidArgs
			}
			for _, kv := range d.Items() {
				names = append(names, kv[0].(string))
				values = append(values, kv[1])
			}
		}
	}
	return r.ExecuteTool(ctx, tool, names, values)
}

// ExecuteTool binds and runs a specific tool. Failures of the primitive are
// reported both in the result and as the returned error.
func (r *Registry) ExecuteTool(ctx context.Context, tool *Tool, names []string, values []any) (*ToolResult, error) {
	start := time.Now()

	bound, err := tool.Signature.Bind(tool.Name, names, values)
	if err != nil {
		return &ToolResult{
			ToolName:   tool.Name,
			Error:      err,
			DurationMs: time.Since(start).Milliseconds(),
		}, err
	}

	logging.ToolsDebug("Executing tool: %s", tool.Name)
	value, err := callGuarded(ctx, tool, bound)

	duration := time.Since(start)
	logging.ToolsDebug("Tool %s completed in %v (success=%v)", tool.Name, duration, err == nil)

	result := &ToolResult{
		ToolName:   tool.Name,
		Value:      value,
		Error:      err,
		DurationMs: duration.Milliseconds(),
	}
	if err == nil {
		result.Result = pyval.Repr(value)
	}
	return result, err
}

// callGuarded runs the primitive, turning a panic into a RuntimeError so a
// single call cannot take the process down.
func callGuarded(ctx context.Context, tool *Tool, bound []any) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			logging.Get(logging.CategoryTools).Errorw("Tool panicked", "tool", tool.Name, "panic", p)
			value, err = nil, pyval.Errorf(pyval.RuntimeError, "%s() failed: %v", tool.Name, p)
		}
	}()
	return tool.Call(ctx, bound)
}

// Call invokes a tool positionally, as a callable argument of another
// primitive would (map, filter, sorted's key).
func (r *Registry) Call(ctx context.Context, name string, args ...any) (any, error) {
	tool := r.Resolve(name)
	if tool == nil {
		return nil, pyval.Errorf(pyval.NameError, "name '%s' is not defined", name)
	}
	bound, err := tool.Signature.BindArgs(tool.Name, args)
	if err != nil {
		return nil, err
	}
	return tool.Call(ctx, bound)
}

// IsToolError reports whether err came from the tool itself (an interpreter
// exception or a cancelled call) rather than from the registry.
func IsToolError(err error) bool {
	var pe *pyval.Error
	return errors.As(err, &pe) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
