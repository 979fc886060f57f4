// Package tools provides the explicit operation catalog exposed to the agent.
//
// Every operation is a Tool registered by name into a Registry at startup.
// Forwarding tools (built with Forward) are the catalog proper: their names
// carry the reserved "w_" prefix and only they are enumerated as the agent's
// tool set. Other entries may live in the same registry for internal use but
// are never declared to the model.
//
// Architecture:
//
//	builtins.RegisterAll → Registry.Names() → agent tool set
//	model tool call → Registry.ExecuteJSON() → Signature.Bind() → Tool.Call()
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ForwardPrefix is the reserved prefix of every forwarding wrapper name.
const ForwardPrefix = "w_"

// PrivateMarker marks names that are never enumerated.
const PrivateMarker = "_"

// ToolCategory classifies tools for grouping and listing.
type ToolCategory string

const (
	// CategoryNumeric covers arithmetic: abs, divmod, pow, round, sum.
	CategoryNumeric ToolCategory = "/numeric"

	// CategoryConversion covers constructors and converters: int, str, bin.
	CategoryConversion ToolCategory = "/conversion"

	// CategoryCollection covers container constructors: list, dict, set.
	CategoryCollection ToolCategory = "/collection"

	// CategoryIteration covers iteration helpers: map, filter, zip, sorted.
	CategoryIteration ToolCategory = "/iteration"

	// CategoryIntrospection covers type and attribute inspection.
	CategoryIntrospection ToolCategory = "/introspection"

	// CategoryIO covers input, print and eval.
	CategoryIO ToolCategory = "/io"

	// CategoryGeneral is the default.
	CategoryGeneral ToolCategory = "/general"
)

// CallFunc is the underlying primitive. bound holds one value per signature
// parameter, in signature order (see Signature.Bind).
type CallFunc func(ctx context.Context, bound []any) (any, error)

// Tool is one catalog entry.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string

	// Description is the primitive's one-line documentation.
	Description string

	// Category groups the tool for listing.
	Category ToolCategory

	// Signature describes the accepted arguments.
	Signature Signature

	// Call runs the primitive with bound arguments.
	Call CallFunc

	// Forwarding is set by Forward only. It marks the entry as a wrapper
	// that belongs to the enumerated tool set.
	Forwarding bool

	// Priority orders tools within a category (default 50).
	Priority int
}

// Forward builds a forwarding wrapper: a tool that passes its bound
// arguments straight to call and returns whatever call returns.
func Forward(name, doc string, category ToolCategory, sig Signature, call CallFunc) *Tool {
	return &Tool{
		Name:        name,
		Description: doc,
		Category:    category,
		Signature:   sig,
		Call:        call,
		Forwarding:  true,
	}
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Call == nil {
		return ErrToolExecuteNil
	}
	if t.Forwarding && !strings.HasPrefix(strings.TrimLeft(t.Name, PrivateMarker), ForwardPrefix) {
		return ErrToolPrefix
	}
	return t.Signature.validate()
}

// Public reports whether the tool belongs to the enumerated tool set.
func (t *Tool) Public() bool {
	return t.Forwarding && !strings.HasPrefix(t.Name, PrivateMarker)
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// String renders the tool the way the tools listing shows it.
func (t *Tool) String() string {
	return t.Name + t.Signature.String() + " - " + t.Description
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Value is the primitive's return value.
	Value any

	// Result is the interpreter representation of Value.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}

// Text is what gets reported back to the model: the result's repr, or the
// exception text on failure.
func (r *ToolResult) Text() string {
	if r.Error != nil {
		return r.Error.Error()
	}
	return r.Result
}

// Definition is a tool as declared to a model or MCP client.
type Definition struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Parameters returns the input schema as a plain JSON object.
func (d Definition) Parameters() (map[string]any, error) {
	data, err := json.Marshal(d.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", d.Name, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal schema for %s: %w", d.Name, err)
	}
	return m, nil
}
