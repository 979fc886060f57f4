// Package agent binds a chat model to the primitive catalog.
//
// An Agent sends exactly one user turn. The model may answer with tool
// calls; each call is checked against the allowed tool set, executed through
// the catalog registry and its repr (or exception text) is fed back, until the
// model answers with text. Tool failures are reported to the model and never
// abort the run; transport failures are returned unchanged.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"interpagent/internal/llm"
	"interpagent/internal/logging"
	"interpagent/internal/tools"
)

// DefaultInstructions tell the model to act as the interpreter restricted to
// the catalog.
const DefaultInstructions = "You are a python interpreter itself, " +
	"you can only use given built-in functions to answer user questions. " +
	"Return only the printed output of the code execution. " +
	"Even if the code has errors, return only the printed output."

var (
	// ErrToolNotAllowed is reported to the model for a call outside the allowed set.
	ErrToolNotAllowed = errors.New("tool not allowed")

	// ErrToolRoundsExceeded is returned when the model keeps requesting tools.
	ErrToolRoundsExceeded = errors.New("tool call rounds exceeded")
)

// Config holds configuration for the agent.
type Config struct {
	// Instructions is the system prompt.
	Instructions string

	// MaxToolRounds limits model turns that request tools.
	MaxToolRounds int

	// ToolTimeout is the maximum time for a single tool execution.
	ToolTimeout time.Duration
}

// DefaultConfig returns the defaults used when no file overrides them.
func DefaultConfig() Config {
	return Config{
		Instructions:  DefaultInstructions,
		MaxToolRounds: 8,
		ToolTimeout:   30 * time.Second,
	}
}

// Agent is a chat agent with a fixed instruction string and tool set.
type Agent struct {
	client   llm.Client
	registry *tools.Registry
	defs     []tools.Definition
	allowed  map[string]bool
	config   Config
}

// Result holds the outcome of one run.
type Result struct {
	// RunID correlates the run's audit events.
	RunID string

	// Response is the model's final text.
	Response string

	// Rounds is the number of tool-call rounds.
	Rounds int

	// ToolCallsExecuted counts calls that reached the registry.
	ToolCallsExecuted int

	// ToolErrors counts calls whose primitive raised an exception.
	ToolErrors int

	// InvalidCalls counts calls refused before any primitive ran: names
	// outside the allowed set and arguments the registry could not bind.
	InvalidCalls int

	// Usage sums token usage over all model turns.
	Usage llm.UsageMetadata

	// Duration is how long the run took.
	Duration time.Duration
}

// New creates an agent. Every allowed name must be registered.
func New(client llm.Client, registry *tools.Registry, allowed []string, cfg Config) (*Agent, error) {
	defs, err := registry.Definitions(allowed)
	if err != nil {
		return nil, fmt.Errorf("build tool definitions: %w", err)
	}
	if cfg.Instructions == "" {
		cfg.Instructions = DefaultInstructions
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = DefaultConfig().MaxToolRounds
	}
	if cfg.ToolTimeout <= 0 {
		cfg.ToolTimeout = DefaultConfig().ToolTimeout
	}

	set := make(map[string]bool, len(allowed))
	for _, tool := range registry.GetMultiple(allowed) {
		set[tool.Name] = true
	}
	logging.Agent("Agent created: model=%s tools=%d max_tool_rounds=%d", client.Model(), len(defs), cfg.MaxToolRounds)

	return &Agent{
		client:   client,
		registry: registry,
		defs:     defs,
		allowed:  set,
		config:   cfg,
	}, nil
}

// Run sends query as the single user turn and returns the model's answer.
func (a *Agent) Run(ctx context.Context, query string) (string, error) {
	res, err := a.Process(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Response, nil
}

// Process is Run with run metadata.
func (a *Agent) Process(ctx context.Context, query string) (result *Result, err error) {
	start := time.Now()
	result = &Result{RunID: uuid.NewString()}
	audit := logging.AuditWithRun(result.RunID)
	audit.RunStart(len(query))
	defer func() {
		result.Duration = time.Since(start)
		audit.RunEnd(result.Duration.Milliseconds(), result.Rounds, err)
	}()

	chat, err := a.client.StartChat(a.config.Instructions, a.defs)
	if err != nil {
		return result, err
	}

	resp, err := a.turn(ctx, audit, result, func() (*llm.Response, error) {
		return chat.Send(ctx, query)
	})
	if err != nil {
		return result, err
	}

	for len(resp.ToolCalls) > 0 {
		if result.Rounds >= a.config.MaxToolRounds {
			logging.AgentWarn("Max tool rounds reached: %d", a.config.MaxToolRounds)
			return result, fmt.Errorf("%w: %d", ErrToolRoundsExceeded, a.config.MaxToolRounds)
		}
		result.Rounds++

		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			results = append(results, a.executeToolCall(ctx, audit, result, call))
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		resp, err = a.turn(ctx, audit, result, func() (*llm.Response, error) {
			return chat.SendToolResults(ctx, results)
		})
		if err != nil {
			return result, err
		}
	}

	result.Response = resp.Text
	logging.Agent("Run complete: %d rounds, %d tool calls, %v", result.Rounds, result.ToolCallsExecuted, time.Since(start))
	return result, nil
}

// turn performs one model round trip and accounts for it.
func (a *Agent) turn(ctx context.Context, audit *logging.AuditLogger, result *Result, send func() (*llm.Response, error)) (*llm.Response, error) {
	start := time.Now()
	resp, err := send()
	if err != nil {
		audit.LLMCall(a.client.Model(), time.Since(start).Milliseconds(), 0, err)
		return nil, err
	}
	audit.LLMCall(a.client.Model(), time.Since(start).Milliseconds(), len(resp.ToolCalls), nil)
	result.Usage.InputTokens += resp.Usage.InputTokens
	result.Usage.OutputTokens += resp.Usage.OutputTokens
	result.Usage.TotalTokens += resp.Usage.TotalTokens
	return resp, nil
}

// executeToolCall runs one call. Every outcome becomes a tool result.
func (a *Agent) executeToolCall(ctx context.Context, audit *logging.AuditLogger, result *Result, call llm.ToolCall) llm.ToolResult {
	out := llm.ToolResult{ToolUseID: call.ID, Name: call.Name}

	if !a.allowed[call.Name] {
		audit.ToolRejected(call.Name)
		logging.AgentWarn("Rejected tool call outside the allowed set: %s", call.Name)
		out.Content = fmt.Sprintf("%v: %s", ErrToolNotAllowed, call.Name)
		out.IsError = true
		result.InvalidCalls++
		return out
	}

	toolCtx, cancel := context.WithTimeout(ctx, a.config.ToolTimeout)
	defer cancel()

	logging.AgentDebug("Executing tool: %s args=%s", call.Name, string(call.Arguments))
	start := time.Now()
	res, err := a.registry.ExecuteJSON(toolCtx, call.Name, call.Arguments)
	audit.ToolExec(call.Name, time.Since(start).Milliseconds(), err)
	result.ToolCallsExecuted++

	switch {
	case err == nil:
		out.Content = res.Text()
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		out.Content = fmt.Sprintf("TimeoutError: %s exceeded %v", call.Name, a.config.ToolTimeout)
		out.IsError = true
		result.ToolErrors++
	case tools.IsToolError(err):
		out.Content = err.Error()
		out.IsError = true
		result.ToolErrors++
	default:
		logging.AgentWarn("Registry refused call to %s: %v", call.Name, err)
		out.Content = err.Error()
		out.IsError = true
		result.InvalidCalls++
	}
	return out
}
