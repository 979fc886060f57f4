package logging

import (
	"go.uber.org/zap"
)

// AuditEventType names a structured audit event.
type AuditEventType string

const (
	// Run lifecycle
	AuditRunStart AuditEventType = "run_start"
	AuditRunEnd   AuditEventType = "run_end"

	// LLM API events
	AuditLLMRequest  AuditEventType = "llm_request"
	AuditLLMResponse AuditEventType = "llm_response"
	AuditLLMError    AuditEventType = "llm_error"

	// Tool execution
	AuditToolInvoke   AuditEventType = "tool_invoke"
	AuditToolComplete AuditEventType = "tool_complete"
	AuditToolError    AuditEventType = "tool_error"
	AuditToolRejected AuditEventType = "tool_rejected"
)

// AuditLogger writes audit events as structured entries in the audit
// category, each tagged with the run it belongs to.
type AuditLogger struct {
	runID string
}

// Audit returns an audit logger without run correlation.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithRun creates an audit logger scoped to a run.
func AuditWithRun(runID string) *AuditLogger {
	return &AuditLogger{runID: runID}
}

// Log writes an audit event with optional extra fields.
func (a *AuditLogger) Log(event AuditEventType, msg string, fields ...zap.Field) {
	l := Root().Named(string(CategoryAudit))
	base := []zap.Field{zap.String("event", string(event))}
	if a.runID != "" {
		base = append(base, zap.String("run_id", a.runID))
	}
	l.Info(msg, append(base, fields...)...)
}

// RunStart logs the start of a run.
func (a *AuditLogger) RunStart(queryLen int) {
	a.Log(AuditRunStart, "run started", zap.Int("query_len", queryLen))
}

// RunEnd logs the end of a run.
func (a *AuditLogger) RunEnd(durationMs int64, rounds int, err error) {
	a.Log(AuditRunEnd, "run finished",
		zap.Int64("dur_ms", durationMs),
		zap.Int("rounds", rounds),
		zap.Bool("success", err == nil),
		zap.NamedError("error", err))
}

// LLMCall logs one model round trip.
func (a *AuditLogger) LLMCall(model string, durationMs int64, toolCalls int, err error) {
	event := AuditLLMResponse
	if err != nil {
		event = AuditLLMError
	}
	a.Log(event, "llm call",
		zap.String("model", model),
		zap.Int64("dur_ms", durationMs),
		zap.Int("tool_calls", toolCalls),
		zap.NamedError("error", err))
}

// ToolExec logs a tool execution. err is the tool's failure, if any.
func (a *AuditLogger) ToolExec(toolName string, durationMs int64, err error) {
	event := AuditToolComplete
	if err != nil {
		event = AuditToolError
	}
	a.Log(event, "tool executed",
		zap.String("tool", toolName),
		zap.Int64("dur_ms", durationMs),
		zap.Bool("success", err == nil),
		zap.NamedError("error", err))
}

// ToolRejected logs a requested tool that is outside the allowed set.
func (a *AuditLogger) ToolRejected(toolName string) {
	a.Log(AuditToolRejected, "tool rejected", zap.String("tool", toolName))
}
