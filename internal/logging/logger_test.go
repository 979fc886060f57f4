package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	Initialize(zap.New(core))
	t.Cleanup(func() { Initialize(nil) })
	return logs
}

func TestCategoriesAreNamedLoggers(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Boot("boot %d", 1)
	APIDebug("api %s", "call")
	ToolsDebug("Registered tool: %s", "w_abs")
	Agent("agent")
	MCP("mcp")

	entries := logs.All()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	wantNames := []string{"boot", "api", "tools", "agent", "mcp"}
	for i, e := range entries {
		if e.LoggerName != wantNames[i] {
			t.Errorf("entry %d: logger name %q, want %q", i, e.LoggerName, wantNames[i])
		}
	}
	if entries[2].Message != "Registered tool: w_abs" {
		t.Errorf("unexpected message %q", entries[2].Message)
	}
}

func TestLevelFiltering(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	ToolsDebug("hidden")
	Tools("shown")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	if logs.All()[0].Message != "shown" {
		t.Errorf("unexpected message %q", logs.All()[0].Message)
	}
}

func TestDefaultIsNoop(t *testing.T) {
	Initialize(nil)
	// Must not panic or write anywhere.
	Boot("nothing")
	Audit().ToolExec("w_len", 1, nil)
}

func TestAuditCarriesRunID(t *testing.T) {
	logs := observe(t, zapcore.InfoLevel)

	AuditWithRun("run-1").ToolExec("w_int", 3, errors.New("ValueError: bad"))

	entries := logs.FilterLoggerName("audit").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["run_id"] != "run-1" {
		t.Errorf("run_id = %v", fields["run_id"])
	}
	if fields["event"] != string(AuditToolError) {
		t.Errorf("event = %v", fields["event"])
	}
	if fields["tool"] != "w_int" {
		t.Errorf("tool = %v", fields["tool"])
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interpagent.log")

	l, err := New(Config{Level: "debug", Format: "json", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	Initialize(l)
	t.Cleanup(func() { Initialize(nil) })

	BootDebug("hello from %s", "test")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file missing message: %s", data)
	}
	if !strings.Contains(string(data), `"logger":"boot"`) {
		t.Errorf("log file missing logger name: %s", data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Config{Level: "chatty"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
