// Package logging provides categorized logging for interpagent on top of zap.
// Every category is a named child of one root logger. Until Initialize is
// called the root is a no-op logger, so library code can log freely without
// touching stdout.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot  Category = "boot"  // Boot/initialization, configuration
	CategoryAPI   Category = "api"   // LLM API calls
	CategoryTools Category = "tools" // Catalog registration and execution
	CategoryAgent Category = "agent" // Tool-call loop
	CategoryCLI   Category = "cli"   // Query resolution and output
	CategoryMCP   Category = "mcp"   // MCP server
	CategoryAudit Category = "audit" // Structured audit events
)

// Config selects the level, encoding and destination of the root logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	File   string // empty means stderr
}

var (
	mu      sync.RWMutex
	root    = zap.NewNop()
	loggers = make(map[Category]*zap.SugaredLogger)
)

// New builds a zap logger from cfg. Output goes to stderr unless a file is
// configured; stdout is reserved for the command's response.
func New(cfg Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if strings.EqualFold(cfg.Format, "console") {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	out := "stderr"
	if cfg.File != "" {
		out = cfg.File
	}
	zcfg.OutputPaths = []string{out}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

// Initialize installs l as the root logger. A nil l restores the no-op root.
func Initialize(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	root = l
	loggers = make(map[Category]*zap.SugaredLogger)
}

// Root returns the current root logger.
func Root() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Get returns (or creates) the logger for the given category.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}
	l := root.Named(string(category)).Sugar()
	loggers[category] = l
	return l
}

// Sync flushes the root logger. Errors from syncing a terminal are ignored.
func Sync() {
	if err := Root().Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "[logging] sync failed: %v\n", err)
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debugf(format, args...)
}

// BootError logs error to the boot category
func BootError(format string, args ...interface{}) {
	Get(CategoryBoot).Errorf(format, args...)
}

// API logs to the api category
func API(format string, args ...interface{}) {
	Get(CategoryAPI).Infof(format, args...)
}

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debugf(format, args...)
}

// APIError logs error to the api category
func APIError(format string, args ...interface{}) {
	Get(CategoryAPI).Errorf(format, args...)
}

// Tools logs to the tools category
func Tools(format string, args ...interface{}) {
	Get(CategoryTools).Infof(format, args...)
}

// ToolsDebug logs debug to the tools category
func ToolsDebug(format string, args ...interface{}) {
	Get(CategoryTools).Debugf(format, args...)
}

// Agent logs to the agent category
func Agent(format string, args ...interface{}) {
	Get(CategoryAgent).Infof(format, args...)
}

// AgentDebug logs debug to the agent category
func AgentDebug(format string, args ...interface{}) {
	Get(CategoryAgent).Debugf(format, args...)
}

// AgentWarn logs warning to the agent category
func AgentWarn(format string, args ...interface{}) {
	Get(CategoryAgent).Warnf(format, args...)
}

// CLIDebug logs debug to the cli category
func CLIDebug(format string, args ...interface{}) {
	Get(CategoryCLI).Debugf(format, args...)
}

// MCP logs to the mcp category
func MCP(format string, args ...interface{}) {
	Get(CategoryMCP).Infof(format, args...)
}

// MCPDebug logs debug to the mcp category
func MCPDebug(format string, args ...interface{}) {
	Get(CategoryMCP).Debugf(format, args...)
}
