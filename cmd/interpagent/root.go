package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"interpagent/internal/agent"
	"interpagent/internal/config"
	"interpagent/internal/llm"
	"interpagent/internal/logging"
	"interpagent/internal/query"
	"interpagent/internal/tools"
	"interpagent/internal/tools/builtins"
)

// noQueryMessage is printed when the run ends before a query was given.
const noQueryMessage = "No query provided. Exiting."

// app carries flag values and the process streams for one invocation.
type app struct {
	// Flags
	query      string
	configPath string
	dotenvPath string
	verbose    bool

	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool

	cfg *config.Config
}

func defaultApp() *app {
	return &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: query.NewResolver(os.Stdin, os.Stdout).IsTerminal,
	}
}

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "interpagent [QUERY]",
		Short: "Answer one query with a model restricted to interpreter built-ins",
		Long: `interpagent sends a single query to a chat model that behaves like an
interpreter and may only call the wrapped built-in functions.

The query is taken from --query, then the positional argument, then piped
standard input, and finally an interactive "Query: " prompt.

Required environment (a .env file in the working directory is loaded first):
  OPENAI_MODEL_NAME  model identifier
  OPENAI_API_KEY     API key
  OPENAI_ENDPOINT    base URL of the chat completions API`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), args)
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.Flags().StringVarP(&a.query, "query", "q", "", "Query to send (takes precedence over the positional argument)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.dotenvPath, "dotenv", ".env", "Path to a .env file to load")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newToolsCmd(a))
	root.AddCommand(newMCPCmd(a))
	return root
}

// setup loads configuration and installs the logger. It never touches the
// network.
func (a *app) setup() error {
	if err := config.LoadDotEnv(a.dotenvPath); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Stay silent unless asked: stdout carries the response.
	if !a.verbose && cfg.Logging.File == "" {
		logging.Initialize(nil)
		return nil
	}
	logger, err := logging.New(cfg.Logging.LoggerConfig(a.verbose))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.Initialize(logger)
	logging.Boot("interpagent %s starting: provider=%s", version, cfg.Provider)
	return nil
}

// newCatalog registers the primitives bound to the given streams.
func newCatalog(env builtins.Env) (*tools.Registry, error) {
	registry := tools.NewRegistry()
	if _, err := builtins.RegisterAll(registry, env); err != nil {
		return nil, fmt.Errorf("register catalog: %w", err)
	}
	logging.Boot("Catalog registered: %d tools", registry.Count())
	return registry, nil
}

// runQuery performs one request/response.
func (a *app) runQuery(ctx context.Context, args []string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	resolver := &query.Resolver{In: a.stdin, Out: a.stdout, IsTerminal: a.isTerminal}
	q, source, err := resolver.Resolve(ctx, a.query, args)
	if errors.Is(err, query.ErrNoQuery) {
		// Nothing echoed a newline after the prompt.
		if ctx.Err() != nil || a.isTerminal == nil || !a.isTerminal() {
			fmt.Fprintln(a.stdout)
		}
		fmt.Fprintln(a.stdout, noQueryMessage)
		return nil
	}
	if err != nil {
		return err
	}
	logging.CLIDebug("Query from %s: %d chars", source, len(q))

	registry, err := newCatalog(builtins.Env{In: a.stdin, Out: a.stdout})
	if err != nil {
		return err
	}

	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return err
	}
	client, err := llm.NewClient(ctx, llm.Config{
		Provider: provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.Endpoint,
		Model:    cfg.Model,
		Timeout:  cfg.GetRequestTimeout(),
	})
	if err != nil {
		return err
	}

	instructions := strings.TrimSpace(cfg.Instructions)
	ag, err := agent.New(client, registry, registry.Names(), agent.Config{
		Instructions:  instructions,
		MaxToolRounds: cfg.MaxToolRounds,
		ToolTimeout:   cfg.GetToolTimeout(),
	})
	if err != nil {
		return err
	}

	response, err := ag.Run(ctx, q)
	if err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}
	fmt.Fprintf(a.stdout, "Response: %s\n", response)
	return nil
}
