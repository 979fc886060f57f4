package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"interpagent/internal/mcp"
	"interpagent/internal/tools/builtins"
)

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the callable primitives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newCatalog(builtins.Env{In: a.stdin, Out: a.stdout})
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				fmt.Fprintln(a.stdout, registry.Get(name).String())
			}
			return nil
		},
	}
}

// newMCPCmd serves the catalog over stdio. Standard input and output carry
// the protocol, so primitives read nothing and print to stderr.
func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the primitives as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := newCatalog(builtins.Env{In: strings.NewReader(""), Out: a.stderr})
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(registry, registry.Names(), version)
			if err != nil {
				return err
			}
			return srv.ServeStdio(cmd.Context())
		},
	}
}
