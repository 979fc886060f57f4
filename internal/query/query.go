// Package query resolves the single query of a run from the command line,
// piped standard input or an interactive prompt, in that order.
package query

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"interpagent/internal/logging"
)

// Prompt is written before reading a query interactively.
const Prompt = "Query: "

// ErrNoQuery is returned when input ends or is interrupted before a query
// was given. It is a clean exit, not a failure.
var ErrNoQuery = errors.New("no query provided")

// Source names where a query came from.
type Source string

const (
	SourceFlag       Source = "flag"
	SourcePositional Source = "positional"
	SourcePipe       Source = "stdin"
	SourcePrompt     Source = "prompt"
)

// Resolver picks the query source. The zero value is not usable; build one
// with NewResolver or fill every field.
type Resolver struct {
	// In is standard input.
	In io.Reader

	// Out receives the interactive prompt.
	Out io.Writer

	// IsTerminal reports whether In is interactive.
	IsTerminal func() bool
}

// NewResolver returns a resolver over a real file, typically os.Stdin.
func NewResolver(in *os.File, out io.Writer) *Resolver {
	return &Resolver{
		In:  in,
		Out: out,
		IsTerminal: func() bool {
			return term.IsTerminal(int(in.Fd()))
		},
	}
}

// Resolve returns the query and its source. The first match wins:
//  1. flagQuery, if non-empty
//  2. the first positional argument, if non-empty
//  3. all of In, trimmed, if In is not a terminal and the result is non-empty
//  4. one line read after printing Prompt
//
// End of input or cancellation of ctx while waiting at the prompt yield
// ErrNoQuery. An empty prompted line is returned as an empty query.
func (r *Resolver) Resolve(ctx context.Context, flagQuery string, args []string) (string, Source, error) {
	if flagQuery != "" {
		return flagQuery, SourceFlag, nil
	}
	if len(args) > 0 && args[0] != "" {
		return args[0], SourcePositional, nil
	}

	in := bufio.NewReader(r.In)
	if r.IsTerminal == nil || !r.IsTerminal() {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		if q := strings.TrimSpace(string(data)); q != "" {
			return q, SourcePipe, nil
		}
		logging.CLIDebug("Piped stdin was empty, falling back to prompt")
	}

	line, err := r.prompt(ctx, in)
	if err != nil {
		return "", "", err
	}
	return line, SourcePrompt, nil
}

type readResult struct {
	line string
	err  error
}

func (r *Resolver) prompt(ctx context.Context, in *bufio.Reader) (string, error) {
	if r.Out != nil {
		if _, err := io.WriteString(r.Out, Prompt); err != nil {
			return "", fmt.Errorf("write prompt: %w", err)
		}
	}

	// The read cannot be interrupted; on cancellation it is abandoned.
	done := make(chan readResult, 1)
	go func() {
		line, err := in.ReadString('\n')
		done <- readResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		logging.CLIDebug("Prompt interrupted: %v", ctx.Err())
		return "", ErrNoQuery
	case res := <-done:
		if res.err != nil && !errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("read query: %w", res.err)
		}
		// Only end of input with nothing typed counts as no query; an empty
		// line is an empty query.
		if res.err != nil && res.line == "" {
			return "", ErrNoQuery
		}
		line := strings.TrimSuffix(res.line, "\n")
		return strings.TrimSuffix(line, "\r"), nil
	}
}
