package builtins

import (
	"errors"
	"io"
	"strings"

	"interpagent/internal/pyval"
)

// Input writes prompt to the output stream and reads one line from the
// input stream, without its trailing newline.
func (c *Catalog) Input(prompt any) (any, error) {
	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	if p := pyval.Str(prompt); p != "" {
		if _, err := io.WriteString(c.out, p); err != nil {
			return nil, pyval.Errorf(pyval.RuntimeError, "input(): %v", err)
		}
	}
	if c.in == nil {
		return nil, pyval.Errorf(pyval.EOFError, "EOF when reading a line")
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, pyval.Errorf(pyval.RuntimeError, "input(): %v", err)
	}
	if line == "" {
		return nil, pyval.Errorf(pyval.EOFError, "EOF when reading a line")
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// Print writes the str() of each arg separated by sep and followed by end.
// Only the catalog output stream (file=None) is supported.
func (c *Catalog) Print(args []any, sep, end, file, flush any) (any, error) {
	sepStr, err := printSeparator("sep", sep, " ")
	if err != nil {
		return nil, err
	}
	endStr, err := printSeparator("end", end, "\n")
	if err != nil {
		return nil, err
	}
	if file != nil {
		return nil, pyval.Errorf(pyval.AttributeError, "'%s' object has no attribute 'write'", pyval.TypeName(file))
	}

	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = pyval.Str(a)
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()
	if _, err := io.WriteString(c.out, strings.Join(parts, sepStr)+endStr); err != nil {
		return nil, pyval.Errorf(pyval.RuntimeError, "print(): %v", err)
	}
	if pyval.Truthy(flush) {
		if f, ok := c.out.(interface{ Sync() error }); ok {
			_ = f.Sync()
		}
	}
	return nil, nil
}

func printSeparator(name string, v any, def string) (string, error) {
	switch s := v.(type) {
	case nil:
		return def, nil
	case string:
		return s, nil
	}
	return "", pyval.TypeErrorf("%s must be None or a string, not %s", name, pyval.TypeName(v))
}
