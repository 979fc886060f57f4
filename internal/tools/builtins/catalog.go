package builtins

import (
	"bufio"
	"context"
	"io"
	"math/big"
	"sync"
	"sync/atomic"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// Env carries the streams used by w_input and w_print.
type Env struct {
	In  io.Reader
	Out io.Writer
}

// Catalog is the state shared by primitives that need more than their
// arguments: the registry (for callables and scope listing) and the
// input/output streams.
type Catalog struct {
	reg *tools.Registry

	ioMu sync.Mutex
	in   *bufio.Reader
	out  io.Writer

	ids atomic.Int64
}

// NewCatalog binds a catalog to a registry and environment. Nil streams
// behave as an empty input and a discarded output.
func NewCatalog(registry *tools.Registry, env Env) *Catalog {
	c := &Catalog{reg: registry, out: env.Out}
	if env.In != nil {
		c.in = bufio.NewReader(env.In)
	}
	if c.out == nil {
		c.out = io.Discard
	}
	return c
}

// Invoke calls fn with positional arguments. fn names a catalog operation
// ("w_abs" or "abs"), or is a function or class value.
func (c *Catalog) Invoke(ctx context.Context, fn any, args ...any) (any, error) {
	switch f := fn.(type) {
	case string:
		return c.reg.Call(ctx, f, args...)
	case pyval.Function:
		return c.reg.Call(ctx, f.Name, args...)
	case pyval.Type:
		return c.reg.Call(ctx, f.Name, args...)
	}
	return nil, pyval.TypeErrorf("'%s' object is not callable", pyval.TypeName(fn))
}

// keyFunc returns the key extractor for a key= argument; nil means identity.
func (c *Catalog) keyFunc(ctx context.Context, key any) func(any) (any, error) {
	if key == nil {
		return func(v any) (any, error) { return v, nil }
	}
	return func(v any) (any, error) { return c.Invoke(ctx, key, v) }
}

// asIndex converts an int argument to int64, failing the way an index
// conversion does for non-ints.
func asIndex(v any) (int64, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int64:
		return x, nil
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), nil
		}
		return 0, pyval.Errorf(pyval.OverflowError, "int too large to convert to index")
	}
	return 0, pyval.TypeErrorf("'%s' object cannot be interpreted as an integer", pyval.TypeName(v))
}
