package builtins

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// valueOpts compares interpreter values the way == does.
var valueOpts = cmp.Options{
	cmp.Comparer(func(a, b *pyval.Dict) bool { return pyval.Equal(a, b) }),
	cmp.Comparer(func(a, b *pyval.Set) bool { return pyval.Equal(a, b) }),
	cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }),
}

func newTestCatalog(t *testing.T, input string) (*tools.Registry, *Catalog, *bytes.Buffer) {
	t.Helper()
	reg := tools.NewRegistry()
	out := &bytes.Buffer{}
	c, err := RegisterAll(reg, Env{In: strings.NewReader(input), Out: out})
	require.NoError(t, err)
	return reg, c, out
}

func TestRegisterAllCatalog(t *testing.T) {
	reg, _, _ := newTestCatalog(t, "")

	names := reg.Names()
	require.Len(t, names, 50)
	assert.Equal(t, "w_abs", names[0])
	assert.Equal(t, "w_zip", names[len(names)-1])
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, tools.ForwardPrefix), n)
		tool := reg.Get(n)
		require.NotNil(t, tool)
		assert.NotEmpty(t, tool.Description, n)
		assert.True(t, tool.Forwarding, n)
	}

	assert.Equal(t, "(x=0, base=<unset>)", reg.Get("w_int").Signature.String())
	assert.Equal(t, "(iterable, *, key=None, reverse=False)", reg.Get("w_sorted").Signature.String())
	assert.Equal(t, "(*args, key=None, default=<unset>)", reg.Get("w_max").Signature.String())

	_, err := RegisterAll(reg, Env{})
	assert.ErrorIs(t, err, tools.ErrToolAlreadyRegistered)
}

// Each wrapper, fed JSON arguments the way a model would send them,
// returns what the primitive returns when called directly.
func TestWrapperMatchesPrimitive(t *testing.T) {
	reg, c, _ := newTestCatalog(t, "")
	ctx := context.Background()

	d := pyval.NewDict()
	require.NoError(t, d.Set("a", int64(1)))
	require.NoError(t, d.Set("b", int64(2)))

	tests := []struct {
		tool   string
		args   string
		direct func() (any, error)
	}{
		{"w_abs", `{"x": -3}`, func() (any, error) { return Abs(int64(-3)) }},
		{"w_abs", `{"x": -2.5}`, func() (any, error) { return Abs(-2.5) }},
		{"w_all", `{"iterable": [1, true, "x"]}`, func() (any, error) { return All([]any{int64(1), true, "x"}) }},
		{"w_any", `{"iterable": [0, "", null]}`, func() (any, error) { return Any([]any{int64(0), "", nil}) }},
		{"w_bin", `{"number": -10}`, func() (any, error) { return Bin(int64(-10)) }},
		{"w_bool", `{}`, func() (any, error) { return Bool(false) }},
		{"w_chr", `{"i": 8364}`, func() (any, error) { return Chr(int64(8364)) }},
		{"w_dict", `{"a": 1, "b": 2}`, func() (any, error) { return Dict(nil, d) }},
		{"w_divmod", `{"a": -7, "b": 2}`, func() (any, error) { return Divmod(int64(-7), int64(2)) }},
		{"w_enumerate", `{"iterable": "ab", "start": 1}`, func() (any, error) { return Enumerate("ab", int64(1)) }},
		{"w_filter", `{"function": null, "iterable": [0, 1, 2]}`, func() (any, error) { return c.Filter(ctx, nil, []any{int64(0), int64(1), int64(2)}) }},
		{"w_float", `{"x": "1e3"}`, func() (any, error) { return Float("1e3") }},
		{"w_format", `{"value": 3.14159, "format_spec": ".2f"}`, func() (any, error) { return Format(3.14159, ".2f") }},
		{"w_frozenset", `{"iterable": [1, 1, 2]}`, func() (any, error) { return Frozenset([]any{int64(1), int64(2)}) }},
		{"w_hash", `{"obj": [1, 2]}`, func() (any, error) { return Hash([]any{int64(1), int64(2)}) }},
		{"w_hex", `{"number": 255}`, func() (any, error) { return Hex(int64(255)) }},
		{"w_int", `{"x": "ff", "base": 16}`, func() (any, error) { return Int("ff", int64(16)) }},
		{"w_int", `{"x": 3.9}`, func() (any, error) { return Int(3.9, tools.Unset) }},
		{"w_isinstance", `{"obj": true, "class_or_tuple": "int"}`, func() (any, error) { return Isinstance(true, "int") }},
		{"w_len", `{"obj": {"k": 1, "j": 2}}`, func() (any, error) { return Len(d) }},
		{"w_list", `{}`, func() (any, error) { return List(tools.Unset) }},
		{"w_map", `{"function": "abs", "iterable": [-1, -2]}`, func() (any, error) { return c.Map(ctx, "abs", []any{int64(-1), int64(-2)}, nil) }},
		{"w_max", `{"args": [[3, 1, 2]]}`, func() (any, error) { return c.Max(ctx, []any{[]any{int64(3), int64(1), int64(2)}}, nil, tools.Unset) }},
		{"w_max", `{"args": [[]]}`, func() (any, error) { return c.Max(ctx, []any{[]any{}}, nil, tools.Unset) }},
		{"w_min", `{"args": [[]], "default": 0}`, func() (any, error) { return c.Min(ctx, []any{[]any{}}, nil, int64(0)) }},
		{"w_next", `{"iterator": []}`, func() (any, error) { return Next([]any{}, tools.Unset) }},
		{"w_oct", `{"number": 8}`, func() (any, error) { return Oct(int64(8)) }},
		{"w_ord", `{"c": "é"}`, func() (any, error) { return Ord("é") }},
		{"w_pow", `{"base": 3, "exp": -1, "mod": 7}`, func() (any, error) { return Pow(int64(3), int64(-1), int64(7)) }},
		{"w_range", `{"stop": 10, "start": 2, "step": 3}`, func() (any, error) { return Range(int64(10), int64(2), int64(3)) }},
		{"w_repr", `{"obj": "it's"}`, func() (any, error) { return Repr("it's") }},
		{"w_reversed", `{"seq": [1, 2, 3]}`, func() (any, error) { return Reversed([]any{int64(1), int64(2), int64(3)}) }},
		{"w_round", `{"number": 2.675, "ndigits": 2}`, func() (any, error) { return Round(2.675, int64(2)) }},
		{"w_set", `{"iterable": "aba"}`, func() (any, error) { return Set("aba") }},
		{"w_slice", `{"args": [1, 5]}`, func() (any, error) { return Slice([]any{int64(1), int64(5)}) }},
		{"w_sorted", `{"iterable": ["bb", "a", "ccc"], "key": "len", "reverse": true}`, func() (any, error) {
			return c.Sorted(ctx, []any{"bb", "a", "ccc"}, "len", true)
		}},
		{"w_str", `{"obj": null}`, func() (any, error) { return Str(nil) }},
		{"w_sum", `{"iterable": [1, 2.5]}`, func() (any, error) { return Sum([]any{int64(1), 2.5}, int64(0)) }},
		{"w_tuple", `{"iterable": [1]}`, func() (any, error) { return Tuple([]any{int64(1)}) }},
		{"w_type", `{"obj": 1.0}`, func() (any, error) { return Type(1.0) }},
		{"w_zip", `{"iterables": [[1, 2, 3], "ab"]}`, func() (any, error) { return Zip([]any{[]any{int64(1), int64(2), int64(3)}, "ab"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.args, func(t *testing.T) {
			want, wantErr := tt.direct()
			res, err := reg.ExecuteJSON(ctx, tt.tool, []byte(tt.args))
			if wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, wantErr.Error(), err.Error())
				assert.Equal(t, wantErr.Error(), res.Text())
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(want, res.Value, valueOpts); diff != "" {
				t.Errorf("%s mismatch (-direct +wrapper):\n%s", tt.tool, diff)
			}
			assert.Equal(t, pyval.Repr(want), res.Result)
		})
	}
}

func TestWrapperErrorsPropagateUnchanged(t *testing.T) {
	reg, _, _ := newTestCatalog(t, "")
	ctx := context.Background()

	tests := []struct {
		tool string
		args string
		want string
	}{
		{"w_int", `{"x": "abc"}`, "ValueError: invalid literal for int() with base 10: 'abc'"},
		{"w_float", `{"x": "1.2.3"}`, "ValueError: could not convert string to float: '1.2.3'"},
		{"w_max", `{"args": [[]]}`, "ValueError: max() iterable argument is empty"},
		{"w_min", `{"args": []}`, "TypeError: min expected at least 1 argument, got 0"},
		{"w_divmod", `{"a": 1, "b": 0}`, "ZeroDivisionError: integer division or modulo by zero"},
		{"w_abs", `{"x": "s"}`, "TypeError: bad operand type for abs(): 'str'"},
		{"w_len", `{"obj": 5}`, "TypeError: object of type 'int' has no len()"},
		{"w_next", `{"iterator": []}`, "StopIteration"},
		{"w_chr", `{"i": -1}`, "ValueError: chr() arg not in range(0x110000)"},
		{"w_ord", `{"c": "ab"}`, "TypeError: ord() expected a character, but string of length 2 found"},
		{"w_hash", `{"obj": {}}`, "TypeError: unhashable type: 'dict'"},
		{"w_map", `{"function": "nope", "iterable": [1]}`, "NameError: name 'nope' is not defined"},
		{"w_abs", `{}`, "TypeError: w_abs() missing 1 required positional argument: 'x'"},
		{"w_abs", `{"x": 1, "y": 2}`, "TypeError: w_abs() got an unexpected keyword argument 'y'"},
	}
	for _, tt := range tests {
		t.Run(tt.tool+" "+tt.args, func(t *testing.T) {
			res, err := reg.ExecuteJSON(ctx, tt.tool, []byte(tt.args))
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.False(t, res.IsSuccess())
			assert.Equal(t, tt.want, res.Text())
		})
	}
}

func TestInvokeResolvesCallables(t *testing.T) {
	_, c, _ := newTestCatalog(t, "")
	ctx := context.Background()

	for _, fn := range []any{"w_abs", "abs", pyval.Function{Name: "w_abs"}} {
		v, err := c.Invoke(ctx, fn, int64(-4))
		require.NoError(t, err)
		assert.Equal(t, int64(4), v)
	}
	v, err := c.Invoke(ctx, pyval.Type{Name: "str"}, int64(7))
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	_, err = c.Invoke(ctx, int64(3), int64(1))
	assert.EqualError(t, err, "TypeError: 'int' object is not callable")
}
