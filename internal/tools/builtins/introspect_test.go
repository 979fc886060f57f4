package builtins

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

func TestTypeChecks(t *testing.T) {
	v, _ := Type(int64(1))
	assert.Equal(t, "<class 'int'>", pyval.Repr(v))

	cases := []struct {
		obj, cls any
		want     bool
	}{
		{true, "int", true},
		{int64(1), "bool", false},
		{"s", []any{"int", "str"}, true},
		{nil, "NoneType", true},
		{1.5, pyval.Type{Name: "object"}, true},
		{pyval.NewSet(true), "set", false},
	}
	for _, tc := range cases {
		got, err := Isinstance(tc.obj, tc.cls)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s in %s", pyval.Repr(tc.obj), pyval.Repr(tc.cls))
	}

	_, err := Isinstance(int64(1), "integer")
	assert.EqualError(t, err, "TypeError: isinstance() arg 2 must be a type, a tuple of types, or a union")

	got, err := Issubclass("bool", pyval.Tuple{"float", "int"})
	require.NoError(t, err)
	assert.Equal(t, true, got)

	_, err = Issubclass(int64(1), "int")
	assert.EqualError(t, err, "TypeError: issubclass() arg 1 must be a class")
}

func TestAttributes(t *testing.T) {
	_, c, _ := newTestCatalog(t, "")

	v, err := c.Getattr(int64(7), "denominator", tools.Unset)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = c.Getattr(int64(1), "x", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	v, err = c.Getattr(pyval.NewDict(), "keys", tools.Unset)
	require.NoError(t, err)
	assert.Equal(t, "<built-in method keys of dict object>", pyval.Repr(v))

	v, err = c.Getattr(pyval.Function{Name: "w_len"}, "__doc__", tools.Unset)
	require.NoError(t, err)
	assert.Equal(t, "Return the number of items in a container.", v)

	_, err = c.Getattr("s", "nope", tools.Unset)
	assert.EqualError(t, err, "AttributeError: 'str' object has no attribute 'nope'")

	_, err = c.Getattr(pyval.Type{Name: "int"}, "nope", tools.Unset)
	assert.EqualError(t, err, "AttributeError: type object 'int' has no attribute 'nope'")

	_, err = c.Getattr("s", int64(1), tools.Unset)
	assert.EqualError(t, err, "TypeError: attribute name must be string, not 'int'")

	has, _ := c.Hasattr([]any{}, "append")
	assert.Equal(t, true, has)
	has, _ = c.Hasattr([]any{}, "keys")
	assert.Equal(t, false, has)
	has, _ = c.Hasattr(1.5, "__class__")
	assert.Equal(t, true, has)
}

func TestScopeIntrospection(t *testing.T) {
	reg, c, _ := newTestCatalog(t, "")

	v, err := c.Dir(tools.Unset)
	require.NoError(t, err)
	names := v.([]any)
	require.Len(t, names, len(reg.Names()))
	assert.Equal(t, "w_abs", names[0])

	v, err = c.Dir(pyval.Tuple{})
	require.NoError(t, err)
	assert.Contains(t, v, "count")
	assert.Contains(t, v, "__repr__")

	g, err := c.Globals()
	require.NoError(t, err)
	fn, ok, err := g.(*pyval.Dict).Get("w_zip")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<function w_zip>", pyval.Repr(fn))

	v, err = c.Vars(tools.Unset)
	require.NoError(t, err)
	assert.Equal(t, "{}", pyval.Repr(v))

	v, err = c.Vars(pyval.Type{Name: "tuple"})
	require.NoError(t, err)
	assert.Equal(t, 2, v.(*pyval.Dict).Len())

	_, err = c.Vars(int64(1))
	assert.EqualError(t, err, "TypeError: vars() argument must have __dict__ attribute")

	a, _ := c.Id(int64(1))
	b, _ := c.Id(int64(1))
	assert.NotEqual(t, a, b)

	h, err := Hash("abc")
	require.NoError(t, err)
	h2, _ := Hash("abc")
	assert.Equal(t, h, h2)
}

func TestInputAndPrint(t *testing.T) {
	_, c, out := newTestCatalog(t, "first line\nsecond")

	v, err := c.Input("> ")
	require.NoError(t, err)
	assert.Equal(t, "first line", v)
	v, err = c.Input("")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
	_, err = c.Input("")
	assert.EqualError(t, err, "EOFError: EOF when reading a line")

	_, err = c.Print([]any{"a", int64(1), nil}, "-", "!\n", nil, false)
	require.NoError(t, err)
	_, err = c.Print([]any{1.0}, nil, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "> a-1-None!\n1.0\n", out.String())

	_, err = c.Print(nil, int64(1), nil, nil, false)
	assert.EqualError(t, err, "TypeError: sep must be None or a string, not int")
	_, err = c.Print(nil, nil, nil, "stderr", false)
	assert.EqualError(t, err, "AttributeError: 'str' object has no attribute 'write'")

	noInput := NewCatalog(tools.NewRegistry(), Env{})
	_, err = noInput.Input("")
	assert.True(t, pyval.IsException(err, pyval.EOFError))
}

func TestEval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	v, err := Eval(ctx, "1 + 2*3", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	globals := pyval.NewDict()
	require.NoError(t, globals.Set("x", int64(4)))
	require.NoError(t, globals.Set("name", "go"))
	locals := pyval.NewDict()
	require.NoError(t, locals.Set("x", int64(10)))

	v, err = Eval(ctx, "x * 2", globals, locals)
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)

	v, err = Eval(ctx, `strings.ToUpper(name) + strconv.Itoa(x)`, globals, nil)
	require.NoError(t, err)
	assert.Equal(t, "GO4", v)

	v, err = Eval(ctx, "math.Sqrt(16)", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = Eval(ctx, "y + 1", nil, nil)
	assert.True(t, pyval.IsException(err, pyval.NameError), "got %v", err)

	_, err = Eval(ctx, int64(1), nil, nil)
	assert.EqualError(t, err, "TypeError: eval() arg 1 must be a string, bytes or code object")

	_, err = Eval(ctx, "1", []any{}, nil)
	assert.EqualError(t, err, "TypeError: globals must be a dict")
}
