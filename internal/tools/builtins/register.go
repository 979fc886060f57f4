package builtins

import (
	"context"
	"fmt"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// Shorthands for the signature table below.
var (
	arg      = tools.Arg
	opt      = tools.Opt
	optUnset = tools.OptUnset
	star     = tools.Star
	kwOnly   = tools.KwOnly
)

func unary(f func(any) (any, error)) tools.CallFunc {
	return func(_ context.Context, a []any) (any, error) { return f(a[0]) }
}

func binary(f func(any, any) (any, error)) tools.CallFunc {
	return func(_ context.Context, a []any) (any, error) { return f(a[0], a[1]) }
}

func ternary(f func(any, any, any) (any, error)) tools.CallFunc {
	return func(_ context.Context, a []any) (any, error) { return f(a[0], a[1], a[2]) }
}

// Entries returns the catalog wrappers bound to c, in catalog order.
func (c *Catalog) Entries() []*tools.Tool {
	const (
		numeric  = tools.CategoryNumeric
		convert  = tools.CategoryConversion
		collect  = tools.CategoryCollection
		iterate  = tools.CategoryIteration
		inspect  = tools.CategoryIntrospection
		io       = tools.CategoryIO
		general  = tools.CategoryGeneral
		any_     = tools.TypeAny
		integer  = tools.TypeInteger
		number   = tools.TypeNumber
		str      = tools.TypeString
		boolean  = tools.TypeBoolean
		array    = tools.TypeArray
		callable = tools.TypeString
	)
	fwd := tools.Forward
	sig := tools.Params

	return []*tools.Tool{
		fwd("w_abs", "Return the absolute value of a number.", numeric,
			sig(arg("x", number)), unary(Abs)),
		fwd("w_all", "Return True if all elements of the iterable are true.", iterate,
			sig(arg("iterable", array)), unary(All)),
		fwd("w_any", "Return True if any element of the iterable is true.", iterate,
			sig(arg("iterable", array)), unary(Any)),
		fwd("w_ascii", "Return a string containing a printable representation of an object.", convert,
			sig(arg("obj", any_)), unary(Ascii)),
		fwd("w_bin", "Convert an integer number to a binary string.", convert,
			sig(arg("number", integer)), unary(Bin)),
		fwd("w_bool", "Return a Boolean value.", convert,
			sig(opt("x", any_, false)), unary(Bool)),
		fwd("w_chr", "Return a Unicode string of one character.", convert,
			sig(arg("i", integer)), unary(Chr)),
		fwd("w_dict", "Create a new dictionary.", collect,
			sig(star("args", any_), tools.StarStar("kwargs")),
			func(_ context.Context, a []any) (any, error) { return Dict(a[0].([]any), a[1].(*pyval.Dict)) }),
		fwd("w_dir", "Return the list of valid attributes for an object.", inspect,
			sig(optUnset("obj", any_)), unary(c.Dir)),
		fwd("w_divmod", "Return quotient and remainder of division.", numeric,
			sig(arg("a", number), arg("b", number)), binary(Divmod)),
		fwd("w_enumerate", "Return an enumerate object.", iterate,
			sig(arg("iterable", array), opt("start", integer, int64(0))), binary(Enumerate)),
		fwd("w_eval", "Evaluate an expression.", general,
			sig(arg("expression", str), opt("globals", tools.TypeObject, nil), opt("locals", tools.TypeObject, nil)),
			func(ctx context.Context, a []any) (any, error) { return Eval(ctx, a[0], a[1], a[2]) }),
		fwd("w_filter", "Construct an iterator from elements which function returns True.", iterate,
			sig(arg("function", callable), arg("iterable", array)),
			func(ctx context.Context, a []any) (any, error) { return c.Filter(ctx, a[0], a[1]) }),
		fwd("w_float", "Convert a string or number to a floating point number.", convert,
			sig(opt("x", any_, 0.0)), unary(Float)),
		fwd("w_format", "Convert a value to a formatted representation.", convert,
			sig(arg("value", any_), opt("format_spec", str, "")), binary(Format)),
		fwd("w_frozenset", "Return an immutable set.", collect,
			sig(optUnset("iterable", array)), unary(Frozenset)),
		fwd("w_getattr", "Get a named attribute from an object.", inspect,
			sig(arg("obj", any_), arg("name", str), optUnset("default", any_)), ternary(c.Getattr)),
		fwd("w_globals", "Return the current global symbol table.", inspect,
			sig(), func(context.Context, []any) (any, error) { return c.Globals() }),
		fwd("w_hasattr", "Return whether the object has an attribute with the given name.", inspect,
			sig(arg("obj", any_), arg("name", str)), binary(c.Hasattr)),
		fwd("w_hash", "Return the hash value of an object.", inspect,
			sig(arg("obj", any_)), unary(Hash)),
		fwd("w_hex", "Convert an integer to a hexadecimal string.", convert,
			sig(arg("number", integer)), unary(Hex)),
		fwd("w_id", "Return the identity of an object.", inspect,
			sig(arg("obj", any_)), unary(c.Id)),
		fwd("w_input", "Read a string from standard input.", io,
			sig(opt("prompt", str, "")), unary(c.Input)),
		fwd("w_int", "Convert a string or number to an integer.", convert,
			sig(opt("x", any_, int64(0)), optUnset("base", integer)), binary(Int)),
		fwd("w_isinstance", "Return whether an object is an instance of a class.", inspect,
			sig(arg("obj", any_), arg("class_or_tuple", any_)), binary(Isinstance)),
		fwd("w_issubclass", "Return whether a class is a subclass of another class.", inspect,
			sig(arg("cls", any_), arg("class_or_tuple", any_)), binary(Issubclass)),
		fwd("w_iter", "Return an iterator object.", iterate,
			sig(arg("obj", any_)), unary(Iter)),
		fwd("w_len", "Return the number of items in a container.", collect,
			sig(arg("obj", any_)), unary(Len)),
		fwd("w_list", "Return a list from an iterable.", collect,
			sig(optUnset("iterable", any_)), unary(List)),
		fwd("w_map", "Return an iterator that applies function to every item.", iterate,
			sig(arg("function", callable), arg("iterable", array), star("iterables", array)),
			func(ctx context.Context, a []any) (any, error) { return c.Map(ctx, a[0], a[1], a[2].([]any)) }),
		fwd("w_max", "Return the largest item in an iterable.", iterate,
			sig(star("args", any_), kwOnly("key", callable, nil), tools.KwOnlyUnset("default", any_)),
			func(ctx context.Context, a []any) (any, error) { return c.Max(ctx, a[0].([]any), a[1], a[2]) }),
		fwd("w_min", "Return the smallest item in an iterable.", iterate,
			sig(star("args", any_), kwOnly("key", callable, nil), tools.KwOnlyUnset("default", any_)),
			func(ctx context.Context, a []any) (any, error) { return c.Min(ctx, a[0].([]any), a[1], a[2]) }),
		fwd("w_next", "Return the next item from the iterator.", iterate,
			sig(arg("iterator", array), optUnset("default", any_)), binary(Next)),
		fwd("w_oct", "Convert an integer to an octal string.", convert,
			sig(arg("number", integer)), unary(Oct)),
		fwd("w_ord", "Return the Unicode code point of a character.", convert,
			sig(arg("c", str)), unary(Ord)),
		fwd("w_pow", "Return base to the power exp.", numeric,
			sig(arg("base", number), arg("exp", number), opt("mod", integer, nil)), ternary(Pow)),
		fwd("w_print", "Print objects to a stream.", io,
			sig(star("args", any_), kwOnly("sep", str, " "), kwOnly("end", str, "\n"),
				kwOnly("file", any_, nil), kwOnly("flush", boolean, false)),
			func(_ context.Context, a []any) (any, error) { return c.Print(a[0].([]any), a[1], a[2], a[3], a[4]) }),
		fwd("w_range", "Return a sequence of numbers.", collect,
			sig(arg("stop", integer), opt("start", integer, nil), opt("step", integer, int64(1))), ternary(Range)),
		fwd("w_repr", "Return a string containing a printable representation of an object.", convert,
			sig(arg("obj", any_)), unary(Repr)),
		fwd("w_reversed", "Return a reverse iterator.", iterate,
			sig(arg("seq", any_)), unary(Reversed)),
		fwd("w_round", "Round a number to a given precision.", numeric,
			sig(arg("number", number), opt("ndigits", integer, nil)), binary(Round)),
		fwd("w_set", "Return a new set object.", collect,
			sig(optUnset("iterable", any_)), unary(Set)),
		fwd("w_slice", "Create a slice object.", collect,
			sig(star("args", integer)),
			func(_ context.Context, a []any) (any, error) { return Slice(a[0].([]any)) }),
		fwd("w_sorted", "Return a new sorted list from an iterable.", iterate,
			sig(arg("iterable", any_), kwOnly("key", callable, nil), kwOnly("reverse", boolean, false)),
			func(ctx context.Context, a []any) (any, error) { return c.Sorted(ctx, a[0], a[1], a[2]) }),
		fwd("w_str", "Return a string version of an object.", convert,
			sig(opt("obj", any_, "")), unary(Str)),
		fwd("w_sum", "Return the sum of a sequence of numbers.", numeric,
			sig(arg("iterable", array), opt("start", any_, int64(0))), binary(Sum)),
		fwd("w_tuple", "Return a tuple containing the elements of an iterable.", collect,
			sig(optUnset("iterable", any_)), unary(Tuple)),
		fwd("w_type", "Return the type of an object.", inspect,
			sig(arg("obj", any_)), unary(Type)),
		fwd("w_vars", "Return the __dict__ attribute of an object.", inspect,
			sig(optUnset("obj", any_)), unary(c.Vars)),
		fwd("w_zip", "Aggregate elements from iterables.", iterate,
			sig(star("iterables", array)),
			func(_ context.Context, a []any) (any, error) { return Zip(a[0].([]any)) }),
	}
}

// RegisterAll registers the full catalog into registry, with w_input and
// w_print bound to env's streams.
func RegisterAll(registry *tools.Registry, env Env) (*Catalog, error) {
	c := NewCatalog(registry, env)
	for _, tool := range c.Entries() {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("register %s: %w", tool.Name, err)
		}
	}
	return c, nil
}
