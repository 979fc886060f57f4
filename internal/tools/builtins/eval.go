package builtins

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"interpagent/internal/pyval"
)

// evalPackages are the only packages an evaluated expression may use.
var evalPackages = []string{"math", "strings", "strconv"}

// Eval evaluates a Go expression in a fresh embedded interpreter. String
// keys of globals and locals that are identifiers become variables;
// locals win over globals.
func Eval(ctx context.Context, expression, globals, locals any) (any, error) {
	expr, ok := expression.(string)
	if !ok {
		return nil, pyval.TypeErrorf("eval() arg 1 must be a string, bytes or code object")
	}
	var scopes []*pyval.Dict
	if globals != nil {
		g, ok := globals.(*pyval.Dict)
		if !ok {
			return nil, pyval.TypeErrorf("globals must be a dict")
		}
		scopes = append(scopes, g)
	}
	if locals != nil {
		l, ok := locals.(*pyval.Dict)
		if !ok {
			return nil, pyval.TypeErrorf("locals must be a mapping")
		}
		scopes = append(scopes, l)
	}

	i := interp.New(interp.Options{})
	exports := interp.Exports{}
	for _, pkg := range evalPackages {
		exports[pkg+"/"+pkg] = stdlib.Symbols[pkg+"/"+pkg]
	}
	if err := i.Use(exports); err != nil {
		return nil, pyval.Errorf(pyval.RuntimeError, "eval(): %v", err)
	}

	var prelude []string
	for _, pkg := range evalPackages {
		if strings.Contains(expr, pkg+".") {
			prelude = append(prelude, fmt.Sprintf("import %q", pkg))
		}
	}
	bound := make(map[string]string)
	var order []string
	for _, scope := range scopes {
		for _, kv := range scope.Items() {
			name, ok := kv[0].(string)
			if !ok || !token.IsIdentifier(name) {
				continue
			}
			lit, ok := goLiteral(kv[1])
			if !ok {
				continue
			}
			if _, seen := bound[name]; !seen {
				order = append(order, name)
			}
			bound[name] = lit
		}
	}
	for _, name := range order {
		prelude = append(prelude, fmt.Sprintf("var %s = %s", name, bound[name]))
	}
	for _, stmt := range prelude {
		if _, err := i.EvalWithContext(ctx, stmt); err != nil {
			return nil, evalError(err)
		}
	}

	v, err := i.EvalWithContext(ctx, expr)
	if err != nil {
		return nil, evalError(err)
	}
	return fromReflect(v), nil
}

// goLiteral renders scalar values as Go source.
func goLiteral(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x), true
	case int64:
		return fmt.Sprintf("int(%d)", x), true
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return "", false
		}
		return fmt.Sprintf("float64(%s)", strconv.FormatFloat(x, 'g', -1, 64)), true
	case string:
		return strconv.Quote(x), true
	}
	return "", false
}

func evalError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "divide by zero") || strings.Contains(msg, "division by zero"):
		return pyval.Errorf(pyval.ZeroDivisionError, "division by zero")
	case strings.Contains(msg, "undefined:"):
		name := strings.TrimSpace(msg[strings.LastIndex(msg, "undefined:")+len("undefined:"):])
		return pyval.Errorf(pyval.NameError, "name '%s' is not defined", name)
	}
	return pyval.Errorf(pyval.SyntaxError, "%s", msg)
}

// fromReflect converts an evaluation result to an interpreter value.
func fromReflect(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return pyval.NormInt(new(big.Int).SetUint64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = fromReflect(v.Index(i))
		}
		return out
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return fromReflect(v.Elem())
	}
	if v.CanInterface() {
		return fmt.Sprint(v.Interface())
	}
	return v.String()
}
