package builtins

import (
	"math/big"
	"unicode/utf8"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// maxRangeLen caps how many items a materialized range may hold.
const maxRangeLen = 1_000_000

// Len returns the number of items in a container.
func Len(obj any) (any, error) {
	switch v := obj.(type) {
	case string:
		return int64(utf8.RuneCountInString(v)), nil
	case []any:
		return int64(len(v)), nil
	case pyval.Tuple:
		return int64(len(v)), nil
	case *pyval.Dict:
		return int64(v.Len()), nil
	case *pyval.Set:
		return int64(v.Len()), nil
	}
	return nil, pyval.TypeErrorf("object of type '%s' has no len()", pyval.TypeName(obj))
}

// List returns a new list holding the items of iterable.
func List(iterable any) (any, error) {
	if tools.IsUnset(iterable) {
		return []any{}, nil
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	copy(out, items)
	return out, nil
}

// Tuple returns a tuple holding the items of iterable.
func Tuple(iterable any) (any, error) {
	if tools.IsUnset(iterable) {
		return pyval.Tuple{}, nil
	}
	if t, ok := iterable.(pyval.Tuple); ok {
		return t, nil
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	out := make(pyval.Tuple, len(items))
	copy(out, items)
	return out, nil
}

// Set returns a new set of the unique items of iterable.
func Set(iterable any) (any, error) {
	return newSet(iterable, false)
}

// Frozenset returns an immutable set of the unique items of iterable.
func Frozenset(iterable any) (any, error) {
	return newSet(iterable, true)
}

func newSet(iterable any, frozen bool) (any, error) {
	s := pyval.NewSet(frozen)
	if tools.IsUnset(iterable) {
		return s, nil
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := s.Add(item); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dict builds a dictionary from at most one mapping or iterable of pairs,
// then applies kwargs.
func Dict(args []any, kwargs *pyval.Dict) (any, error) {
	if len(args) > 1 {
		return nil, pyval.TypeErrorf("dict expected at most 1 argument, got %d", len(args))
	}
	d := pyval.NewDict()
	if len(args) == 1 {
		if src, ok := args[0].(*pyval.Dict); ok {
			for _, kv := range src.Items() {
				if err := d.Set(kv[0], kv[1]); err != nil {
					return nil, err
				}
			}
		} else {
			items, err := pyval.Iterate(args[0])
			if err != nil {
				return nil, err
			}
			for n, item := range items {
				pair, err := pyval.Iterate(item)
				if err != nil {
					return nil, pyval.TypeErrorf("cannot convert dictionary update sequence element #%d to a sequence", n)
				}
				if len(pair) != 2 {
					return nil, pyval.ValueErrorf("dictionary update sequence element #%d has length %d; 2 is required", n, len(pair))
				}
				if err := d.Set(pair[0], pair[1]); err != nil {
					return nil, err
				}
			}
		}
	}
	if kwargs != nil {
		for _, kv := range kwargs.Items() {
			if err := d.Set(kv[0], kv[1]); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// Range returns range(stop) when start is None, otherwise
// range(start, stop, step), materialized as a list.
func Range(stop, start, step any) (any, error) {
	if start == nil {
		return rangeList(int64(0), stop, int64(1))
	}
	return rangeList(start, stop, step)
}

func rangeList(start, stop, step any) (any, error) {
	var bounds [3]*big.Int
	for i, v := range []any{start, stop, step} {
		b, ok := pyval.ToBig(v)
		if !ok {
			return nil, pyval.TypeErrorf("'%s' object cannot be interpreted as an integer", pyval.TypeName(v))
		}
		bounds[i] = b
	}
	lo, hi, st := bounds[0], bounds[1], bounds[2]
	if st.Sign() == 0 {
		return nil, pyval.ValueErrorf("range() arg 3 must not be zero")
	}

	// length = max(0, ceil((hi - lo) / st))
	span := new(big.Int).Sub(hi, lo)
	if st.Sign() < 0 {
		span.Neg(span)
	}
	stepAbs := new(big.Int).Abs(st)
	n := new(big.Int)
	if span.Sign() > 0 {
		n.Add(span, stepAbs)
		n.Sub(n, big.NewInt(1))
		n.Quo(n, stepAbs)
	}
	if n.Cmp(big.NewInt(maxRangeLen)) > 0 {
		return nil, pyval.Errorf(pyval.MemoryError, "range of %s items is too large to materialize", n.String())
	}

	out := make([]any, 0, n.Int64())
	cur := new(big.Int).Set(lo)
	for i := int64(0); i < n.Int64(); i++ {
		out = append(out, pyval.NormInt(new(big.Int).Set(cur)))
		cur.Add(cur, st)
	}
	return out, nil
}

// Slice builds slice(stop), slice(start, stop) or slice(start, stop, step).
func Slice(args []any) (any, error) {
	switch len(args) {
	case 0:
		return nil, pyval.TypeErrorf("slice expected at least 1 argument, got 0")
	case 1:
		return pyval.Slice{Stop: args[0]}, nil
	case 2:
		return pyval.Slice{Start: args[0], Stop: args[1]}, nil
	case 3:
		return pyval.Slice{Start: args[0], Stop: args[1], Step: args[2]}, nil
	}
	return nil, pyval.TypeErrorf("slice expected at most 3 arguments, got %d", len(args))
}

// Reversed returns the items of a sequence in reverse order.
func Reversed(seq any) (any, error) {
	switch seq.(type) {
	case string, []any, pyval.Tuple, *pyval.Dict:
	default:
		return nil, pyval.TypeErrorf("'%s' object is not reversible", pyval.TypeName(seq))
	}
	items, err := pyval.Iterate(seq)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out, nil
}

// Enumerate pairs each item with a running index starting at start.
func Enumerate(iterable, start any) (any, error) {
	n, ok := pyval.ToBig(start)
	if !ok {
		return nil, pyval.TypeErrorf("'%s' object cannot be interpreted as an integer", pyval.TypeName(start))
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = pyval.Tuple{pyval.NormInt(new(big.Int).Set(n)), item}
		n.Add(n, big.NewInt(1))
	}
	return out, nil
}

// Zip aggregates the i-th items of each iterable, stopping at the shortest.
func Zip(iterables []any) (any, error) {
	if len(iterables) == 0 {
		return []any{}, nil
	}
	cols := make([][]any, len(iterables))
	shortest := -1
	for i, it := range iterables {
		items, err := pyval.Iterate(it)
		if err != nil {
			return nil, err
		}
		cols[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	out := make([]any, shortest)
	for i := range out {
		row := make(pyval.Tuple, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		out[i] = row
	}
	return out, nil
}

// Iter returns the items obj yields when iterated.
func Iter(obj any) (any, error) {
	return List(obj)
}

// Next returns the first item of a materialized iterator, or def when it is
// exhausted and def was supplied.
func Next(iterator, def any) (any, error) {
	var items []any
	switch v := iterator.(type) {
	case []any:
		items = v
	case pyval.Tuple:
		items = v
	default:
		return nil, pyval.TypeErrorf("'%s' object is not an iterator", pyval.TypeName(iterator))
	}
	if len(items) > 0 {
		return items[0], nil
	}
	if tools.IsUnset(def) {
		return nil, pyval.Errorf(pyval.StopIteration, "")
	}
	return def, nil
}
