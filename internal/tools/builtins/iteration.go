package builtins

import (
	"context"
	"sort"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// All reports whether every item of iterable is true.
func All(iterable any) (any, error) {
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if !pyval.Truthy(item) {
			return false, nil
		}
	}
	return true, nil
}

// Any reports whether some item of iterable is true.
func Any(iterable any) (any, error) {
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if pyval.Truthy(item) {
			return true, nil
		}
	}
	return false, nil
}

// Max returns the largest item: of a single iterable argument, or of two
// or more arguments.
func (c *Catalog) Max(ctx context.Context, args []any, key, def any) (any, error) {
	return c.extreme(ctx, "max", args, key, def, func(best, cand any) (bool, error) {
		return pyval.Less(best, cand)
	})
}

// Min returns the smallest item: of a single iterable argument, or of two
// or more arguments.
func (c *Catalog) Min(ctx context.Context, args []any, key, def any) (any, error) {
	return c.extreme(ctx, "min", args, key, def, func(best, cand any) (bool, error) {
		return pyval.Less(cand, best)
	})
}

// extreme keeps the first item that no later item beats.
func (c *Catalog) extreme(ctx context.Context, fn string, args []any, key, def any, beats func(best, cand any) (bool, error)) (any, error) {
	var items []any
	switch len(args) {
	case 0:
		return nil, pyval.TypeErrorf("%s expected at least 1 argument, got 0", fn)
	case 1:
		var err error
		if items, err = pyval.Iterate(args[0]); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			if tools.IsUnset(def) {
				return nil, pyval.ValueErrorf("%s() iterable argument is empty", fn)
			}
			return def, nil
		}
	default:
		if !tools.IsUnset(def) {
			return nil, pyval.TypeErrorf("Cannot specify a default for %s() with multiple positional arguments", fn)
		}
		items = args
	}

	keyOf := c.keyFunc(ctx, key)
	best := items[0]
	bestKey, err := keyOf(best)
	if err != nil {
		return nil, err
	}
	for _, item := range items[1:] {
		k, err := keyOf(item)
		if err != nil {
			return nil, err
		}
		better, err := beats(bestKey, k)
		if err != nil {
			return nil, err
		}
		if better {
			best, bestKey = item, k
		}
	}
	return best, nil
}

// Sorted returns a new stably sorted list of the items of iterable.
func (c *Catalog) Sorted(ctx context.Context, iterable, key, reverse any) (any, error) {
	rev, err := asIndex(reverse)
	if err != nil {
		return nil, err
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	keyOf := c.keyFunc(ctx, key)
	keys := make([]any, len(items))
	for i, item := range items {
		if keys[i], err = keyOf(item); err != nil {
			return nil, err
		}
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	var cmpErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if cmpErr != nil {
			return false
		}
		x, y := keys[idx[a]], keys[idx[b]]
		if rev != 0 {
			x, y = y, x
		}
		less, err := pyval.Less(x, y)
		if err != nil {
			cmpErr = err
		}
		return less
	})
	if cmpErr != nil {
		return nil, cmpErr
	}

	out := make([]any, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out, nil
}

// Map applies function to the items of the iterables in parallel, stopping
// at the shortest.
func (c *Catalog) Map(ctx context.Context, function, iterable any, iterables []any) (any, error) {
	zipped, err := Zip(append([]any{iterable}, iterables...))
	if err != nil {
		return nil, err
	}
	rows := zipped.([]any)
	out := make([]any, len(rows))
	for i, row := range rows {
		if out[i], err = c.Invoke(ctx, function, row.(pyval.Tuple)...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Filter keeps the items for which function returns a true value; with
// function None the items themselves are tested.
func (c *Catalog) Filter(ctx context.Context, function, iterable any) (any, error) {
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	test := c.keyFunc(ctx, function)
	out := make([]any, 0, len(items))
	for _, item := range items {
		v, err := test(item)
		if err != nil {
			return nil, err
		}
		if pyval.Truthy(v) {
			out = append(out, item)
		}
	}
	return out, nil
}
