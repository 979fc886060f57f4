// Package pyval models the interpreter values that flow through the
// primitive catalog.
//
// Mapping:
//
//	None      -> nil
//	bool      -> bool
//	int       -> int64, promoted to *big.Int when it does not fit
//	float     -> float64
//	str       -> string
//	list      -> []any
//	tuple     -> Tuple
//	dict      -> *Dict (insertion ordered)
//	set       -> *Set (insertion ordered, Frozen for frozenset)
package pyval

import (
	"math/big"
)

// Tuple is an immutable sequence.
type Tuple []any

// Slice is the value produced by slice(start, stop, step).
type Slice struct {
	Start any
	Stop  any
	Step  any
}

// Type is a class object such as <class 'int'>.
type Type struct {
	Name string
}

// Method is a bound built-in method, e.g. the result of getattr([], "append").
type Method struct {
	Name     string
	Receiver string
}

// Function is a named callable in the catalog scope.
type Function struct {
	Name string
}

// Dict is an insertion-ordered mapping keyed by hashable values.
type Dict struct {
	keys  []any
	vals  []any
	index map[string]int
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set stores v under k, replacing an equal key's value but keeping its
// original position and key object.
func (d *Dict) Set(k, v any) error {
	hk, err := HashKey(k)
	if err != nil {
		return err
	}
	if i, ok := d.index[hk]; ok {
		d.vals[i] = v
		return nil
	}
	d.index[hk] = len(d.keys)
	d.keys = append(d.keys, k)
	d.vals = append(d.vals, v)
	return nil
}

// Get looks up k.
func (d *Dict) Get(k any) (any, bool, error) {
	hk, err := HashKey(k)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[hk]
	if !ok {
		return nil, false, nil
	}
	return d.vals[i], true, nil
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	out := make([]any, len(d.keys))
	copy(out, d.keys)
	return out
}

// Values returns the values in insertion order.
func (d *Dict) Values() []any {
	out := make([]any, len(d.vals))
	copy(out, d.vals)
	return out
}

// Items returns (key, value) tuples in insertion order.
func (d *Dict) Items() []Tuple {
	out := make([]Tuple, len(d.keys))
	for i := range d.keys {
		out[i] = Tuple{d.keys[i], d.vals[i]}
	}
	return out
}

// Set is an insertion-ordered collection of unique hashable values.
type Set struct {
	items  []any
	index  map[string]struct{}
	Frozen bool
}

// NewSet returns an empty set (or frozenset).
func NewSet(frozen bool) *Set {
	return &Set{index: make(map[string]struct{}), Frozen: frozen}
}

// Add inserts v unless an equal value is present.
func (s *Set) Add(v any) error {
	hk, err := HashKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.index[hk]; ok {
		return nil
	}
	s.index[hk] = struct{}{}
	s.items = append(s.items, v)
	return nil
}

// Has reports membership.
func (s *Set) Has(v any) (bool, error) {
	hk, err := HashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.index[hk]
	return ok, nil
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.items)
}

// Items returns the members in insertion order.
func (s *Set) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// TypeName returns the class name of v.
func TypeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int64, *big.Int:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case []any:
		return "list"
	case Tuple:
		return "tuple"
	case *Dict:
		return "dict"
	case *Set:
		if x.Frozen {
			return "frozenset"
		}
		return "set"
	case Slice:
		return "slice"
	case Type:
		return "type"
	case Method:
		return "builtin_function_or_method"
	case Function:
		return "function"
	default:
		return "object"
	}
}

// Truthy implements truth-value testing.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case *big.Int:
		return x.Sign() != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case Tuple:
		return len(x) > 0
	case *Dict:
		return x.Len() > 0
	case *Set:
		return x.Len() > 0
	default:
		return true
	}
}

// Iterate returns the items produced by iterating v.
func Iterate(v any) ([]any, error) {
	switch x := v.(type) {
	case []any:
		return x, nil
	case Tuple:
		return []any(x), nil
	case string:
		out := make([]any, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	case *Dict:
		return x.Keys(), nil
	case *Set:
		return x.Items(), nil
	default:
		return nil, TypeErrorf("'%s' object is not iterable", TypeName(v))
	}
}
