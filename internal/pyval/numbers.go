package pyval

import (
	"math"
	"math/big"
	"sort"
	"strconv"
)

// IsInt reports whether v is an int (bool included, as it subclasses int).
func IsInt(v any) bool {
	switch v.(type) {
	case bool, int64, *big.Int:
		return true
	}
	return false
}

// IsNumber reports whether v is an int or a float.
func IsNumber(v any) bool {
	if _, ok := v.(float64); ok {
		return true
	}
	return IsInt(v)
}

// ToBig converts an int value to a fresh *big.Int.
func ToBig(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case bool:
		if x {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case int64:
		return big.NewInt(x), true
	case *big.Int:
		return new(big.Int).Set(x), true
	}
	return nil, false
}

// NormInt returns b as int64 when it fits, otherwise b itself.
func NormInt(b *big.Int) any {
	if b.IsInt64() {
		return b.Int64()
	}
	return b
}

// ToFloat converts a number to float64.
func ToFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int64:
		return float64(x), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		if math.IsInf(f, 0) {
			return 0, Errorf(OverflowError, "int too large to convert to float")
		}
		return f, nil
	}
	return 0, TypeErrorf("must be real number, not %s", TypeName(v))
}

// compareNumbers orders two numbers exactly. ok is false when a NaN is
// involved, in which case every ordering comparison is false.
func compareNumbers(a, b any) (cmp int, ok bool) {
	ab, aInt := ToBig(a)
	bb, bInt := ToBig(b)
	if aInt && bInt {
		return ab.Cmp(bb), true
	}
	af := toBigFloat(a)
	bf := toBigFloat(b)
	if af == nil || bf == nil {
		return 0, false
	}
	return af.Cmp(bf), true
}

func toBigFloat(v any) *big.Float {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) {
			return nil
		}
		return new(big.Float).SetFloat64(f)
	}
	b, _ := ToBig(v)
	return new(big.Float).SetInt(b)
}

// Equal implements ==.
func Equal(a, b any) bool {
	if IsNumber(a) && IsNumber(b) {
		c, ok := compareNumbers(a, b)
		return ok && c == 0
	}
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case []any:
		y, ok := b.([]any)
		return ok && equalItems(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && equalItems(x, y)
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.keys {
			v, found, err := y.Get(k)
			if err != nil || !found || !Equal(x.vals[i], v) {
				return false
			}
		}
		return true
	case *Set:
		y, ok := b.(*Set)
		return ok && x.Len() == y.Len() && subset(x, y)
	case Slice:
		y, ok := b.(Slice)
		return ok && Equal(x.Start, y.Start) && Equal(x.Stop, y.Stop) && Equal(x.Step, y.Step)
	case Type:
		y, ok := b.(Type)
		return ok && x.Name == y.Name
	case Method:
		y, ok := b.(Method)
		return ok && x == y
	case Function:
		y, ok := b.(Function)
		return ok && x == y
	}
	return false
}

func equalItems(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func subset(a, b *Set) bool {
	for _, v := range a.items {
		if ok, _ := b.Has(v); !ok {
			return false
		}
	}
	return true
}

// Less implements <. Mixed, unordered types raise TypeError.
func Less(a, b any) (bool, error) {
	if IsNumber(a) && IsNumber(b) {
		c, ok := compareNumbers(a, b)
		return ok && c < 0, nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x < y, nil
		}
	case []any:
		if y, ok := b.([]any); ok {
			return lessItems(x, y)
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return lessItems(x, y)
		}
	case *Set:
		if y, ok := b.(*Set); ok {
			return x.Len() < y.Len() && subset(x, y), nil
		}
	}
	return false, TypeErrorf("'<' not supported between instances of '%s' and '%s'", TypeName(a), TypeName(b))
}

func lessItems(a, b []any) (bool, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Equal(a[i], b[i]) {
			continue
		}
		return Less(a[i], b[i])
	}
	return len(a) < len(b), nil
}

// Add implements binary +.
func Add(a, b any) (any, error) {
	if IsNumber(a) && IsNumber(b) {
		ab, aInt := ToBig(a)
		bb, bInt := ToBig(b)
		if aInt && bInt {
			return NormInt(ab.Add(ab, bb)), nil
		}
		af, err := ToFloat(a)
		if err != nil {
			return nil, err
		}
		bf, err := ToFloat(b)
		if err != nil {
			return nil, err
		}
		return af + bf, nil
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return x + y, nil
		}
	case []any:
		if y, ok := b.([]any); ok {
			out := make([]any, 0, len(x)+len(y))
			return append(append(out, x...), y...), nil
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			out := make(Tuple, 0, len(x)+len(y))
			return append(append(out, x...), y...), nil
		}
	}
	return nil, TypeErrorf("unsupported operand type(s) for +: '%s' and '%s'", TypeName(a), TypeName(b))
}

// HashKey returns a canonical identity string for a hashable value. Values
// that compare equal (True, 1 and 1.0) share a key.
func HashKey(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "N", nil
	case bool, int64, *big.Int:
		b, _ := ToBig(x)
		return "i:" + b.String(), nil
	case float64:
		if !math.IsInf(x, 0) && !math.IsNaN(x) && x == math.Trunc(x) {
			b, _ := new(big.Float).SetFloat64(x).Int(nil)
			return "i:" + b.String(), nil
		}
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return lenKey("s", x), nil
	case Tuple:
		key := "t("
		for i, item := range x {
			k, err := HashKey(item)
			if err != nil {
				return "", err
			}
			if i > 0 {
				key += ","
			}
			key += k
		}
		return key + ")", nil
	case *Set:
		if !x.Frozen {
			break
		}
		keys := make([]string, 0, len(x.index))
		for k := range x.index {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		key := "fs{"
		for i, k := range keys {
			if i > 0 {
				key += ","
			}
			key += k
		}
		return key + "}", nil
	case Slice:
		return lenKey("sl", Repr(x)), nil
	case Type:
		return lenKey("T", x.Name), nil
	case Method:
		return lenKey("M", x.Receiver) + lenKey(".", x.Name), nil
	case Function:
		return lenKey("F", x.Name), nil
	}
	return "", TypeErrorf("unhashable type: '%s'", TypeName(v))
}

// lenKey length-prefixes s so composite keys cannot be forged by element
// text containing separators.
func lenKey(tag, s string) string {
	return tag + strconv.Itoa(len(s)) + ":" + s
}
