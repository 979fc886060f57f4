package builtins

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"interpagent/internal/pyval"
	"interpagent/internal/tools"
)

// Bool returns the truth value of x.
func Bool(x any) (any, error) {
	return pyval.Truthy(x), nil
}

// Int converts x to an integer. base is tools.Unset unless supplied, in
// which case x must be a string.
func Int(x, base any) (any, error) {
	if !tools.IsUnset(base) {
		b, err := asIndex(base)
		if err != nil {
			return nil, err
		}
		s, ok := x.(string)
		if !ok {
			return nil, pyval.TypeErrorf("int() can't convert non-string with explicit base")
		}
		if b != 0 && (b < 2 || b > 36) {
			return nil, pyval.ValueErrorf("int() base must be >= 2 and <= 36, or 0")
		}
		return parseIntLiteral(s, int(b))
	}
	switch v := x.(type) {
	case bool, int64, *big.Int:
		b, _ := pyval.ToBig(v)
		return pyval.NormInt(b), nil
	case float64:
		switch {
		case math.IsInf(v, 0):
			return nil, pyval.Errorf(pyval.OverflowError, "cannot convert float infinity to integer")
		case math.IsNaN(v):
			return nil, pyval.ValueErrorf("cannot convert float NaN to integer")
		}
		b, _ := new(big.Float).SetFloat64(math.Trunc(v)).Int(nil)
		return pyval.NormInt(b), nil
	case string:
		return parseIntLiteral(v, 10)
	}
	return nil, pyval.TypeErrorf("int() argument must be a string, a bytes-like object or a real number, not '%s'", pyval.TypeName(x))
}

// parseIntLiteral accepts surrounding whitespace, a sign, single underscores
// between digits and, for bases 0, 2, 8 and 16, the matching prefix.
func parseIntLiteral(s string, base int) (any, error) {
	invalid := pyval.ValueErrorf("invalid literal for int() with base %d: %s", base, pyval.Repr(s))

	t := strings.TrimSpace(s)
	neg := false
	if t != "" && (t[0] == '+' || t[0] == '-') {
		neg = t[0] == '-'
		t = t[1:]
	}

	prefixed := false
	if len(t) >= 2 && t[0] == '0' {
		pb := 0
		switch t[1] {
		case 'x', 'X':
			pb = 16
		case 'o', 'O':
			pb = 8
		case 'b', 'B':
			pb = 2
		}
		if pb != 0 && (base == 0 || base == pb) {
			base = pb
			t = t[2:]
			prefixed = true
		}
	}
	if base == 0 {
		base = 10
		if strings.TrimLeft(t, "0_") != "" && strings.HasPrefix(t, "0") {
			return nil, invalid
		}
	}
	if prefixed && strings.HasPrefix(t, "_") {
		t = t[1:]
	}
	if t == "" || t[0] == '_' || t[len(t)-1] == '_' || strings.Contains(t, "__") {
		return nil, invalid
	}

	digits := strings.ReplaceAll(t, "_", "")
	for _, r := range digits {
		if digitValue(r) >= base {
			return nil, invalid
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, invalid
	}
	if neg {
		n.Neg(n)
	}
	return pyval.NormInt(n), nil
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	}
	return 99
}

var floatLiteral = regexp.MustCompile(`^[+-]?(?:\d(?:_?\d)*(?:\.(?:\d(?:_?\d)*)?)?|\.\d(?:_?\d)*)(?:[eE][+-]?\d(?:_?\d)*)?$`)

// Float converts x to a floating point number.
func Float(x any) (any, error) {
	switch v := x.(type) {
	case float64:
		return v, nil
	case bool, int64, *big.Int:
		return pyval.ToFloat(v)
	case string:
		return parseFloatLiteral(v)
	}
	return nil, pyval.TypeErrorf("float() argument must be a string or a real number, not '%s'", pyval.TypeName(x))
}

func parseFloatLiteral(s string) (any, error) {
	t := strings.TrimSpace(s)
	body, sign := t, 1
	if body != "" && (body[0] == '+' || body[0] == '-') {
		if body[0] == '-' {
			sign = -1
		}
		body = body[1:]
	}
	switch strings.ToLower(body) {
	case "inf", "infinity":
		return math.Inf(sign), nil
	case "nan":
		return math.NaN(), nil
	}
	if !floatLiteral.MatchString(t) {
		return nil, pyval.ValueErrorf("could not convert string to float: %s", pyval.Repr(s))
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(t, "_", ""), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, pyval.ValueErrorf("could not convert string to float: %s", pyval.Repr(s))
	}
	return f, nil
}

// Str returns the informal string form of obj.
func Str(obj any) (any, error) {
	return pyval.Str(obj), nil
}

// Repr returns the printable representation of obj.
func Repr(obj any) (any, error) {
	return pyval.Repr(obj), nil
}

// Ascii is Repr with non-ASCII characters escaped.
func Ascii(obj any) (any, error) {
	return pyval.Ascii(obj), nil
}

// Chr returns the one-character string for code point i.
func Chr(i any) (any, error) {
	n, err := asIndex(i)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > utf8.MaxRune {
		return nil, pyval.ValueErrorf("chr() arg not in range(0x110000)")
	}
	return string(rune(n)), nil
}

// Ord returns the code point of a one-character string.
func Ord(c any) (any, error) {
	s, ok := c.(string)
	if !ok {
		return nil, pyval.TypeErrorf("ord() expected string of length 1, but %s found", pyval.TypeName(c))
	}
	if n := utf8.RuneCountInString(s); n != 1 {
		return nil, pyval.TypeErrorf("ord() expected a character, but string of length %d found", n)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return int64(r), nil
}
