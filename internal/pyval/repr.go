package pyval

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Repr returns the interpreter representation of v, as repr() would.
func Repr(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v, false)
	return sb.String()
}

// Ascii is Repr with every non-ASCII rune escaped.
func Ascii(v any) string {
	var sb strings.Builder
	writeRepr(&sb, v, true)
	return sb.String()
}

// Str returns the informal string form of v, as str() would.
func Str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return Repr(v)
}

func writeRepr(sb *strings.Builder, v any, ascii bool) {
	switch x := v.(type) {
	case nil:
		sb.WriteString("None")
	case bool:
		if x {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case int64:
		sb.WriteString(strconv.FormatInt(x, 10))
	case *big.Int:
		sb.WriteString(x.String())
	case float64:
		sb.WriteString(FloatRepr(x))
	case string:
		sb.WriteString(QuoteString(x, ascii))
	case []any:
		sb.WriteByte('[')
		writeItems(sb, x, ascii)
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('(')
		writeItems(sb, x, ascii)
		if len(x) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *Dict:
		sb.WriteByte('{')
		for i := range x.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, x.keys[i], ascii)
			sb.WriteString(": ")
			writeRepr(sb, x.vals[i], ascii)
		}
		sb.WriteByte('}')
	case *Set:
		switch {
		case x.Len() == 0 && x.Frozen:
			sb.WriteString("frozenset()")
		case x.Len() == 0:
			sb.WriteString("set()")
		default:
			if x.Frozen {
				sb.WriteString("frozenset(")
			}
			sb.WriteByte('{')
			writeItems(sb, x.items, ascii)
			sb.WriteByte('}')
			if x.Frozen {
				sb.WriteByte(')')
			}
		}
	case Slice:
		sb.WriteString("slice(")
		writeItems(sb, []any{x.Start, x.Stop, x.Step}, ascii)
		sb.WriteByte(')')
	case Type:
		sb.WriteString("<class '" + x.Name + "'>")
	case Method:
		sb.WriteString("<built-in method " + x.Name + " of " + x.Receiver + " object>")
	case Function:
		sb.WriteString("<function " + x.Name + ">")
	default:
		sb.WriteString("<object>")
	}
}

func writeItems(sb *strings.Builder, items []any, ascii bool) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, item, ascii)
	}
}

// QuoteString quotes s with single quotes unless it contains a single quote
// and no double quote.
func QuoteString(s string, ascii bool) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			sb.WriteString(`\x` + hex2(int(r)))
		case r < 0x80:
			sb.WriteRune(r)
		case ascii || !unicode.IsPrint(r):
			sb.WriteString(escapeRune(r))
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func escapeRune(r rune) string {
	switch {
	case r <= 0xff:
		return `\x` + hex2(int(r))
	case r <= 0xffff:
		return `\u` + padHex(int64(r), 4)
	default:
		return `\U` + padHex(int64(r), 8)
	}
}

func hex2(n int) string {
	return padHex(int64(n), 2)
}

func padHex(n int64, width int) string {
	s := strconv.FormatInt(n, 16)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// FloatRepr renders f with the shortest digits that round-trip, switching to
// scientific notation outside 1e-4 <= |f| < 1e16.
func FloatRepr(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)
	if exp < -4 || exp >= 16 {
		sign := "+"
		if exp < 0 {
			sign = "-"
			exp = -exp
		}
		es := strconv.Itoa(exp)
		if len(es) < 2 {
			es = "0" + es
		}
		return mant + "e" + sign + es
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
