package builtins

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"interpagent/internal/pyval"
)

// maxFormatField bounds width and precision; larger values would have the
// interpreter allocate the whole field.
const maxFormatField = 1 << 20

// formatSpec is a parsed format-spec mini-language string:
// [[fill]align][sign][z][#][0][width][grouping][.precision][type]
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	noNegZero bool
	alt       bool
	width     int
	grouping  byte
	precision int // -1 when absent
	typ       byte
}

func parseFormatSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	invalid := pyval.ValueErrorf("Invalid format specifier '%s'", spec)

	rs := []rune(spec)
	i := 0
	isAlign := func(r rune) bool { return r == '<' || r == '>' || r == '^' || r == '=' }
	switch {
	case len(rs) >= 2 && isAlign(rs[1]):
		fs.fill, fs.align = rs[0], byte(rs[1])
		i = 2
	case len(rs) >= 1 && isAlign(rs[0]):
		fs.align = byte(rs[0])
		i = 1
	}
	if i < len(rs) && (rs[i] == '+' || rs[i] == '-' || rs[i] == ' ') {
		fs.sign = byte(rs[i])
		i++
	}
	if i < len(rs) && rs[i] == 'z' {
		fs.noNegZero = true
		i++
	}
	if i < len(rs) && rs[i] == '#' {
		fs.alt = true
		i++
	}
	if i < len(rs) && rs[i] == '0' {
		if fs.align == 0 {
			fs.fill, fs.align = '0', '='
		}
		i++
	}
	start := i
	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		i++
	}
	if i > start {
		w, err := parseFormatField(string(rs[start:i]))
		if err != nil {
			return fs, err
		}
		fs.width = w
	}
	if i < len(rs) && (rs[i] == ',' || rs[i] == '_') {
		fs.grouping = byte(rs[i])
		i++
	}
	if i < len(rs) && rs[i] == '.' {
		i++
		start = i
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			i++
		}
		if i == start {
			return fs, pyval.ValueErrorf("Format specifier missing precision")
		}
		p, err := parseFormatField(string(rs[start:i]))
		if err != nil {
			return fs, err
		}
		fs.precision = p
	}
	if i < len(rs) {
		if i != len(rs)-1 || rs[i] >= utf8.RuneSelf {
			return fs, invalid
		}
		fs.typ = byte(rs[i])
	}
	return fs, nil
}

func parseFormatField(digits string) (int, error) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, pyval.ValueErrorf("Too many decimal digits in format string")
	}
	if n > maxFormatField {
		return 0, pyval.Errorf(pyval.MemoryError, "format field of %d characters", n)
	}
	return int(n), nil
}

// Format converts value to a formatted representation controlled by
// formatSpec.
func Format(value, formatSpec any) (any, error) {
	spec, ok := formatSpec.(string)
	if !ok {
		return nil, pyval.TypeErrorf("format() argument 2 must be str, not %s", pyval.TypeName(formatSpec))
	}
	if spec == "" {
		return pyval.Str(value), nil
	}
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case string:
		return formatString(v, fs)
	case bool, int64, *big.Int:
		return formatInt(v, fs)
	case float64:
		return formatFloat(v, fs)
	}
	return nil, pyval.TypeErrorf("unsupported format string passed to %s.__format__", pyval.TypeName(value))
}

func formatString(s string, fs formatSpec) (any, error) {
	if fs.typ != 0 && fs.typ != 's' {
		return nil, unknownCode(fs.typ, "str")
	}
	if fs.sign != 0 {
		return nil, pyval.ValueErrorf("Sign not allowed in string format specifier")
	}
	if fs.alt {
		return nil, pyval.ValueErrorf("Alternate form (#) not allowed in string format specifier")
	}
	if fs.align == '=' {
		return nil, pyval.ValueErrorf("'=' alignment not allowed in string format specifier")
	}
	if fs.grouping != 0 {
		return nil, pyval.ValueErrorf("Cannot specify '%c' with 's'.", fs.grouping)
	}
	if fs.precision >= 0 && utf8.RuneCountInString(s) > fs.precision {
		s = string([]rune(s)[:fs.precision])
	}
	return pad("", s, fs, '<'), nil
}

func formatInt(v any, fs formatSpec) (any, error) {
	switch fs.typ {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		f, err := pyval.ToFloat(v)
		if err != nil {
			return nil, err
		}
		return formatFloat(f, fs)
	}
	if fs.precision >= 0 {
		return nil, pyval.ValueErrorf("Precision not allowed in integer format specifier")
	}
	b, _ := pyval.ToBig(v)
	neg := b.Sign() < 0
	b.Abs(b)

	var digits, prefix string
	groupEvery := 3
	switch fs.typ {
	case 0, 'd', 'n':
		digits = b.Text(10)
	case 'b':
		digits, prefix, groupEvery = b.Text(2), "0b", 4
	case 'o':
		digits, prefix, groupEvery = b.Text(8), "0o", 4
	case 'x':
		digits, prefix, groupEvery = b.Text(16), "0x", 4
	case 'X':
		digits, prefix, groupEvery = strings.ToUpper(b.Text(16)), "0X", 4
	case 'c':
		if fs.sign != 0 {
			return nil, pyval.ValueErrorf("Sign not allowed with integer format specifier 'c'")
		}
		if neg || !b.IsInt64() || b.Int64() > utf8.MaxRune {
			return nil, pyval.Errorf(pyval.OverflowError, "%%c arg not in range(0x110000)")
		}
		return pad("", string(rune(b.Int64())), fs, '>'), nil
	default:
		return nil, unknownCode(fs.typ, "int")
	}
	if fs.grouping == ',' && groupEvery != 3 {
		return nil, pyval.ValueErrorf("Cannot specify ',' with '%c'.", fs.typ)
	}
	if fs.grouping != 0 {
		digits = group(digits, groupEvery, fs.grouping)
	}
	if !fs.alt {
		prefix = ""
	}
	return pad(signOf(neg, fs.sign)+prefix, digits, fs, '>'), nil
}

func formatFloat(f float64, fs formatSpec) (any, error) {
	typ := fs.typ
	prec := fs.precision
	switch typ {
	case 0, 'n':
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		if prec < 0 {
			prec = 6
		}
	default:
		return nil, unknownCode(typ, "float")
	}

	neg := math.Signbit(f) && !math.IsNaN(f)
	a := math.Abs(f)
	if typ == '%' {
		a *= 100
	}

	var body string
	switch {
	case math.IsInf(a, 0):
		body = "inf"
	case math.IsNaN(a):
		body = "nan"
	case typ == 'e' || typ == 'E':
		body = strconv.FormatFloat(a, 'e', prec, 64)
		if fs.alt && prec == 0 {
			body = strings.Replace(body, "e", ".e", 1)
		}
	case typ == 'f' || typ == 'F' || typ == '%':
		body = strconv.FormatFloat(a, 'f', prec, 64)
		if fs.alt && prec == 0 {
			body += "."
		}
	case typ == 'g' || typ == 'G':
		body = formatGeneral(a, prec, fs.alt)
	case prec < 0:
		body = pyval.FloatRepr(a)
	default:
		body = formatGeneral(a, prec, fs.alt)
		if !strings.ContainsAny(body, ".e") {
			body += ".0"
		}
	}
	if typ == 'E' || typ == 'F' || typ == 'G' {
		body = strings.ToUpper(body)
	}
	if neg && fs.noNegZero && isZeroText(body) {
		neg = false
	}
	if fs.grouping != 0 && !math.IsInf(a, 0) && !math.IsNaN(a) {
		intPart, rest := body, ""
		if k := strings.IndexAny(body, ".eE"); k >= 0 {
			intPart, rest = body[:k], body[k:]
		}
		body = group(intPart, 3, fs.grouping) + rest
	}
	if typ == '%' {
		body += "%"
	}
	return pad(signOf(neg, fs.sign), body, fs, '>'), nil
}

// formatGeneral implements the 'g' presentation: scientific notation when
// the exponent is below -4 or at least the precision, trailing zeros
// removed unless alt is set.
func formatGeneral(a float64, prec int, alt bool) string {
	if prec == 0 {
		prec = 1
	}
	sci := strconv.FormatFloat(a, 'e', prec-1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	var s string
	if exp < -4 || exp >= prec {
		s = sci
	} else {
		s = strconv.FormatFloat(a, 'f', prec-1-exp, 64)
	}
	if alt {
		if !strings.Contains(s, ".") {
			if k := strings.IndexByte(s, 'e'); k >= 0 {
				s = s[:k] + "." + s[k:]
			} else {
				s += "."
			}
		}
		return s
	}
	mant, tail := s, ""
	if k := strings.IndexByte(s, 'e'); k >= 0 {
		mant, tail = s[:k], s[k:]
	}
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(strings.TrimRight(mant, "0"), ".")
	}
	return mant + tail
}

func isZeroText(s string) bool {
	return strings.Trim(s, "0.%eE+-") == ""
}

func signOf(neg bool, sign byte) string {
	switch {
	case neg:
		return "-"
	case sign == '+':
		return "+"
	case sign == ' ':
		return " "
	}
	return ""
}

func group(digits string, every int, sep byte) string {
	if len(digits) <= every {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % every
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += every {
		if sb.Len() > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(digits[i : i+every])
	}
	return sb.String()
}

// pad applies width, fill and alignment. '=' places the padding between
// the sign/prefix and the digits.
func pad(prefix, body string, fs formatSpec, defaultAlign byte) string {
	n := utf8.RuneCountInString(prefix) + utf8.RuneCountInString(body)
	if n >= fs.width {
		return prefix + body
	}
	fill := strings.Repeat(string(fs.fill), fs.width-n)
	align := fs.align
	if align == 0 {
		align = defaultAlign
	}
	switch align {
	case '<':
		return prefix + body + fill
	case '>':
		return fill + prefix + body
	case '^':
		left := (fs.width - n) / 2
		lr := []rune(fill)
		return string(lr[:left]) + prefix + body + string(lr[left:])
	default:
		return prefix + fill + body
	}
}

func unknownCode(typ byte, typeName string) error {
	return pyval.ValueErrorf("Unknown format code '%c' for object of type '%s'", typ, typeName)
}
