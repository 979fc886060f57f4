package builtins

import (
	"math"
	"math/big"

	"interpagent/internal/pyval"
)

// maxPowBits bounds the size of an exact integer power.
const maxPowBits = 1 << 24

// Abs returns the absolute value of a number.
func Abs(x any) (any, error) {
	switch v := x.(type) {
	case float64:
		return math.Abs(v), nil
	case bool, int64, *big.Int:
		b, _ := pyval.ToBig(v)
		return pyval.NormInt(b.Abs(b)), nil
	}
	return nil, pyval.TypeErrorf("bad operand type for abs(): '%s'", pyval.TypeName(x))
}

// Divmod returns (a // b, a % b) with floor semantics.
func Divmod(a, b any) (any, error) {
	if !pyval.IsNumber(a) || !pyval.IsNumber(b) {
		return nil, pyval.TypeErrorf("unsupported operand type(s) for divmod(): '%s' and '%s'", pyval.TypeName(a), pyval.TypeName(b))
	}
	ab, aInt := pyval.ToBig(a)
	bb, bInt := pyval.ToBig(b)
	if aInt && bInt {
		if bb.Sign() == 0 {
			return nil, pyval.Errorf(pyval.ZeroDivisionError, "integer division or modulo by zero")
		}
		q, r := floorDivMod(ab, bb)
		return pyval.Tuple{pyval.NormInt(q), pyval.NormInt(r)}, nil
	}
	x, err := pyval.ToFloat(a)
	if err != nil {
		return nil, err
	}
	y, err := pyval.ToFloat(b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, pyval.Errorf(pyval.ZeroDivisionError, "float divmod()")
	}
	q, r := floatDivMod(x, y)
	return pyval.Tuple{q, r}, nil
}

func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		q.Sub(q, big.NewInt(1))
		r.Add(r, b)
	}
	return q, r
}

func floatDivMod(x, y float64) (float64, float64) {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 {
		if (y < 0) != (mod < 0) {
			mod += y
			div -= 1
		}
	} else {
		mod = math.Copysign(0, y)
	}
	var floordiv float64
	if div != 0 {
		floordiv = math.Floor(div)
		if div-floordiv > 0.5 {
			floordiv += 1
		}
	} else {
		floordiv = math.Copysign(0, x/y)
	}
	return floordiv, mod
}

// Pow returns base**exp, or base**exp % mod when mod is not None.
func Pow(base, exp, mod any) (any, error) {
	if mod != nil {
		return powMod(base, exp, mod)
	}
	if !pyval.IsNumber(base) || !pyval.IsNumber(exp) {
		return nil, pyval.TypeErrorf("unsupported operand type(s) for ** or pow(): '%s' and '%s'", pyval.TypeName(base), pyval.TypeName(exp))
	}
	bb, bInt := pyval.ToBig(base)
	eb, eInt := pyval.ToBig(exp)
	if bInt && eInt && eb.Sign() >= 0 {
		if bb.BitLen() > 1 && (!eb.IsInt64() || int64(bb.BitLen())*eb.Int64() > maxPowBits) {
			return nil, pyval.Errorf(pyval.MemoryError, "integer power result too large")
		}
		return pyval.NormInt(new(big.Int).Exp(bb, eb, nil)), nil
	}
	x, err := pyval.ToFloat(base)
	if err != nil {
		return nil, err
	}
	y, err := pyval.ToFloat(exp)
	if err != nil {
		return nil, err
	}
	return floatPow(x, y)
}

func floatPow(x, y float64) (any, error) {
	if x == 0 && y < 0 {
		return nil, pyval.Errorf(pyval.ZeroDivisionError, "0.0 cannot be raised to a negative power")
	}
	if x < 0 && y != math.Trunc(y) && !math.IsInf(y, 0) {
		return nil, pyval.ValueErrorf("negative number cannot be raised to a fractional power")
	}
	r := math.Pow(x, y)
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return nil, pyval.Errorf(pyval.OverflowError, "(34, 'Numerical result out of range')")
	}
	return r, nil
}

func powMod(base, exp, mod any) (any, error) {
	bb, bInt := pyval.ToBig(base)
	eb, eInt := pyval.ToBig(exp)
	mb, mInt := pyval.ToBig(mod)
	if !bInt || !eInt || !mInt {
		return nil, pyval.TypeErrorf("pow() 3rd argument not allowed unless all arguments are integers")
	}
	if mb.Sign() == 0 {
		return nil, pyval.ValueErrorf("pow() 3rd argument cannot be 0")
	}
	m := new(big.Int).Abs(mb)
	if m.Cmp(big.NewInt(1)) == 0 {
		return int64(0), nil
	}
	b := new(big.Int).Mod(bb, m)
	if eb.Sign() < 0 {
		inv := new(big.Int).ModInverse(b, m)
		if inv == nil {
			return nil, pyval.ValueErrorf("base is not invertible for the given modulus")
		}
		b = inv
		eb = new(big.Int).Neg(eb)
	}
	r := new(big.Int).Exp(b, eb, m)
	if mb.Sign() < 0 && r.Sign() != 0 {
		r.Add(r, mb)
	}
	return pyval.NormInt(r), nil
}

// Round rounds number to ndigits decimal places (half to even). With
// ndigits None the result is an int.
func Round(number, ndigits any) (any, error) {
	if !pyval.IsNumber(number) {
		return nil, pyval.TypeErrorf("type %s doesn't define __round__ method", pyval.TypeName(number))
	}
	if ndigits == nil {
		if f, ok := number.(float64); ok {
			return roundToInt(f)
		}
		b, _ := pyval.ToBig(number)
		return pyval.NormInt(b), nil
	}
	nd, err := asIndex(ndigits)
	if err != nil {
		return nil, err
	}
	if f, ok := number.(float64); ok {
		return roundFloat(f, nd)
	}
	b, _ := pyval.ToBig(number)
	if nd >= 0 {
		return pyval.NormInt(b), nil
	}
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(-nd), nil)
	q, r := floorDivMod(b, pow)
	twice := new(big.Int).Lsh(r, 1)
	if c := twice.Cmp(pow); c > 0 || (c == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(1))
	}
	return pyval.NormInt(q.Mul(q, pow)), nil
}

func roundToInt(f float64) (any, error) {
	switch {
	case math.IsInf(f, 0):
		return nil, pyval.Errorf(pyval.OverflowError, "cannot convert float infinity to integer")
	case math.IsNaN(f):
		return nil, pyval.ValueErrorf("cannot convert float NaN to integer")
	}
	r := math.RoundToEven(f)
	b, _ := new(big.Float).SetFloat64(r).Int(nil)
	return pyval.NormInt(b), nil
}

func roundFloat(f float64, nd int64) (any, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) || f == 0 || nd > 330 {
		return f, nil
	}
	if nd < -330 {
		return math.Copysign(0, f), nil
	}
	scale := new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(abs64(nd)), nil))
	x := new(big.Rat).SetFloat64(f)
	if nd >= 0 {
		x.Mul(x, scale)
	} else {
		x.Quo(x, scale)
	}
	n := roundRatHalfEven(x)
	y := new(big.Rat).SetInt(n)
	if nd >= 0 {
		y.Quo(y, scale)
	} else {
		y.Mul(y, scale)
	}
	out, _ := y.Float64()
	if math.IsInf(out, 0) {
		return nil, pyval.Errorf(pyval.OverflowError, "rounded value too large to represent")
	}
	if out == 0 {
		out = math.Copysign(0, f)
	}
	return out, nil
}

func roundRatHalfEven(x *big.Rat) *big.Int {
	q, r := floorDivMod(x.Num(), x.Denom())
	twice := new(big.Int).Lsh(r, 1)
	if c := twice.Cmp(x.Denom()); c > 0 || (c == 0 && q.Bit(0) == 1) {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Sum adds start and every item of iterable, left to right.
func Sum(iterable, start any) (any, error) {
	if _, ok := start.(string); ok {
		return nil, pyval.TypeErrorf("sum() can't sum strings [use ''.join(seq) instead]")
	}
	items, err := pyval.Iterate(iterable)
	if err != nil {
		return nil, err
	}
	acc := start
	for _, item := range items {
		if acc, err = pyval.Add(acc, item); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// Bin converts an integer to a binary string prefixed with "0b".
func Bin(number any) (any, error) {
	return intToBase(number, 2, "0b")
}

// Oct converts an integer to an octal string prefixed with "0o".
func Oct(number any) (any, error) {
	return intToBase(number, 8, "0o")
}

// Hex converts an integer to a lowercase hexadecimal string prefixed with "0x".
func Hex(number any) (any, error) {
	return intToBase(number, 16, "0x")
}

func intToBase(number any, base int, prefix string) (any, error) {
	b, ok := pyval.ToBig(number)
	if !ok {
		return nil, pyval.TypeErrorf("'%s' object cannot be interpreted as an integer", pyval.TypeName(number))
	}
	sign := ""
	if b.Sign() < 0 {
		sign = "-"
		b.Neg(b)
	}
	return sign + prefix + b.Text(base), nil
}
