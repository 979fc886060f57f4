package builtins

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interpagent/internal/pyval"
)

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	b, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return b
}

func TestNumericPrimitives(t *testing.T) {
	tests := []struct {
		name string
		call func() (any, error)
		want string
	}{
		{"abs int", func() (any, error) { return Abs(int64(-5)) }, "5"},
		{"abs bool", func() (any, error) { return Abs(true) }, "1"},
		{"abs min int64 promotes", func() (any, error) { return Abs(int64(math.MinInt64)) }, "9223372036854775808"},
		{"divmod floor", func() (any, error) { return Divmod(int64(-7), int64(2)) }, "(-4, 1)"},
		{"divmod float", func() (any, error) { return Divmod(7.5, int64(-2)) }, "(-4.0, -0.5)"},
		{"pow int", func() (any, error) { return Pow(int64(-2), int64(3), nil) }, "-8"},
		{"pow negative exp", func() (any, error) { return Pow(int64(2), int64(-1), nil) }, "0.5"},
		{"pow big", func() (any, error) { return Pow(int64(2), int64(100), nil) }, "1267650600228229401496703205376"},
		{"pow mod inverse", func() (any, error) { return Pow(int64(3), int64(-1), int64(7)) }, "5"},
		{"pow negative mod", func() (any, error) { return Pow(int64(2), int64(10), int64(-3)) }, "-2"},
		{"pow mod one", func() (any, error) { return Pow(int64(0), int64(-1), int64(1)) }, "0"},
		{"round half even", func() (any, error) { return Round(2.5, nil) }, "2"},
		{"round negative half", func() (any, error) { return Round(-2.5, nil) }, "-2"},
		{"round float digits", func() (any, error) { return Round(2.675, int64(2)) }, "2.67"},
		{"round int tens", func() (any, error) { return Round(int64(1250), int64(-2)) }, "1200"},
		{"round int tens up", func() (any, error) { return Round(int64(1350), int64(-2)) }, "1400"},
		{"round int keeps", func() (any, error) { return Round(int64(7), int64(3)) }, "7"},
		{"sum", func() (any, error) { return Sum([]any{int64(1), int64(2), int64(3)}, int64(10)) }, "16"},
		{"sum lists", func() (any, error) { return Sum([]any{[]any{int64(1)}, []any{int64(2)}}, []any{}) }, "[1, 2]"},
		{"bin", func() (any, error) { return Bin(int64(5)) }, "'0b101'"},
		{"oct negative", func() (any, error) { return Oct(int64(-8)) }, "'-0o10'"},
		{"hex big", func() (any, error) { return Hex(bigInt(t, "18446744073709551616")) }, "'0x10000000000000000'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.want, pyval.Repr(v))
		})
	}
}

func TestNumericErrors(t *testing.T) {
	tests := []struct {
		name string
		call func() (any, error)
		want string
	}{
		{"divmod zero", func() (any, error) { return Divmod(1.0, int64(0)) }, "ZeroDivisionError: float divmod()"},
		{"divmod str", func() (any, error) { return Divmod("a", int64(1)) }, "TypeError: unsupported operand type(s) for divmod(): 'str' and 'int'"},
		{"pow zero negative", func() (any, error) { return Pow(int64(0), int64(-1), nil) }, "ZeroDivisionError: 0.0 cannot be raised to a negative power"},
		{"pow mod zero", func() (any, error) { return Pow(int64(2), int64(3), int64(0)) }, "ValueError: pow() 3rd argument cannot be 0"},
		{"pow mod float", func() (any, error) { return Pow(2.0, int64(3), int64(5)) }, "TypeError: pow() 3rd argument not allowed unless all arguments are integers"},
		{"pow not invertible", func() (any, error) { return Pow(int64(2), int64(-1), int64(4)) }, "ValueError: base is not invertible for the given modulus"},
		{"round str", func() (any, error) { return Round("1", nil) }, "TypeError: type str doesn't define __round__ method"},
		{"round inf", func() (any, error) { return Round(math.Inf(1), nil) }, "OverflowError: cannot convert float infinity to integer"},
		{"sum str start", func() (any, error) { return Sum([]any{}, "") }, "TypeError: sum() can't sum strings [use ''.join(seq) instead]"},
		{"sum mixed", func() (any, error) { return Sum([]any{"a"}, int64(0)) }, "TypeError: unsupported operand type(s) for +: 'int' and 'str'"},
		{"bin float", func() (any, error) { return Bin(1.5) }, "TypeError: 'float' object cannot be interpreted as an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			assert.EqualError(t, err, tt.want)
		})
	}
}
