package pyval

import (
	"math"
	"math/big"

	"github.com/cespare/xxhash/v2"
)

const (
	hashBits    = 61
	hashModulus = (1 << hashBits) - 1
	hashInf     = 314159
	hashNone    = 0xFCA86420

	xxPrime1 uint64 = 11400714785074694791
	xxPrime2 uint64 = 14029467366897019727
	xxPrime5 uint64 = 2870177450012600261
)

// Hash returns the interpreter hash of v. Numbers that compare equal hash
// equal; strings hash with xxhash; objects without a numeric identity hash
// their canonical key.
func Hash(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return hashNone, nil
	case bool, int64, *big.Int:
		b, _ := ToBig(x)
		return hashInt(b), nil
	case float64:
		return hashFloat(x), nil
	case string:
		return fixHash(int64(xxhash.Sum64String(x)), -2), nil
	case Tuple:
		return hashTuple(x)
	case *Set:
		if x.Frozen {
			return hashFrozenSet(x)
		}
	case Slice, Type, Method, Function:
		k, err := HashKey(x)
		if err != nil {
			return 0, err
		}
		return fixHash(int64(xxhash.Sum64String(k)), -2), nil
	}
	return 0, TypeErrorf("unhashable type: '%s'", TypeName(v))
}

func fixHash(h, replacement int64) int64 {
	if h == -1 {
		return replacement
	}
	return h
}

func hashInt(b *big.Int) int64 {
	m := new(big.Int).Abs(b)
	m.Mod(m, big.NewInt(hashModulus))
	h := m.Int64()
	if b.Sign() < 0 {
		h = -h
	}
	return fixHash(h, -2)
}

func hashFloat(f float64) int64 {
	switch {
	case math.IsInf(f, 1):
		return hashInf
	case math.IsInf(f, -1):
		return -hashInf
	case math.IsNaN(f):
		return 0
	}
	m, e := math.Frexp(f)
	sign := int64(1)
	if m < 0 {
		sign = -1
		m = -m
	}
	var x uint64
	for m != 0 {
		x = ((x << 28) & hashModulus) | x>>(hashBits-28)
		m *= 268435456.0
		e -= 28
		y := uint64(m)
		m -= float64(y)
		x += y
		if x >= hashModulus {
			x -= hashModulus
		}
	}
	if e >= 0 {
		e %= hashBits
	} else {
		e = hashBits - 1 - ((-1 - e) % hashBits)
	}
	x = ((x << uint(e)) & hashModulus) | x>>(hashBits-uint(e))
	return fixHash(int64(x)*sign, -2)
}

func hashTuple(t Tuple) (int64, error) {
	acc := xxPrime5
	for _, item := range t {
		lane, err := Hash(item)
		if err != nil {
			return 0, err
		}
		acc += uint64(lane) * xxPrime2
		acc = acc<<31 | acc>>33
		acc *= xxPrime1
	}
	acc += uint64(len(t)) ^ (xxPrime5 ^ 3527539)
	return fixHash(int64(acc), 1546275796), nil
}

func shuffleBits(h uint64) uint64 {
	return ((h ^ 89869747) ^ (h << 16)) * 3644798167
}

func hashFrozenSet(s *Set) (int64, error) {
	var h uint64
	for _, item := range s.items {
		eh, err := Hash(item)
		if err != nil {
			return 0, err
		}
		h ^= shuffleBits(uint64(eh))
	}
	h ^= uint64(s.Len()+1) * 1927868237
	h ^= (h >> 11) ^ (h >> 25)
	h = h*69069 + 907133923
	return fixHash(int64(h), 590923713), nil
}
