package mathutil

import (
	"errors"
	"math"
	"math/big"
)

var (
	// ErrOverflow is returned when a result does not fit in a uint64.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrUnderflow is returned when a subtraction would go below zero.
	ErrUnderflow = errors.New("arithmetic underflow")
	// ErrDivisionByZero ...
	ErrDivisionByZero = errors.New("division by zero")
)

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Add returns x + y, failing instead of wrapping around.
func Add(x, y uint64) (uint64, error) {
	X, Y := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	z := new(big.Int).Add(X, Y)
	if z.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// Sub returns x - y, failing if y > x.
func Sub(x, y uint64) (uint64, error) {
	if y > x {
		return 0, ErrUnderflow
	}
	return x - y, nil
}

// Mul returns x * y, failing instead of wrapping around.
func Mul(x, y uint64) (uint64, error) {
	X, Y := new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)
	z := new(big.Int).Mul(X, Y)
	if z.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// MulDiv returns x * num / den computed over a widened integer and
// rounded down, so that the intermediate product never wraps. This is
// the primitive behind every proportional split in the settlement
// arithmetic.
func MulDiv(x, num, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrDivisionByZero
	}
	X, N, D := new(big.Int).SetUint64(x),
		new(big.Int).SetUint64(num),
		new(big.Int).SetUint64(den)
	z := new(big.Int).Quo(new(big.Int).Mul(X, N), D)
	if z.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}
