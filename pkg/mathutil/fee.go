package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TenThousands is the denominator of fee rates expressed in basis points.
var TenThousands = uint64(10000)

// FeeAmount calculates the fee levied on an amount given a fee expressed
// in basis points (ie. 0.25% = 25). The result is rounded down.
func FeeAmount(amount uint64, feeAsBasisPoint uint32) (uint64, error) {
	return fraction(amount, uint64(feeAsBasisPoint), TenThousands)
}

// PercentAmount calculates pct% of an amount, rounded down. pct must be
// in [0, 100].
func PercentAmount(amount uint64, pct uint32) (uint64, error) {
	return fraction(amount, uint64(pct), 100)
}

// LessFee returns the amount with the fee subtracted along with the
// calculated fee.
func LessFee(amount uint64, feeAsBasisPoint uint32) (withoutFee, calculatedFee uint64, err error) {
	calculatedFee, err = FeeAmount(amount, feeAsBasisPoint)
	if err != nil {
		return
	}
	withoutFee, err = Sub(amount, calculatedFee)
	return
}

func fraction(amount, num, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrDivisionByZero
	}
	amountDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	numDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(num), 0)
	denDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(den), 0)

	quo, _ := amountDecimal.Mul(numDecimal).QuoRem(denDecimal, 0)
	z := quo.BigInt()
	if !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}
