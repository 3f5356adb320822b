package services

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Round2 rounds v to two decimal places. The exact binary value of v is
// rounded half to even, so 2.675 becomes 2.67 and 0.125 becomes 0.12.
// NaN and infinities cannot be represented in the JSON response and are
// reported as errors.
func Round2(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("model returned a non-finite value: %v", v)
	}
	rounded, _ := exactDecimal(v).RoundBank(2).Float64()
	return rounded, nil
}

// exactDecimal は float64 が表す値を誤差なく decimal に変換します。
// v = mantissa * 2^exp で exp < 0 のとき、mantissa * 5^-exp * 10^exp と等しくなります。
func exactDecimal(v float64) decimal.Decimal {
	frac, exp := math.Frexp(v)
	mantissa := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53

	if exp >= 0 {
		return decimal.NewFromBigInt(mantissa.Lsh(mantissa, uint(exp)), 0)
	}
	scale := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(scale.Mul(scale, mantissa), int32(exp))
}
