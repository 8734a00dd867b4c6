// Package util provides fixed-point arithmetic helpers shared by the NAV
// engine and the waterfall processor. All vault money math is done in
// *big.Int minor units; NAV itself is scaled by Ray so that it carries at
// least nine fractional digits of precision, per the curve formulas in
// spec section 4.1.
package util

import (
	"math"
	"math/big"
)

// Ray is the fixed-point scale used for NAV and ratio values: one "unit" of
// NAV equals Ray. Nine zeros gives nine decimal digits of precision.
var Ray = big.NewInt(1_000_000_000)

// BpsDenom is the basis-points denominator (10_000 bps == 100%).
const BpsDenom = 10_000

// RayFromFloat converts a float64 into a Ray-scaled *big.Int, rounding to
// the nearest unit.
func RayFromFloat(f float64) *big.Int {
	scaled := f * float64(Ray.Int64())
	return big.NewInt(int64(math.Round(scaled)))
}

// RayToFloat converts a Ray-scaled *big.Int back to a float64. Only used
// for reporting/logging; never for state-mutating arithmetic.
func RayToFloat(r *big.Int) float64 {
	f := new(big.Float).SetInt(r)
	f.Quo(f, new(big.Float).SetInt(Ray))
	out, _ := f.Float64()
	return out
}

// MulRay multiplies two Ray-scaled values, returning a Ray-scaled result:
// (a * b) / Ray.
func MulRay(a, b *big.Int) *big.Int {
	out := new(big.Int).Mul(a, b)
	return out.Quo(out, Ray)
}

// DivRay divides two Ray-scaled values, returning a Ray-scaled result:
// (a * Ray) / b. Panics on division by zero; callers must guard capital==0.
func DivRay(a, b *big.Int) *big.Int {
	out := new(big.Int).Mul(a, Ray)
	return out.Quo(out, b)
}

// BpsOf returns amount * bps / BpsDenom, rounded down. Used for premium
// allocation and circuit-breaker thresholds.
func BpsOf(amount *big.Int, bps uint32) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(bps)))
	return out.Quo(out, big.NewInt(BpsDenom))
}

// DivDown divides a by b, rounding toward zero (floor for non-negative
// operands), used for share/payout conversions where the spec requires
// rounding down and leaving the residual in the tranche.
func DivDown(a, b *big.Int) *big.Int {
	return new(big.Int).Quo(a, b)
}

// Min returns the smaller of a and b without mutating either.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
