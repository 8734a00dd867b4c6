package vault

import (
	"math"
	"math/big"
	"time"

	"github.com/tonsurance/vault/internal/util"
)

// sigmoidK and sigmoidT0 are the spec's fixed sigmoid-curve constants
// (spec section 4.1: k = 5, t0 = 0.5).
const (
	sigmoidK  = 5.0
	sigmoidT0 = 0.5
)

// curveValue computes the dimensionless NAV base multiplier for elapsed
// time t (in years) under the given curve, before the yield and loss
// adjustments of spec section 4.1 are applied. cap is only consulted for
// CurveCappedExponential; zero means "no cap".
func curveValue(id CurveID, aMax, t, cap float64) float64 {
	switch id {
	case CurveFlat, CurveLinear:
		return 1 + aMax*t
	case CurveLogarithmic:
		return 1 + aMax*math.Log1p(t)
	case CurveSigmoid:
		return 1 + aMax/(1+math.Exp(-sigmoidK*(t-sigmoidT0)))
	case CurveQuadratic:
		return 1 + aMax*t*t
	case CurveCappedExponential:
		v := 1 + aMax*(math.Exp(t)-1)
		if cap > 0 && v > cap {
			return cap
		}
		return v
	default:
		return 1
	}
}

// navBase returns the Ray-scaled NAV contribution of the time-elapsed
// bonding curve and absorbed losses alone, with accumulated_yield held at
// zero. NAV is navBase composed with the yield factor (see NAV and
// yieldFactorFor); splitting it out lets the EQT overflow check in
// DistributePremium (spec section 4.8 step 3) invert the NAV formula to
// find how much more yield the tranche can absorb before its cap trips.
func (t *Tranche) navBase(at time.Time) *big.Int {
	elapsedYears := at.Sub(t.Epoch).Hours() / (24 * 365)
	if elapsedYears < 0 {
		elapsedYears = 0
	}
	aMax := float64(t.ApyMaxBps) / util.BpsDenom
	base := curveValue(t.CurveID, aMax, elapsedYears, t.CapMultiplier)
	navRay := util.RayFromFloat(base)
	return util.MulRay(navRay, t.navLossFactor)
}

// yieldFactorFor returns Ray + DivRay(yield, capital), or exactly Ray if
// capital is zero (no yield accrues to an empty tranche).
func yieldFactorFor(yield, capital *big.Int) *big.Int {
	factor := new(big.Int).Set(util.Ray)
	if capital.Sign() > 0 {
		factor.Add(factor, util.DivRay(yield, capital))
	}
	return factor
}

// NAV returns the current Ray-scaled net asset value per share for the
// tranche, evaluated at wall-clock time `at`. It composes three factors
// per spec section 4.1: the time-elapsed bonding curve, the accumulated
// premium yield, and any losses already absorbed.
func (t *Tranche) NAV(at time.Time) *big.Int {
	base := t.navBase(at)
	return util.MulRay(base, yieldFactorFor(t.AccumulatedYield, t.Capital))
}

// SharesForDeposit converts a base-currency amount into the number of
// LP-token shares it buys at the tranche's current NAV, rounded down per
// spec section 4.1. nav is Ray-scaled; a NAV of exactly 1.0 (nav == Ray)
// mints one share per unit of base currency.
func SharesForDeposit(amountBase, nav *big.Int) *big.Int {
	return util.DivRay(amountBase, nav)
}

// PayoutForShares converts a share count back into base currency at the
// tranche's current NAV, rounded down; any rounding residual remains in
// the tranche per spec section 4.1.
func PayoutForShares(shares, nav *big.Int) *big.Int {
	return util.MulRay(shares, nav)
}
