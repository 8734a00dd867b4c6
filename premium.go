package vault

import (
	"fmt"
	"math/big"
	"time"

	"github.com/tonsurance/vault/internal/util"
)

// eqtNavCap is the 1.25 NAV ceiling on EQT's accumulated_yield share, spec
// section 4.8 step 3 (the same cap used by EQT's capped-exponential curve).
var eqtNavCap = util.RayFromFloat(1.25)

// DistributePremium implements spec section 4.8: premium is split across
// all six tranches by allocation_bps, with EQT's share above the 1.25 NAV
// cap diverted into protocol_earned_overflow instead of accumulated_yield.
// It is globally serialized by the reentrancy guard rather than a tranche
// lock, since it touches all six tranches in one call.
func (v *Vault) DistributePremium(caller Address, premiumAmount *big.Int) error {
	if err := v.requireFactory(caller); err != nil {
		return err
	}
	if v.isPaused() {
		return ErrPaused
	}
	if premiumAmount == nil || premiumAmount.Sign() <= 0 {
		return fmt.Errorf("vault: premium_amount must be positive")
	}
	if err := v.guard.enter(); err != nil {
		return err
	}
	defer v.guard.exit()

	now := v.now()
	perTranche := make(map[TrancheID]*big.Int, 6)

	v.registry.Each(func(t *Tranche) {
		share := util.BpsOf(premiumAmount, t.AllocationBps)
		if share.Sign() == 0 {
			perTranche[t.ID] = share
			return
		}

		if t.ID == EQT {
			share = v.applyEQTOverflow(t, share, now)
		}
		t.AccumulatedYield.Add(t.AccumulatedYield, share)
		perTranche[t.ID] = share
		v.persistTrancheSnapshot(t, now)
	})

	v.mu.Lock()
	v.state.AccumulatedPremiums.Add(v.state.AccumulatedPremiums, premiumAmount)
	v.mu.Unlock()

	v.bumpSeq()
	v.emit(VaultEvent{
		Kind:       EventPremiumDistributed,
		AmountBase: premiumAmount,
		PerTranche: perTranche,
		Message:    fmt.Sprintf("distributed premium of %s", premiumAmount.String()),
	})
	return nil
}

// applyEQTOverflow caps how much of share may be added to EQT's
// accumulated_yield so that NAV(EQT) never exceeds eqtNavCap, routing any
// excess into ProtocolEarnedOverflow. Returns the (possibly reduced)
// amount that should still be credited to accumulated_yield.
//
// NAV = navBase * yieldFactor, yieldFactor = Ray + DivRay(yield, capital).
// Inverting for the yield at which NAV == eqtNavCap gives the maximum
// accumulated_yield the tranche can carry; anything share would push it
// past that ceiling is overflow instead.
func (v *Vault) applyEQTOverflow(t *Tranche, share *big.Int, now time.Time) *big.Int {
	if t.Capital.Sign() <= 0 {
		// An empty EQT tranche has no capital base for a yield ratio;
		// all of its premium share is protocol overflow until capital
		// is deposited.
		t.ProtocolEarnedOverflow.Add(t.ProtocolEarnedOverflow, share)
		return big.NewInt(0)
	}

	base := t.navBase(now)
	maxYieldFactor := util.DivRay(eqtNavCap, base)
	var maxYield *big.Int
	if maxYieldFactor.Cmp(util.Ray) <= 0 {
		maxYield = big.NewInt(0)
	} else {
		maxYield = util.MulRay(new(big.Int).Sub(maxYieldFactor, util.Ray), t.Capital)
	}

	projected := new(big.Int).Add(t.AccumulatedYield, share)
	if projected.Cmp(maxYield) <= 0 {
		return share
	}

	allowed := new(big.Int).Sub(maxYield, t.AccumulatedYield)
	if allowed.Sign() < 0 {
		allowed = big.NewInt(0)
	}
	overflow := new(big.Int).Sub(share, allowed)
	t.ProtocolEarnedOverflow.Add(t.ProtocolEarnedOverflow, overflow)
	return allowed
}
