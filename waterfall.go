package vault

import (
	"fmt"
	"math/big"

	"github.com/tonsurance/vault/internal/util"
)

// AbsorbLoss implements the loss waterfall of spec section 4.9: losses are
// applied EQT (6) -> JNR_PLUS (5) -> JNR (4) -> MEZZ (3) -> SNR (2) -> BTC
// (1), each tranche absorbing min(remaining_loss, tranche.capital) and
// taking a proportional NAV haircut. It is synchronous and gated by the
// circuit breaker rather than a tranche lock, mirroring the design note in
// spec section 5 that loss absorption may skip per-tranche locks since the
// claims-processor capability is exclusive.
func (v *Vault) AbsorbLoss(caller Address, gas GasBudget, lossAmount *big.Int) error {
	if err := v.requireClaimsProcessor(caller); err != nil {
		return err
	}
	if v.isPaused() {
		return ErrPaused
	}
	if err := v.checkGas(gas); err != nil {
		return err
	}
	if lossAmount == nil || lossAmount.Sign() <= 0 {
		return fmt.Errorf("vault: loss_amount must be positive")
	}

	totalCapital := v.registry.TotalCapital()
	tripped, _ := v.cb.admit(lossAmount, totalCapital, v.now())
	if tripped {
		v.setPaused(true)
		v.emit(VaultEvent{
			Kind:       EventCircuitBreakerTripped,
			AmountBase: lossAmount,
			Message:    "rolling 24h loss window exceeded 10% of capital at window start",
		})
		return ErrCircuitBreakerTripped
	}

	remaining := new(big.Int).Set(lossAmount)
	perTranche := make(map[TrancheID]*big.Int, 6)

	for _, id := range waterfallOrder {
		if remaining.Sign() == 0 {
			break
		}
		t := v.registry.Get(id)
		absorbed := util.Min(remaining, t.Capital)
		if absorbed.Sign() == 0 {
			continue
		}
		v.applyLoss(t, absorbed)
		remaining.Sub(remaining, absorbed)
		perTranche[id] = absorbed
		v.persistTrancheSnapshot(t, v.now())
	}

	v.mu.Lock()
	v.state.AccumulatedLosses.Add(v.state.AccumulatedLosses, lossAmount)
	v.mu.Unlock()

	if remaining.Sign() > 0 {
		v.setPaused(true)
		v.emit(VaultEvent{
			Kind:       EventInsolvent,
			AmountBase: lossAmount,
			Message:    fmt.Sprintf("loss of %s exceeds total capital across all tranches by %s", lossAmount.String(), remaining.String()),
		})
		return ErrInsolvent
	}

	v.bumpSeq()
	v.emit(VaultEvent{
		Kind:       EventLossAbsorbed,
		AmountBase: lossAmount,
		PerTranche: perTranche,
		Message:    fmt.Sprintf("absorbed loss of %s across the waterfall", lossAmount.String()),
	})
	return nil
}

// applyLoss decrements a tranche's capital by absorbed and applies the
// proportional NAV haircut of spec section 4.9 step 2: navLossFactor is
// scaled down by the same fraction the tranche's capital just lost.
func (v *Vault) applyLoss(t *Tranche, absorbed *big.Int) {
	if t.Capital.Sign() > 0 {
		retained := new(big.Int).Sub(t.Capital, absorbed)
		fraction := util.DivRay(retained, t.Capital)
		t.navLossFactor = util.MulRay(t.navLossFactor, fraction)
	}
	v.addCapital(t, new(big.Int).Neg(absorbed))
}
