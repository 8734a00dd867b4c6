package vault

import "math/big"

// TotalCapital returns the vault-wide total_capital counter.
func (v *Vault) TotalCapital() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.state.TotalCapital)
}

// TrancheCapital returns tranche id's current capital, or an error if id
// is not one of the six fixed tranches.
func (v *Vault) TrancheCapital(id TrancheID) (*big.Int, error) {
	t, err := v.requireTranche(id)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(t.Capital), nil
}

// TrancheNAV returns tranche id's current Ray-scaled NAV per share.
func (v *Vault) TrancheNAV(id TrancheID) (*big.Int, error) {
	t, err := v.requireTranche(id)
	if err != nil {
		return nil, err
	}
	return t.NAV(v.now()), nil
}

// TrancheAPY returns tranche id's configured [apy_min_bps, apy_max_bps]
// range.
func (v *Vault) TrancheAPY(id TrancheID) (minBps, maxBps uint16, err error) {
	t, terr := v.requireTranche(id)
	if terr != nil {
		return 0, 0, terr
	}
	return t.ApyMinBps, t.ApyMaxBps, nil
}

// DepositorBalance returns user's share balance in tranche id.
func (v *Vault) DepositorBalance(user Address, id TrancheID) (*big.Int, error) {
	if !id.valid() {
		return nil, ErrInvalidTranche
	}
	return v.ledger.Balance(user, id), nil
}

// IsPaused reports whether the vault currently rejects new business
// operations.
func (v *Vault) IsPaused() bool {
	return v.isPaused()
}

// AccumulatedPremiums returns the vault-wide cumulative premium intake.
func (v *Vault) AccumulatedPremiums() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.state.AccumulatedPremiums)
}

// AccumulatedLosses returns the vault-wide cumulative absorbed losses.
func (v *Vault) AccumulatedLosses() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.state.AccumulatedLosses)
}

// CircuitBreakerStatus returns a snapshot of the rolling-window loss
// limiter's current state.
func (v *Vault) CircuitBreakerStatus() CircuitBreakerStatus {
	return v.cb.status()
}
