package vault

import (
	"fmt"
	"math/big"
)

// Pause implements PAUSE (spec section 6): admin-only, unconditional.
func (v *Vault) Pause(caller Address) error {
	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	v.setPaused(true)
	v.emit(VaultEvent{Kind: EventPaused, Message: "vault paused by admin"})
	return nil
}

// Unpause implements UNPAUSE (spec section 6). The admin can clear the
// paused flag but cannot touch losses_in_window directly (spec section
// 4.11) — the circuit breaker's own window rolls forward independently.
func (v *Vault) Unpause(caller Address) error {
	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	v.setPaused(false)
	v.emit(VaultEvent{Kind: EventUnpaused, Message: "vault unpaused by admin"})
	return nil
}

// SetTrancheToken binds tranche id's lp_token_ref exactly once (spec
// section 6): a second call for the same tranche fails with
// ErrTokenAlreadySet, regardless of whether addr matches what is already
// set. The caller is expected to have already registered a matching
// lptoken.Client for addr in the vault's client registry.
func (v *Vault) SetTrancheToken(caller Address, trancheID TrancheID, addr Address) error {
	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	t, err := v.requireTranche(trancheID)
	if err != nil {
		return err
	}
	if t.LPTokenSet {
		return ErrTokenAlreadySet
	}
	t.LPTokenRef = addr
	t.LPTokenSet = true
	return nil
}

// SetTrancheParams updates a tranche's APY range, curve and allocation
// (spec section 6). Only the admin may call it; the tranche's capital,
// accumulated_yield and navLossFactor are untouched.
func (v *Vault) SetTrancheParams(caller Address, trancheID TrancheID, apyMinBps, apyMaxBps uint16, curveID CurveID, allocationBps uint32) error {
	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	t, err := v.requireTranche(trancheID)
	if err != nil {
		return err
	}
	t.ApyMinBps = apyMinBps
	t.ApyMaxBps = apyMaxBps
	t.CurveID = curveID
	t.AllocationBps = allocationBps
	return nil
}

// FlushEQTOverflow transfers EQT's protocol_earned_overflow out to target
// (spec section 6). There is no external contract to acknowledge — the
// transfer is modeled as an immediate, synchronous event since the
// recipient is the protocol treasury, not a tranche LP-token contract.
func (v *Vault) FlushEQTOverflow(caller Address, target Address) error {
	if err := v.requireAdmin(caller); err != nil {
		return err
	}
	t, err := v.requireTranche(EQT)
	if err != nil {
		return err
	}
	if t.ProtocolEarnedOverflow.Sign() == 0 {
		return nil
	}

	amount := t.ProtocolEarnedOverflow
	t.ProtocolEarnedOverflow = big.NewInt(0)
	v.emit(VaultEvent{
		Kind:       EventProtocolOverflowFlushed,
		TrancheID:  EQT,
		User:       &target,
		AmountBase: amount,
		Message:    fmt.Sprintf("flushed %s of EQT protocol overflow to %s", amount.String(), target.Hex()),
	})
	return nil
}
