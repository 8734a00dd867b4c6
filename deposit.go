package vault

import (
	"fmt"
	"math/big"
)

// Deposit implements spec section 4.6. It is the only entry point that
// creates a PendingTx of kind OpDeposit.
func (v *Vault) Deposit(user Address, trancheID TrancheID, amountBase *big.Int, gas GasBudget) (txID uint64, err error) {
	if v.isPaused() {
		return 0, ErrPaused
	}
	if err := v.checkGas(gas); err != nil {
		return 0, err
	}
	if amountBase == nil || amountBase.Sign() <= 0 {
		return 0, fmt.Errorf("vault: deposit amount must be positive")
	}

	t, err := v.requireTranche(trancheID)
	if err != nil {
		return 0, err
	}

	now := v.now()
	id := v.pending.reserveID()
	if err := v.locks.acquire(trancheID, id, now); err != nil {
		return 0, err
	}

	nav := t.NAV(now)
	shares := SharesForDeposit(amountBase, nav)
	if shares.Sign() <= 0 {
		v.locks.release(trancheID)
		return 0, fmt.Errorf("vault: deposit amount too small to mint any shares at current NAV")
	}

	// Step 5: provisional state mutation, applied before the external
	// call is dispatched so the vault's state is self-consistent at the
	// suspension point (spec section 5).
	v.addCapital(t, amountBase)
	v.ledger.credit(user, trancheID, shares, now)

	tx := v.pending.createWithID(id, OpDeposit, user, trancheID, amountBase, shares, now)
	v.persistPendingTx(tx)

	client, err := v.lpClients.Resolve(t.LPTokenRef)
	if err == nil {
		err = client.Mint(tx.TxID, user, shares)
	}
	if err != nil {
		// The external collaborator rejected or couldn't accept the call
		// at dispatch time; treat it as an immediate bounce exhaustion
		// rather than parking a PendingTx nothing will ever acknowledge.
		v.rollbackDeposit(tx, t)
		v.locks.release(trancheID)
		v.pending.compact(tx.TxID)
		v.persistPendingTxDeleted(tx.TxID)
		return 0, fmt.Errorf("vault: dispatch mint for tx %d: %w", tx.TxID, err)
	}

	return tx.TxID, nil
}

// HandleMintAck commits a DEPOSIT PendingTx on receipt of the external
// mint acknowledgement (spec section 4.6, "On ack (commit)"). caller must
// be the lp_token_ref of tx.TrancheID.
func (v *Vault) HandleMintAck(caller Address, txID uint64) error {
	tx := v.pending.get(txID)
	if tx == nil {
		return ErrUnknownTx
	}
	t, err := v.requireTranche(tx.TrancheID)
	if err != nil {
		return err
	}
	if caller != t.LPTokenRef {
		return ErrUnauthorized
	}
	if tx.Status != StatusPending {
		// A bounce arriving for a COMMITTED tx is ignored (spec 4.10); the
		// symmetric case (an ack for an already-terminal tx) is likewise
		// a no-op.
		return nil
	}

	v.pending.setStatus(txID, StatusCommitted)
	v.locks.release(tx.TrancheID)
	v.bumpSeq()
	v.emit(VaultEvent{
		Kind:         EventDepositCommitted,
		TxID:         txID,
		TrancheID:    tx.TrancheID,
		User:         &tx.User,
		AmountBase:   tx.AmountBase,
		AmountShares: tx.AmountShares,
		Message:      fmt.Sprintf("deposit committed for tranche %s", tx.TrancheID),
	})
	v.persistDepositor(tx.User, tx.TrancheID)
	v.pending.compact(txID)
	v.persistPendingTxDeleted(txID)
	return nil
}

// rollbackDeposit reverses the provisional mutation of spec section 4.6
// step 5: capital restored, shares removed.
func (v *Vault) rollbackDeposit(tx *PendingTx, t *Tranche) {
	v.addCapital(t, new(big.Int).Neg(tx.AmountBase))
	_ = v.ledger.debit(tx.User, tx.TrancheID, tx.AmountShares)
}
