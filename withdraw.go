package vault

import (
	"fmt"
	"math/big"
)

// Withdraw implements phase A of spec section 4.7: it burns shares from the
// depositor ledger and records a PendingTx carrying the computed payout, but
// does not move any base currency yet. The payout is only released once
// HandleBurnAck fires.
func (v *Vault) Withdraw(user Address, trancheID TrancheID, sharesToBurn *big.Int) (txID uint64, err error) {
	if v.isPaused() {
		return 0, ErrPaused
	}
	if sharesToBurn == nil || sharesToBurn.Sign() <= 0 {
		return 0, fmt.Errorf("vault: shares_to_burn must be positive")
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

	if v.ledger.Balance(user, trancheID).Cmp(sharesToBurn) < 0 {
		v.locks.release(trancheID)
		return 0, ErrInsufficientBalance
	}

	nav := t.NAV(now)
	payout := PayoutForShares(sharesToBurn, nav)

	// Step 6: provisional decrement, before the burn is dispatched. The
	// double-spend window is closed here: shares are gone whether or not
	// the payout ever lands (spec section 4.7 step 9).
	if err := v.ledger.debit(user, trancheID, sharesToBurn); err != nil {
		v.locks.release(trancheID)
		return 0, err
	}
	v.addCapital(t, new(big.Int).Neg(payout))

	tx := v.pending.createWithID(id, OpWithdraw, user, trancheID, payout, sharesToBurn, now)
	v.persistPendingTx(tx)

	client, err := v.lpClients.Resolve(t.LPTokenRef)
	if err == nil {
		err = client.Burn(tx.TxID, user, sharesToBurn)
	}
	if err != nil {
		v.rollbackWithdraw(tx, t)
		v.locks.release(trancheID)
		return 0, fmt.Errorf("vault: dispatch burn for tx %d: %w", tx.TxID, err)
	}

	// The burn dispatched successfully: shares are gone for good (step 9),
	// so the ledger's new balance is write-through persisted here rather
	// than waiting for HandleBurnAck, which only ever affects the payout.
	v.persistDepositor(user, trancheID)
	return tx.TxID, nil
}

// HandleBurnAck is phase B of spec section 4.7: it commits the burn and
// releases the payout. A payout that itself cannot be delivered transitions
// the PendingTx to StatusRetryPayout rather than rolling anything back — the
// burn has already happened and is never undone.
func (v *Vault) HandleBurnAck(caller Address, txID uint64, payoutFailed bool) error {
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
		return nil
	}

	v.locks.release(tx.TrancheID)

	if payoutFailed {
		v.pending.setStatus(txID, StatusRetryPayout)
		v.persistPendingTx(tx)
		v.emit(VaultEvent{
			Kind:       EventBounceRetry,
			TxID:       txID,
			TrancheID:  tx.TrancheID,
			User:       &tx.User,
			AmountBase: tx.AmountBase,
			Message:    fmt.Sprintf("withdraw payout for tx %d could not be delivered; awaiting retry_payout", txID),
		})
		return nil
	}

	v.pending.setStatus(txID, StatusPaidOut)
	v.bumpSeq()
	v.emit(VaultEvent{
		Kind:         EventWithdrawCompleted,
		TxID:         txID,
		TrancheID:    tx.TrancheID,
		User:         &tx.User,
		AmountBase:   tx.AmountBase,
		AmountShares: tx.AmountShares,
		Message:      fmt.Sprintf("withdraw completed for tranche %s", tx.TrancheID),
	})
	v.pending.compact(txID)
	v.persistPendingTxDeleted(txID)
	return nil
}

// RetryPayout resends a payout that previously landed in StatusRetryPayout
// (spec section 6, RETRY_PAYOUT). It succeeds exactly once: any call after
// the first returns ErrAlreadyPaid.
func (v *Vault) RetryPayout(caller Address, txID uint64) error {
	tx := v.pending.get(txID)
	if tx == nil {
		return ErrUnknownTx
	}
	if caller != tx.User {
		return ErrUnauthorized
	}
	if tx.Status != StatusRetryPayout {
		return ErrAlreadyPaid
	}

	v.pending.setStatus(txID, StatusPaidOut)
	v.bumpSeq()
	v.emit(VaultEvent{
		Kind:         EventWithdrawCompleted,
		TxID:         txID,
		TrancheID:    tx.TrancheID,
		User:         &tx.User,
		AmountBase:   tx.AmountBase,
		AmountShares: tx.AmountShares,
		Message:      fmt.Sprintf("withdraw payout for tx %d delivered on retry", txID),
	})
	// The paid-out entry stays in the table so that a repeated call for
	// this tx is answered with ErrAlreadyPaid rather than ErrUnknownTx.
	v.persistPendingTx(tx)
	return nil
}

// rollbackWithdraw reverses the provisional mutation of spec section 4.7
// step 6: balance and capital restored, burn never dispatched successfully.
func (v *Vault) rollbackWithdraw(tx *PendingTx, t *Tranche) {
	v.addCapital(t, new(big.Int).Set(tx.AmountBase))
	v.ledger.refundCredit(tx.User, tx.TrancheID, tx.AmountShares, v.now())
}
