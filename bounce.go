package vault

import "fmt"

// HandleBounce implements spec section 4.10: the runtime reports that a
// dispatched mint or burn carrying tx_id was rejected by its recipient. A
// bounce for a tx that is no longer PENDING (already committed, already
// rolled back) is dropped — it is never surfaced as an error to whatever
// reported it.
func (v *Vault) HandleBounce(txID uint64) error {
	tx := v.pending.get(txID)
	if tx == nil || tx.Status != StatusPending {
		return nil
	}

	if tx.RetryCount >= v.maxBounceRetries {
		return v.exhaustBounce(tx)
	}

	retryCount, ok := v.pending.scheduleRetry(txID, v.now())
	if !ok {
		return nil
	}
	if retryCount == v.maxBounceRetries {
		// The increment that just happened used up the last retry; spec
		// section 4.10 step 3 rolls back immediately rather than waiting
		// for the backoff that was just scheduled to elapse.
		return v.exhaustBounce(tx)
	}
	v.persistPendingTx(tx)

	v.emit(VaultEvent{
		Kind:       EventBounceRetry,
		TxID:       txID,
		TrancheID:  tx.TrancheID,
		User:       &tx.User,
		RetryCount: retryCount,
		Message:    fmt.Sprintf("bounce on tx %d, scheduling retry %d", txID, retryCount),
	})
	return nil
}

// exhaustBounce rolls back a PendingTx whose retry budget is spent (spec
// section 4.10 step 3).
func (v *Vault) exhaustBounce(tx *PendingTx) error {
	t, err := v.requireTranche(tx.TrancheID)
	if err != nil {
		return err
	}

	switch tx.OpKind {
	case OpDeposit:
		v.rollbackDeposit(tx, t)
		v.pending.setStatus(tx.TxID, StatusRolledBack)
		v.locks.release(tx.TrancheID)
		v.persistDepositor(tx.User, tx.TrancheID)
		v.emit(VaultEvent{
			Kind:       EventDepositRolledBack,
			TxID:       tx.TxID,
			TrancheID:  tx.TrancheID,
			User:       &tx.User,
			AmountBase: tx.AmountBase,
			Message:    fmt.Sprintf("deposit tx %d rolled back after exhausting retries", tx.TxID),
		})
	case OpWithdraw:
		v.rollbackWithdraw(tx, t)
		v.pending.setStatus(tx.TxID, StatusRolledBack)
		v.locks.release(tx.TrancheID)
		v.persistDepositor(tx.User, tx.TrancheID)
		v.emit(VaultEvent{
			Kind:       EventWithdrawRolledBack,
			TxID:       tx.TxID,
			TrancheID:  tx.TrancheID,
			User:       &tx.User,
			AmountBase: tx.AmountBase,
			Message:    fmt.Sprintf("withdraw tx %d rolled back after exhausting retries", tx.TxID),
		})
	default:
		return fmt.Errorf("vault: bounce exhaustion for unsupported op kind %s on tx %d", tx.OpKind, tx.TxID)
	}

	v.attemptRefund(tx)
	v.pending.compact(tx.TxID)
	v.persistPendingTxDeleted(tx.TxID)
	return nil
}

// attemptRefund implements spec section 7's best-effort refund: when no
// RefundRail is configured the rollback above already made the user whole
// (there is nothing further that can bounce); when one is configured and
// its Refund call fails, the vault keeps the already-removed funds and
// emits REFUND_UNCLAIMED for an admin to sweep later rather than undoing
// the rollback.
func (v *Vault) attemptRefund(tx *PendingTx) {
	if v.refundRail == nil {
		return
	}
	if err := v.refundRail.Refund(tx.TxID, tx.User, tx.AmountBase); err != nil {
		v.emit(VaultEvent{
			Kind:       EventRefundUnclaimed,
			TxID:       tx.TxID,
			TrancheID:  tx.TrancheID,
			User:       &tx.User,
			AmountBase: tx.AmountBase,
			Message:    fmt.Sprintf("refund for tx %d could not be delivered; flagged for admin sweep", tx.TxID),
		})
	}
}
