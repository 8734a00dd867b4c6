package vault

import "fmt"

// RedispatchDue re-sends the external mint/burn call for every PendingTx
// whose backoff window has elapsed (spec section 4.10: "the runtime ...
// is responsible for re-dispatching the external call on or after
// next_retry_ts"). It is the hook pkg/retrydispatch.Dispatcher polls on an
// interval; HandleBounce/HandleMintAck/HandleBurnAck remain the entry
// points that actually advance a PendingTx's state.
func (v *Vault) RedispatchDue() int {
	now := v.now()
	due := v.pending.dueForRetry(now)
	redispatched := 0
	for _, tx := range due {
		t, err := v.requireTranche(tx.TrancheID)
		if err != nil {
			continue
		}
		client, err := v.lpClients.Resolve(t.LPTokenRef)
		if err != nil {
			continue
		}

		switch tx.OpKind {
		case OpDeposit:
			err = client.Mint(tx.TxID, tx.User, tx.AmountShares)
		case OpWithdraw:
			err = client.Burn(tx.TxID, tx.User, tx.AmountShares)
		default:
			continue
		}
		if err != nil {
			// Dispatch itself failed again; treated as another bounce
			// rather than silently dropped, so the retry counter still
			// advances toward MaxBounceRetries.
			_ = v.HandleBounce(tx.TxID)
			continue
		}
		redispatched++
		v.emit(VaultEvent{
			Kind:       EventBounceRetry,
			TxID:       tx.TxID,
			TrancheID:  tx.TrancheID,
			User:       &tx.User,
			RetryCount: tx.RetryCount,
			Message:    fmt.Sprintf("redispatched tx %d on retry %d", tx.TxID, tx.RetryCount),
		})
	}
	return redispatched
}
