package vault

import (
	"fmt"
	"math/big"
	"time"
)

// Persister is the write-through persistence hook invoked at every
// committed state transition named in SPEC_FULL.md section 4.14: deposit
// commit, withdraw commit, rollback, loss absorption and premium
// distribution. Implemented by internal/db's VaultStore; Config.Store is
// nil by default, in which case every persist* helper below is a no-op and
// the vault behaves exactly as it did before this hook existed.
type Persister interface {
	SavePendingTx(tx *PendingTx) error
	DeletePendingTx(txID uint64) error
	SaveDepositor(user Address, trancheID TrancheID, balance *big.Int, firstDepositTS time.Time) error
	DeleteDepositor(user Address, trancheID TrancheID) error
	SaveTrancheSnapshot(t *Tranche, at time.Time) error
}

// persistPendingTx write-throughs tx at creation and on every retry
// reschedule, so a crash mid-flight leaves enough on disk for
// RedispatchDue (once rehydrated) to pick the transaction back up.
func (v *Vault) persistPendingTx(tx *PendingTx) {
	if v.store == nil {
		return
	}
	if err := v.store.SavePendingTx(tx); err != nil {
		v.emit(VaultEvent{
			Kind:      EventPersistenceFailed,
			TxID:      tx.TxID,
			TrancheID: tx.TrancheID,
			Message:   fmt.Sprintf("failed to persist pending tx %d: %v", tx.TxID, err),
		})
	}
}

// persistPendingTxDeleted mirrors pendingTable.compact: the durable twin
// is removed in lockstep with the in-memory entry.
func (v *Vault) persistPendingTxDeleted(txID uint64) {
	if v.store == nil {
		return
	}
	if err := v.store.DeletePendingTx(txID); err != nil {
		v.emit(VaultEvent{
			Kind:    EventPersistenceFailed,
			TxID:    txID,
			Message: fmt.Sprintf("failed to delete persisted pending tx %d: %v", txID, err),
		})
	}
}

// persistDepositor write-throughs user's current ledger entry in
// trancheID, or deletes the durable row if the ledger already
// garbage-collected a zero balance.
func (v *Vault) persistDepositor(user Address, trancheID TrancheID) {
	if v.store == nil {
		return
	}
	var err error
	if entry, ok := v.ledger.Entry(user, trancheID); ok {
		err = v.store.SaveDepositor(user, trancheID, entry.Balance, entry.FirstDepositTS)
	} else {
		err = v.store.DeleteDepositor(user, trancheID)
	}
	if err != nil {
		u := user
		v.emit(VaultEvent{
			Kind:      EventPersistenceFailed,
			TrancheID: trancheID,
			User:      &u,
			Message:   fmt.Sprintf("failed to persist depositor %s/%s: %v", user.Hex(), trancheID, err),
		})
	}
}

// persistTrancheSnapshot write-throughs one tranche's capital,
// accumulated_yield, protocol_earned_overflow and computed NAV as of at.
func (v *Vault) persistTrancheSnapshot(t *Tranche, at time.Time) {
	if v.store == nil {
		return
	}
	if err := v.store.SaveTrancheSnapshot(t, at); err != nil {
		v.emit(VaultEvent{
			Kind:      EventPersistenceFailed,
			TrancheID: t.ID,
			Message:   fmt.Sprintf("failed to persist tranche snapshot for %s: %v", t.ID, err),
		})
	}
}

// SeedPendingTx restores a PendingTx read back from durable storage at
// process start. A still-PENDING entry also reacquires its tranche lock
// (from now, not its original acquisition time) so a freshly submitted
// deposit/withdraw on the same tranche cannot race ahead of it before the
// bounce dispatcher has a chance to redispatch or retire it.
func (v *Vault) SeedPendingTx(tx *PendingTx) {
	v.pending.seed(tx)
	if tx.Status == StatusPending {
		_ = v.locks.acquire(tx.TrancheID, tx.TxID, v.now())
	}
}

// SeedDepositor restores a depositor ledger entry read back from durable
// storage at process start. It does not touch tranche or vault-wide
// capital counters; those are restored separately via SeedTrancheState
// from the latest tranche snapshot.
func (v *Vault) SeedDepositor(user Address, trancheID TrancheID, balance *big.Int, firstDepositTS time.Time) {
	v.ledger.seed(user, trancheID, balance, firstDepositTS)
}

// SeedTrancheState restores one tranche's durable capital,
// accumulated_yield and protocol_earned_overflow from its latest snapshot
// at process start, folding capital into the vault-wide total_capital
// counter. The tranche's navLossFactor is not part of the snapshot and so
// is not restored here; it resets to 1.0 on every process start, a
// recognized limitation recorded in DESIGN.md.
func (v *Vault) SeedTrancheState(id TrancheID, capital, accumulatedYield, protocolEarnedOverflow *big.Int) error {
	t, err := v.requireTranche(id)
	if err != nil {
		return err
	}
	t.Capital.Set(capital)
	t.AccumulatedYield.Set(accumulatedYield)
	t.ProtocolEarnedOverflow.Set(protocolEarnedOverflow)

	v.mu.Lock()
	v.state.TotalCapital.Add(v.state.TotalCapital, capital)
	v.mu.Unlock()
	return nil
}
