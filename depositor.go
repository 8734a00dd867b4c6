package vault

import (
	"math/big"
	"sync"
	"time"
)

// DepositorEntry is a per-(user, tranche) balance record, spec section 3.
type DepositorEntry struct {
	Balance        *big.Int
	FirstDepositTS time.Time
}

// depositorKey is the composite map key for the ledger.
type depositorKey struct {
	user      Address
	trancheID TrancheID
}

// Ledger is the depositor ledger of spec section 4.3: a mapping from
// (user, tranche_id) to DepositorEntry. Entries with a zero balance are
// garbage-collected on every mutation.
type Ledger struct {
	mu      sync.RWMutex
	entries map[depositorKey]*DepositorEntry
}

func newLedger() *Ledger {
	return &Ledger{entries: make(map[depositorKey]*DepositorEntry)}
}

// Balance returns the user's current share balance in tranche id, or zero
// if no entry exists.
func (l *Ledger) Balance(user Address, id TrancheID) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[depositorKey{user, id}]
	if !ok {
		return big.NewInt(0)
	}
	return new(big.Int).Set(e.Balance)
}

// credit increases the user's balance in tranche id by shares, creating
// the entry and stamping FirstDepositTS if this is the first deposit —
// spec section 4.3: "first_deposit_ts is set on insert and never updated
// on subsequent deposits."
func (l *Ledger) credit(user Address, id TrancheID, shares *big.Int, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := depositorKey{user, id}
	e, ok := l.entries[k]
	if !ok {
		e = &DepositorEntry{Balance: big.NewInt(0), FirstDepositTS: now}
		l.entries[k] = e
	}
	e.Balance.Add(e.Balance, shares)
}

// debit decreases the user's balance in tranche id by shares. Returns
// ErrInsufficientBalance if the user does not hold enough shares. Zero
// balances are garbage-collected immediately after the debit.
func (l *Ledger) debit(user Address, id TrancheID, shares *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := depositorKey{user, id}
	e, ok := l.entries[k]
	if !ok || e.Balance.Cmp(shares) < 0 {
		return ErrInsufficientBalance
	}
	e.Balance.Sub(e.Balance, shares)
	if e.Balance.Sign() == 0 {
		delete(l.entries, k)
	}
	return nil
}

// refundCredit reverses a debit during a deposit/withdraw rollback: it
// credits shares back without disturbing FirstDepositTS semantics beyond
// what credit already guarantees.
func (l *Ledger) refundCredit(user Address, id TrancheID, shares *big.Int, now time.Time) {
	l.credit(user, id, shares, now)
}

// Entry returns a copy of user's ledger entry in tranche id, for
// write-through persistence. ok is false if no entry exists (zero
// balance, garbage-collected).
func (l *Ledger) Entry(user Address, id TrancheID) (entry DepositorEntry, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, exists := l.entries[depositorKey{user, id}]
	if !exists {
		return DepositorEntry{}, false
	}
	return DepositorEntry{Balance: new(big.Int).Set(e.Balance), FirstDepositTS: e.FirstDepositTS}, true
}

// seed installs a depositor entry restored from durable storage at process
// start, bypassing credit's "first deposit" bookkeeping since
// firstDepositTS is already known. A zero balance is a no-op, matching the
// ledger's own zero-balance garbage collection.
func (l *Ledger) seed(user Address, id TrancheID, balance *big.Int, firstDepositTS time.Time) {
	if balance == nil || balance.Sign() == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[depositorKey{user, id}] = &DepositorEntry{Balance: new(big.Int).Set(balance), FirstDepositTS: firstDepositTS}
}
