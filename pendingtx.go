package vault

import (
	"math/big"
	"sync"
	"time"
)

// MaxBounceRetries is the retry ceiling of spec section 4.10: the fifth
// bounce for a given tx rolls it back rather than scheduling another
// retry.
const MaxBounceRetries = 5

// PendingTx is the two-phase state-machine record of spec section 3: every
// operation that touches the external LP-token contract creates one of
// these before the external mint/burn call is dispatched, and it is
// destroyed (compacted) only after it reaches a terminal status.
type PendingTx struct {
	TxID      uint64
	OpKind    OpKind
	User      Address
	TrancheID TrancheID

	AmountBase   *big.Int
	AmountShares *big.Int

	Status      TxStatus
	RetryCount  int
	NextRetryTS time.Time
	CreatedTS   time.Time
}

// pendingTable is the append-only (until terminal) pending-transaction
// table of spec section 4.4.
type pendingTable struct {
	mu      sync.Mutex
	nextID  uint64
	byID    map[uint64]*PendingTx
}

func newPendingTable() *pendingTable {
	return &pendingTable{byID: make(map[uint64]*PendingTx)}
}

// reserveID allocates the next monotonically increasing tx_id without
// recording an entry yet. The tranche lock is acquired under this id
// before the PendingTx itself is recorded, mirroring the step ordering of
// spec section 4.6 (lock acquisition at step 3, PendingTx recorded at
// step 6) and section 4.7 (step 2 and step 5 respectively).
func (pt *pendingTable) reserveID() uint64 {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.nextID++
	return pt.nextID
}

// createWithID records a PendingTx under a previously reserved id in
// PENDING status.
func (pt *pendingTable) createWithID(id uint64, kind OpKind, user Address, trancheID TrancheID, amountBase, amountShares *big.Int, now time.Time) *PendingTx {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	tx := &PendingTx{
		TxID:         id,
		OpKind:       kind,
		User:         user,
		TrancheID:    trancheID,
		AmountBase:   new(big.Int).Set(amountBase),
		AmountShares: new(big.Int).Set(amountShares),
		Status:       StatusPending,
		CreatedTS:    now,
	}
	pt.byID[id] = tx
	return tx
}

// get returns the PendingTx for id, or nil if it does not exist (already
// compacted, or never created).
func (pt *pendingTable) get(id uint64) *PendingTx {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.byID[id]
}

// setStatus transitions a PendingTx to a terminal or intermediate status.
func (pt *pendingTable) setStatus(id uint64, status TxStatus) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if tx, ok := pt.byID[id]; ok {
		tx.Status = status
	}
}

// scheduleRetry bumps retry_count and computes the exponential backoff
// next_retry_ts of spec section 4.10: 2^retry_count seconds, using the
// retry count before this bounce (1, 2, 4, 8, 16 for the five retries).
func (pt *pendingTable) scheduleRetry(id uint64, now time.Time) (retryCount int, ok bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	tx, exists := pt.byID[id]
	if !exists || tx.Status != StatusPending {
		return 0, false
	}
	prev := tx.RetryCount
	tx.RetryCount++
	backoff := time.Duration(1<<uint(prev)) * time.Second
	tx.NextRetryTS = now.Add(backoff)
	return tx.RetryCount, true
}

// compact removes a terminal PendingTx from the table. Safe to call
// repeatedly; a no-op if the entry is already gone.
func (pt *pendingTable) compact(id uint64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	delete(pt.byID, id)
}

// seed installs a PendingTx restored from durable storage at process
// start and advances nextID past tx.TxID so freshly reserved ids never
// collide with a restored one.
func (pt *pendingTable) seed(tx *PendingTx) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.byID[tx.TxID] = tx
	if tx.TxID > pt.nextID {
		pt.nextID = tx.TxID
	}
}

// dueForRetry returns every PENDING tx whose next_retry_ts has elapsed,
// for the bounce dispatcher (pkg/retrydispatch) to re-dispatch.
func (pt *pendingTable) dueForRetry(now time.Time) []*PendingTx {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	var due []*PendingTx
	for _, tx := range pt.byID {
		if tx.Status == StatusPending && tx.RetryCount > 0 && !tx.NextRetryTS.After(now) {
			due = append(due, tx)
		}
	}
	return due
}
