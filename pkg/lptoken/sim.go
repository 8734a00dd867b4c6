package lptoken

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Call records a single dispatched mint, burn or refund, for test
// assertions.
type Call struct {
	TxID   uint64
	Method string // "mint" or "burn"
	Addr   common.Address
	Amount *big.Int
}

// QueuedClient is an in-memory lptoken.Client for tests: every Mint/Burn
// call is recorded rather than dispatched anywhere, and the test driver
// decides when/whether to simulate an ack or a bounce by calling the
// vault's corresponding entry point directly with the recorded TxID. This
// is the synchronous testing harness the design notes in spec section 9
// call out as still useful for invariant checking even without a real
// asynchronous runtime.
type QueuedClient struct {
	mu    sync.Mutex
	calls []Call

	// FailDispatch, when true, makes every Mint/Burn return an error
	// immediately instead of queuing the call — models the external
	// contract being unreachable at dispatch time.
	FailDispatch bool
}

// NewQueuedClient constructs an empty QueuedClient.
func NewQueuedClient() *QueuedClient {
	return &QueuedClient{}
}

func (q *QueuedClient) Mint(txID uint64, to common.Address, shares *big.Int) error {
	return q.enqueue(txID, "mint", to, shares)
}

func (q *QueuedClient) Burn(txID uint64, from common.Address, shares *big.Int) error {
	return q.enqueue(txID, "burn", from, shares)
}

func (q *QueuedClient) enqueue(txID uint64, method string, addr common.Address, amount *big.Int) error {
	if q.FailDispatch {
		return fmt.Errorf("lptoken: dispatch of tx %d rejected by runtime", txID)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, Call{TxID: txID, Method: method, Addr: addr, Amount: new(big.Int).Set(amount)})
	return nil
}

// Calls returns a snapshot of every call recorded so far.
func (q *QueuedClient) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Call, len(q.calls))
	copy(out, q.calls)
	return out
}

// Last returns the most recently recorded call, or the zero Call if none
// have been recorded yet.
func (q *QueuedClient) Last() (Call, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.calls) == 0 {
		return Call{}, false
	}
	return q.calls[len(q.calls)-1], true
}

// QueuedRefundRail is an in-memory lptoken.RefundRail for tests: every
// Refund call is recorded, and FailRefund scripts the "refund transfer
// itself bounces" case of spec section 7.
type QueuedRefundRail struct {
	mu    sync.Mutex
	calls []Call

	FailRefund bool
}

// NewQueuedRefundRail constructs an empty QueuedRefundRail.
func NewQueuedRefundRail() *QueuedRefundRail {
	return &QueuedRefundRail{}
}

func (q *QueuedRefundRail) Refund(txID uint64, to common.Address, amountBase *big.Int) error {
	if q.FailRefund {
		return fmt.Errorf("lptoken: refund of tx %d rejected by payment rail", txID)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, Call{TxID: txID, Method: "refund", Addr: to, Amount: new(big.Int).Set(amountBase)})
	return nil
}

// Calls returns a snapshot of every refund recorded so far.
func (q *QueuedRefundRail) Calls() []Call {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Call, len(q.calls))
	copy(out, q.calls)
	return out
}
