package vault

import (
	"math/big"
	"time"
)

// VaultEvent is the uniform envelope for every emission named in spec
// section 4 (DepositCommitted, WithdrawCompleted, BounceRetry,
// PremiumDistributed, LossAbsorbed, INSOLVENT, CircuitBreakerTripped, ...).
// It mirrors the teacher's StrategyReport / reportChan pattern: a single
// JSON-friendly struct pushed onto a buffered channel rather than a
// menagerie of per-event payload types.
type VaultEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	Phase     VaultPhase `json:"phase"`

	TxID      uint64    `json:"tx_id,omitempty"`
	TrancheID TrancheID `json:"tranche_id,omitempty"`
	User      *Address  `json:"user,omitempty"`

	AmountBase   *big.Int `json:"amount_base,omitempty"`
	AmountShares *big.Int `json:"amount_shares,omitempty"`
	RetryCount   int      `json:"retry_count,omitempty"`

	PerTranche map[TrancheID]*big.Int `json:"per_tranche,omitempty"`
}

// Event kind constants, named after the operations in spec section 4.
const (
	EventDepositCommitted      = "DepositCommitted"
	EventDepositRolledBack     = "DepositRolledBack"
	EventWithdrawCompleted     = "WithdrawCompleted"
	EventWithdrawRolledBack    = "WithdrawRolledBack"
	EventBounceRetry           = "BounceRetry"
	EventPremiumDistributed    = "PremiumDistributed"
	EventLossAbsorbed          = "LossAbsorbed"
	EventInsolvent             = "INSOLVENT"
	EventCircuitBreakerTripped = "CircuitBreakerTripped"
	EventOverflowWarning       = "OverflowWarning"
	EventRefundUnclaimed       = "REFUND_UNCLAIMED"
	EventPaused                  = "Paused"
	EventUnpaused                = "Unpaused"
	EventProtocolOverflowFlushed = "ProtocolOverflowFlushed"
	EventPersistenceFailed       = "PersistenceFailed"
)

// emit pushes an event onto the vault's report channel without blocking
// forever: if the channel is unbuffered/full and nobody is draining it,
// the send is dropped rather than stalling a state-mutating operation.
// Recommended buffer size is >= 256 for a vault under load, mirroring the
// teacher's channel-buffering recommendation for reportChan.
func (v *Vault) emit(ev VaultEvent) {
	ev.Timestamp = v.now()
	ev.Phase = v.phase()
	if v.events == nil {
		return
	}
	select {
	case v.events <- ev:
	default:
	}
}
