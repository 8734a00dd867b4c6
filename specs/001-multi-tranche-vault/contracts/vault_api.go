// Package contracts defines the external API contract for the
// multi-tranche vault. This file documents the operation-code-addressed
// message surface and the event stream independently of the Go package
// that implements them, for consumers integrating against the vault over
// a message bus rather than calling into the Go API directly.
package contracts

import (
	"math/big"
	"time"
)

// OpCode mirrors vault.OpCode: the wire-level operation identifier carried
// by every inbound message.
type OpCode uint8

const (
	OpDeposit OpCode = iota
	OpWithdraw
	OpMintAck
	OpBurnAck
	OpDistributePremium
	OpAbsorbLoss
	OpRetryPayout
	OpPause
	OpUnpause
	OpSetTrancheToken
	OpSetTrancheParams
	OpFlushEQTOverflow
	OpBounce
)

// VaultPhase mirrors vault.VaultPhase.
type VaultPhase int

const (
	Active VaultPhase = iota
	Paused
	Halted
)

func (p VaultPhase) String() string {
	return [...]string{"Active", "Paused", "Halted"}[p]
}

// VaultEvent is the wire shape of vault.VaultEvent: a single envelope for
// every emission named below, JSON-serializable for flexible consumption
// by off-chain keepers and indexers.
type VaultEvent struct {
	Timestamp time.Time  `json:"timestamp"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	Phase     VaultPhase `json:"phase"`

	TxID      uint64 `json:"tx_id,omitempty"`
	TrancheID uint8  `json:"tranche_id,omitempty"`
	User      string `json:"user,omitempty"`

	AmountBase   *big.Int `json:"amount_base,omitempty"`
	AmountShares *big.Int `json:"amount_shares,omitempty"`
	RetryCount   int      `json:"retry_count,omitempty"`

	PerTranche map[uint8]*big.Int `json:"per_tranche,omitempty"`
}

// VaultRunner defines the interface an off-chain keeper integrates
// against: dispatch a message by op code and drain the resulting event
// stream. *vault.Vault offers the same operations through its Dispatch
// method and Events channel, but its Dispatch takes a vault.OpCode and a
// vault.DispatchRequest and returns a vault.DispatchResult, so it does not
// satisfy this interface directly.
type VaultRunner interface {
	// Dispatch routes a single external message identified by op to the
	// corresponding vault operation, described in spec.md §6.
	//
	// Usage example:
	//   result, err := v.Dispatch(contracts.OpDeposit, vault.DispatchRequest{
	//       User:       user,
	//       TrancheID:  vault.MEZZ,
	//       AmountBase: big.NewInt(100),
	//       Gas:        vault.GasBudget(21000),
	//   })
	Dispatch(op OpCode, payload any) (txID uint64, err error)
}

// Event Types Reference
//
// The following kinds are sent on the vault's event stream (see
// vault.VaultEvent and events.go):
//
// 1. "DepositCommitted" - a DEPOSIT's mint was acknowledged.
//    Fields: TxID, TrancheID, User, AmountBase, AmountShares.
//
// 2. "DepositRolledBack" - a DEPOSIT's mint exhausted its retry budget.
//    Fields: TxID, TrancheID, User, AmountBase.
//
// 3. "WithdrawCompleted" - a WITHDRAW's payout was delivered, first try or
//    via retry_payout.
//    Fields: TxID, TrancheID, User, AmountBase, AmountShares.
//
// 4. "WithdrawRolledBack" - a WITHDRAW's burn exhausted its retry budget.
//    Fields: TxID, TrancheID, User, AmountBase.
//
// 5. "BounceRetry" - a bounce was scheduled for retry, or a due retry was
//    redispatched.
//    Fields: TxID, TrancheID, User, RetryCount.
//
// 6. "PremiumDistributed" - DISTRIBUTE_PREMIUM completed.
//    Fields: AmountBase, PerTranche.
//
// 7. "LossAbsorbed" - ABSORB_LOSS completed without exhausting capital.
//    Fields: AmountBase, PerTranche.
//
// 8. "INSOLVENT" - ABSORB_LOSS exceeded total capital across all tranches.
//    Fields: AmountBase.
//
// 9. "CircuitBreakerTripped" - a loss was rejected by the rolling 24h
//    limiter; the vault auto-paused.
//    Fields: AmountBase.
//
// 10. "OverflowWarning" - seq_no approaching 2^32-10; the vault
//     auto-paused pending a migration.
//
// 11. "ProtocolOverflowFlushed" - FLUSH_EQT_OVERFLOW completed.
//     Fields: TrancheID, User (the flush target), AmountBase.
//
// 12. "Paused" / "Unpaused" - admin toggled the paused flag.
//
// 13. "REFUND_UNCLAIMED" - a rollback's best-effort refund transfer itself
//     bounced; the vault keeps the funds pending an admin sweep.
//     Fields: TxID, TrancheID, User, AmountBase.

// Channel Buffering
//
// Recommend an event-channel buffer size >= 256; a full channel drops new
// events rather than blocking a state-mutating operation (see
// Vault.emit in events.go).
