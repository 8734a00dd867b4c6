package vault

import "github.com/ethereum/go-ethereum/common"

// TrancheID identifies one of the six fixed risk tranches. Values match
// spec section 3 exactly.
type TrancheID uint8

const (
	BTC      TrancheID = 1
	SNR      TrancheID = 2
	MEZZ     TrancheID = 3
	JNR      TrancheID = 4
	JNRPlus  TrancheID = 5
	EQT      TrancheID = 6
)

// trancheOrder lists every tranche id, for registry initialization and
// iteration in deposit/NAV order (ascending).
var trancheOrder = [6]TrancheID{BTC, SNR, MEZZ, JNR, JNRPlus, EQT}

// waterfallOrder is the fixed loss-absorption order: equity first,
// super-senior last. See spec section 4.9.
var waterfallOrder = [6]TrancheID{EQT, JNRPlus, JNR, MEZZ, SNR, BTC}

func (t TrancheID) String() string {
	switch t {
	case BTC:
		return "BTC"
	case SNR:
		return "SNR"
	case MEZZ:
		return "MEZZ"
	case JNR:
		return "JNR"
	case JNRPlus:
		return "JNR_PLUS"
	case EQT:
		return "EQT"
	default:
		return "UNKNOWN"
	}
}

func (t TrancheID) valid() bool {
	return t >= BTC && t <= EQT
}

// CurveID discriminates the NAV bonding-curve formula a tranche uses.
// See spec section 4.1.
type CurveID uint8

const (
	CurveFlat CurveID = iota
	CurveLogarithmic
	CurveLinear
	CurveSigmoid
	CurveQuadratic
	CurveCappedExponential
)

// OpKind is the business-operation type recorded on a PendingTx.
type OpKind uint8

const (
	OpDeposit OpKind = iota
	OpWithdraw
	OpLossAbsorb
)

func (k OpKind) String() string {
	switch k {
	case OpDeposit:
		return "DEPOSIT"
	case OpWithdraw:
		return "WITHDRAW"
	case OpLossAbsorb:
		return "LOSS_ABSORB"
	default:
		return "UNKNOWN"
	}
}

// TxStatus is the lifecycle state of a PendingTx. See spec section 3.
type TxStatus uint8

const (
	StatusPending TxStatus = iota
	StatusCommitted
	StatusRolledBack
	// StatusRetryPayout is the terminal state for a withdraw whose burn
	// committed but whose outbound payout bounced; spec section 4.7 step 9.
	StatusRetryPayout
	StatusPaidOut
)

// VaultPhase mirrors the teacher's StrategyPhase: a coarse, externally
// observable lifecycle state attached to every emitted VaultEvent.
type VaultPhase int

const (
	PhaseActive VaultPhase = iota
	PhasePaused
	PhaseHalted
)

func (p VaultPhase) String() string {
	switch p {
	case PhaseActive:
		return "Active"
	case PhasePaused:
		return "Paused"
	case PhaseHalted:
		return "Halted"
	default:
		return "Unknown"
	}
}

// OpCode addresses the external message surface described in spec
// section 6.
type OpCode uint8

const (
	OpDepositCode OpCode = iota
	OpWithdrawCode
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

// Address is re-exported for package consumers that do not want to import
// go-ethereum directly; every principal in the vault (user, admin, claims
// processor, factory, LP-token contract) is identified by one of these,
// per the address-based capability design note in spec section 9.
type Address = common.Address
