package vault

import (
	"math/big"
	"sync"
	"time"

	"github.com/tonsurance/vault/pkg/lptoken"
)

// MinDepositGas is the gas-budget floor of spec section 4.6 step 2.
const MinDepositGas = 21_000

// SeqNoWarningThreshold is the point at which the vault emits
// OverflowWarning and auto-pauses, spec section 4.12.
const SeqNoWarningThreshold = ^uint32(0) - 9 // 2^32 - 10

// VaultState is the singleton scalar state of spec section 3. The
// reentrancy guard and paused flag are kept outside it: the guard is the
// atomic reentrancyGuard type, and the paused flag is Vault.Paused, guarded
// by Vault.mu.
type VaultState struct {
	TotalCapital        *big.Int
	TotalCoverageSold   *big.Int
	AccumulatedPremiums *big.Int
	AccumulatedLosses   *big.Int
	SeqNo               uint32
	Version             uint16
}

// Vault is the capital engine described in spec section 2: it owns the
// tranche registry, the depositor ledger, the pending-transaction table,
// the lock/reentrancy discipline, the waterfall, the premium distributor,
// the circuit breaker, and the bounce/retry handler. All external
// collaborators (LP-token contracts, the claims processor, the product
// factory) are referenced only by address, per the capability model of
// spec section 9.
type Vault struct {
	mu    sync.Mutex // guards VaultState scalar fields and Paused
	state VaultState
	Paused bool

	registry *Registry
	ledger   *Ledger
	pending  *pendingTable
	locks    *lockTable
	guard    reentrancyGuard
	cb       *CircuitBreakerState

	admin           Address
	claimsProcessor Address
	factories       map[Address]bool

	lpClients  *lptoken.Registry
	refundRail lptoken.RefundRail
	store      Persister

	minDepositGas    uint64
	maxBounceRetries int

	events chan VaultEvent
	nowFn  func() time.Time
}

// Config bundles the capability and tuning parameters a Vault is
// constructed with; see SPEC_FULL.md section 4.13.
type Config struct {
	Admin           Address
	ClaimsProcessor Address
	Factories       []Address
	MinDepositGas   uint64
	Epoch           time.Time
	EventBuffer     int

	// TrancheOverrides replaces a tranche's hardcoded apy/curve/
	// allocation/cap defaults when present, threaded in from config.yml's
	// `tranches` section (SPEC_FULL.md section 4.13).
	TrancheOverrides map[TrancheID]TrancheSpec

	// TrancheLockDuration, MaxBounceRetries, CircuitBreakerWindow and
	// CircuitBreakerBps mirror config.yml's `vault` tuning block. Zero
	// means "use the package default" (TrancheLockDuration,
	// MaxBounceRetries, CircuitBreakerWindow, CircuitBreakerBps).
	TrancheLockDuration  time.Duration
	MaxBounceRetries     int
	CircuitBreakerWindow time.Duration
	CircuitBreakerBps    uint32

	// RefundRail is optional. When nil, rollback refunds are assumed to
	// always land (spec section 7's best-effort refund has nothing to
	// fail against); when set, a failed Refund call emits
	// REFUND_UNCLAIMED instead of silently succeeding.
	RefundRail lptoken.RefundRail

	// Store is optional. When nil, the vault keeps no durable mirror of
	// its state (persistence is a no-op); when set, every committed
	// transition is written through to it (SPEC_FULL.md section 4.14).
	Store Persister
}

// New constructs a Vault with the six tranches at zero capital and an
// empty circuit breaker window starting at cfg.Epoch.
func New(cfg Config, lpClients *lptoken.Registry) *Vault {
	if cfg.MinDepositGas == 0 {
		cfg.MinDepositGas = MinDepositGas
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = 256
	}
	if cfg.MaxBounceRetries == 0 {
		cfg.MaxBounceRetries = MaxBounceRetries
	}
	factories := make(map[Address]bool, len(cfg.Factories))
	for _, f := range cfg.Factories {
		factories[f] = true
	}
	v := &Vault{
		state: VaultState{
			TotalCapital:        big.NewInt(0),
			TotalCoverageSold:   big.NewInt(0),
			AccumulatedPremiums: big.NewInt(0),
			AccumulatedLosses:   big.NewInt(0),
		},
		registry:         NewRegistry(cfg.Epoch, cfg.TrancheOverrides),
		ledger:           newLedger(),
		pending:          newPendingTable(),
		locks:            newLockTable(cfg.TrancheLockDuration),
		cb:               newCircuitBreakerState(cfg.Epoch, big.NewInt(0), cfg.CircuitBreakerWindow, cfg.CircuitBreakerBps),
		admin:            cfg.Admin,
		claimsProcessor:  cfg.ClaimsProcessor,
		factories:        factories,
		lpClients:        lpClients,
		refundRail:       cfg.RefundRail,
		store:            cfg.Store,
		minDepositGas:    cfg.MinDepositGas,
		maxBounceRetries: cfg.MaxBounceRetries,
		events:           make(chan VaultEvent, cfg.EventBuffer),
		nowFn:            time.Now,
	}
	return v
}

// Events returns the channel every VaultEvent is published on.
func (v *Vault) Events() <-chan VaultEvent { return v.events }

func (v *Vault) now() time.Time {
	if v.nowFn != nil {
		return v.nowFn()
	}
	return time.Now()
}

func (v *Vault) phase() VaultPhase {
	if v.isPaused() {
		return PhasePaused
	}
	return PhaseActive
}

func (v *Vault) isPaused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Paused
}

func (v *Vault) setPaused(p bool) {
	v.mu.Lock()
	v.Paused = p
	v.mu.Unlock()
}

// bumpSeq increments seq_no on every committed state transition (spec
// section 4.12), auto-pausing and emitting OverflowWarning as the counter
// approaches overflow.
func (v *Vault) bumpSeq() {
	v.mu.Lock()
	v.state.SeqNo++
	tripped := v.state.SeqNo >= SeqNoWarningThreshold
	if tripped {
		v.Paused = true
	}
	v.mu.Unlock()

	if tripped {
		v.emit(VaultEvent{Kind: EventOverflowWarning, Message: "seq_no approaching overflow; vault paused pending migration"})
	}
}

func (v *Vault) requireTranche(id TrancheID) (*Tranche, error) {
	if !id.valid() {
		return nil, ErrInvalidTranche
	}
	t := v.registry.Get(id)
	if t == nil {
		return nil, ErrInvalidTranche
	}
	return t, nil
}

func (v *Vault) requireAdmin(caller Address) error {
	if caller != v.admin {
		return ErrUnauthorized
	}
	return nil
}

func (v *Vault) requireClaimsProcessor(caller Address) error {
	if caller != v.claimsProcessor {
		return ErrUnauthorized
	}
	return nil
}

func (v *Vault) requireFactory(caller Address) error {
	if !v.factories[caller] {
		return ErrUnauthorized
	}
	return nil
}

// GasBudget is the caller-supplied gas allowance checked against
// MinDepositGas in spec section 4.6 step 2 and section 4.9 step 1.
type GasBudget uint64

func (v *Vault) checkGas(budget GasBudget) error {
	if uint64(budget) < v.minDepositGas {
		return ErrInsufficientGas
	}
	return nil
}

// addCapital applies a signed delta to both the tranche's capital and the
// vault-wide total_capital counter, keeping the spec section 8 invariant
// (total_capital == sum of tranche capital) intact at every call site.
func (v *Vault) addCapital(t *Tranche, delta *big.Int) {
	t.Capital.Add(t.Capital, delta)
	v.mu.Lock()
	v.state.TotalCapital.Add(v.state.TotalCapital, delta)
	v.mu.Unlock()
}
