package vault

import (
	"math/big"
	"sync"
	"time"

	"github.com/tonsurance/vault/internal/util"
)

// Tranche is one of the six fixed risk buckets described in spec
// section 3. Mutation is restricted to deposit, withdraw, absorb_loss,
// distribute_premium and flush_overflow (EQT only); all other callers must
// go through the admin-gated SetTrancheParams/SetTrancheToken operations.
type Tranche struct {
	ID TrancheID

	Capital          *big.Int
	ApyMinBps        uint16
	ApyMaxBps        uint16
	CurveID          CurveID
	AllocationBps    uint32
	AccumulatedYield *big.Int

	LPTokenRef Address
	LPTokenSet bool

	// ProtocolEarnedOverflow accrues EQT-only premium share above the 25%
	// NAV cap; spec section 4.8 step 3.
	ProtocolEarnedOverflow *big.Int

	// CapMultiplier is consulted only when CurveID == CurveCappedExponential
	// (spec section 4.1: cap = 1.25 for EQT). Zero means uncapped.
	CapMultiplier float64

	// Epoch is the protocol epoch NAV curves are measured from.
	Epoch time.Time

	// navLossFactor is the cumulative proportional NAV reduction from
	// absorbed losses (spec section 4.1), Ray-scaled starting at 1.0.
	navLossFactor *big.Int
}

// defaultTrancheSpec captures the construction-time defaults for each of
// the six tranches. The curve assignment (one distinct curve per tranche)
// follows the six curve_id options enumerated in spec section 4.1 in the
// same order the tranches are listed in spec section 3 — BTC the most
// conservative (flat), EQT the riskiest and the one explicitly given a
// NAV cap (capped exponential). This mapping is recorded as an Open
// Question resolution in DESIGN.md.
type defaultTrancheSpec struct {
	curve         CurveID
	apyMinBps     uint16
	apyMaxBps     uint16
	allocationBps uint32
	cap           float64
}

var defaultTrancheSpecs = map[TrancheID]defaultTrancheSpec{
	BTC:     {CurveFlat, 100, 300, 1000, 0},
	SNR:     {CurveLogarithmic, 300, 600, 1500, 0},
	MEZZ:    {CurveLinear, 600, 1000, 2000, 0},
	JNR:     {CurveSigmoid, 1000, 1600, 2000, 0},
	JNRPlus: {CurveQuadratic, 1600, 2400, 1500, 0},
	EQT:     {CurveCappedExponential, 2400, 4000, 2000, 1.25},
}

// NewTranche constructs a zeroed tranche record for id using the
// construction-time defaults of spec section 3.
func NewTranche(id TrancheID, epoch time.Time) *Tranche {
	d := defaultTrancheSpecs[id]
	return &Tranche{
		ID:                     id,
		Capital:                big.NewInt(0),
		ApyMinBps:              d.apyMinBps,
		ApyMaxBps:              d.apyMaxBps,
		CurveID:                d.curve,
		AllocationBps:          d.allocationBps,
		AccumulatedYield:       big.NewInt(0),
		ProtocolEarnedOverflow: big.NewInt(0),
		CapMultiplier:          d.cap,
		Epoch:                  epoch,
		navLossFactor:          new(big.Int).Set(util.Ray),
	}
}

// TrancheSpec overrides a tranche's construction-time defaults, threaded
// in from Config.TrancheOverrides (SPEC_FULL.md section 4.13's config
// model). A tranche absent from the overrides map keeps its hardcoded
// defaultTrancheSpecs entry; a tranche present in the map is taken as a
// complete replacement, not a partial patch.
type TrancheSpec struct {
	CurveID       CurveID
	ApyMinBps     uint16
	ApyMaxBps     uint16
	AllocationBps uint32
	CapMultiplier float64
	LPTokenRef    Address
}

// Registry holds the six tranche records and serializes access to the map
// itself (not to an individual tranche's fields — that is the job of the
// per-tranche TrancheLock in locks.go). See spec sections 3 and 4.2.
type Registry struct {
	mu       sync.RWMutex
	tranches map[TrancheID]*Tranche
}

// NewRegistry constructs the six fixed tranche records, all sharing the
// same protocol epoch. overrides, when a tranche id is present in it,
// replaces that tranche's hardcoded apy/curve/allocation/cap defaults and
// pre-binds its lp_token_ref.
func NewRegistry(epoch time.Time, overrides map[TrancheID]TrancheSpec) *Registry {
	r := &Registry{tranches: make(map[TrancheID]*Tranche, 6)}
	for _, id := range trancheOrder {
		t := NewTranche(id, epoch)
		if o, ok := overrides[id]; ok {
			t.CurveID = o.CurveID
			t.ApyMinBps = o.ApyMinBps
			t.ApyMaxBps = o.ApyMaxBps
			t.AllocationBps = o.AllocationBps
			t.CapMultiplier = o.CapMultiplier
			if o.LPTokenRef != (Address{}) {
				t.LPTokenRef = o.LPTokenRef
				t.LPTokenSet = true
			}
		}
		r.tranches[id] = t
	}
	return r
}

// Get returns the tranche record for id, or nil if id is not one of the
// six fixed tranches.
func (r *Registry) Get(id TrancheID) *Tranche {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tranches[id]
}

// TotalAllocationBps sums allocation_bps across all tranches; invariant
// per spec section 3 is that this equals 10_000.
func (r *Registry) TotalAllocationBps() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total uint32
	for _, t := range r.tranches {
		total += t.AllocationBps
	}
	return total
}

// TotalCapital sums capital across all tranches; invariant per spec
// section 8 is that this always equals VaultState.total_capital.
func (r *Registry) TotalCapital() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := big.NewInt(0)
	for _, t := range r.tranches {
		total.Add(total, t.Capital)
	}
	return total
}

// Each calls fn for every tranche in ascending TrancheID order (1..6),
// holding only a read lock on the registry map itself.
func (r *Registry) Each(fn func(*Tranche)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range trancheOrder {
		fn(r.tranches[id])
	}
}
