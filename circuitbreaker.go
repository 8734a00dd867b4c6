package vault

import (
	"math/big"
	"sync"
	"time"

	"github.com/tonsurance/vault/internal/util"
)

// CircuitBreakerWindow is the rolling-loss window of spec section 4.11.
const CircuitBreakerWindow = 24 * time.Hour

// CircuitBreakerBps is the fraction of window-start capital that, if
// exceeded by cumulative losses within the window, trips the breaker.
const CircuitBreakerBps = 1000 // 10%

// CircuitBreakerState is the singleton rolling-window loss limiter of
// spec sections 3 and 4.11.
type CircuitBreakerState struct {
	mu                   sync.Mutex
	windowStartTS        time.Time
	lossesInWindow       *big.Int
	capitalAtWindowStart *big.Int
	window               time.Duration
	bps                  uint32
}

// newCircuitBreakerState constructs a breaker with the given rolling
// window and bps threshold (Config.CircuitBreakerWindow/CircuitBreakerBps;
// default to CircuitBreakerWindow/CircuitBreakerBps when zero).
func newCircuitBreakerState(now time.Time, capital *big.Int, window time.Duration, bps uint32) *CircuitBreakerState {
	if window == 0 {
		window = CircuitBreakerWindow
	}
	if bps == 0 {
		bps = CircuitBreakerBps
	}
	return &CircuitBreakerState{
		windowStartTS:        now,
		lossesInWindow:       big.NewInt(0),
		capitalAtWindowStart: new(big.Int).Set(capital),
		window:               window,
		bps:                  bps,
	}
}

// CircuitBreakerStatus is a read-only snapshot for the circuit_breaker_status getter of
// spec section 6.
type CircuitBreakerStatus struct {
	WindowStartTS  time.Time
	LossesInWindow *big.Int
	Limit          *big.Int
}

func (cb *CircuitBreakerState) status() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStatus{
		WindowStartTS:  cb.windowStartTS,
		LossesInWindow: new(big.Int).Set(cb.lossesInWindow),
		Limit:          util.BpsOf(cb.capitalAtWindowStart, cb.bps),
	}
}

// admit records a loss attempt against the rolling window and reports
// whether it trips the breaker. It rolls the window first if the window
// duration has elapsed since windowStartTS (spec section 4.11 step 1),
// then compares the prospective total against the limit (step 2/3). A
// loss that would breach the limit is rejected and never added to
// lossesInWindow — AbsorbLoss aborts the whole absorption in that case, so
// nothing about that loss should be reflected in the running total either.
func (cb *CircuitBreakerState) admit(lossAmount *big.Int, totalCapital *big.Int, now time.Time) (tripped bool, snapshot CircuitBreakerStatus) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if now.Sub(cb.windowStartTS) >= cb.window {
		cb.windowStartTS = now
		cb.lossesInWindow = big.NewInt(0)
		cb.capitalAtWindowStart = new(big.Int).Set(totalCapital)
	}

	limit := util.BpsOf(cb.capitalAtWindowStart, cb.bps)
	projected := new(big.Int).Add(cb.lossesInWindow, lossAmount)
	if projected.Cmp(limit) > 0 {
		return true, CircuitBreakerStatus{cb.windowStartTS, new(big.Int).Set(cb.lossesInWindow), limit}
	}

	cb.lossesInWindow = projected
	return false, CircuitBreakerStatus{cb.windowStartTS, new(big.Int).Set(cb.lossesInWindow), limit}
}
