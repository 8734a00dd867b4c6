package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_TripsAboveTenPercent(t *testing.T) {
	now := time.Now()
	cb := newCircuitBreakerState(now, big.NewInt(10_000), CircuitBreakerWindow, CircuitBreakerBps)

	tripped, _ := cb.admit(big.NewInt(300), big.NewInt(10_000), now.Add(time.Hour))
	assert.False(t, tripped)

	tripped, _ = cb.admit(big.NewInt(400), big.NewInt(10_000), now.Add(2*time.Hour))
	assert.False(t, tripped)

	tripped, snap := cb.admit(big.NewInt(350), big.NewInt(10_000), now.Add(23*time.Hour))
	assert.True(t, tripped, "cumulative 1050 > 1000 (10%% of 10000) must trip")
	assert.Equal(t, big.NewInt(700), snap.LossesInWindow, "the tripping loss must not be committed to the window")
}

func TestCircuitBreaker_WindowRolls(t *testing.T) {
	now := time.Now()
	cb := newCircuitBreakerState(now, big.NewInt(10_000), CircuitBreakerWindow, CircuitBreakerBps)

	cb.admit(big.NewInt(900), big.NewInt(10_000), now)
	tripped, snap := cb.admit(big.NewInt(900), big.NewInt(10_000), now.Add(25*time.Hour))
	assert.False(t, tripped, "a loss in a new rolled window must not see the prior window's losses")
	assert.Equal(t, big.NewInt(900), snap.LossesInWindow)
}
