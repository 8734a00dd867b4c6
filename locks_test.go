package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockTable_AcquireAndRelease(t *testing.T) {
	lt := newLockTable(TrancheLockDuration)
	now := time.Now()

	assert.NoError(t, lt.acquire(MEZZ, 1, now))
	err := lt.acquire(MEZZ, 2, now)
	assert.ErrorIs(t, err, ErrTrancheLocked, "a second holder must not acquire a live lock")

	lt.release(MEZZ)
	assert.NoError(t, lt.acquire(MEZZ, 2, now), "lock must be acquirable again after release")
}

func TestLockTable_ExpiredLockIsReacquirable(t *testing.T) {
	lt := newLockTable(TrancheLockDuration)
	now := time.Now()

	assert.NoError(t, lt.acquire(SNR, 1, now))
	later := now.Add(TrancheLockDuration + time.Second)
	assert.NoError(t, lt.acquire(SNR, 2, later), "a lock older than 60s must be treated as expired")
}

func TestReentrancyGuard(t *testing.T) {
	var g reentrancyGuard
	assert.NoError(t, g.enter())
	assert.ErrorIs(t, g.enter(), ErrReentrancy)
	g.exit()
	assert.NoError(t, g.enter())
}
