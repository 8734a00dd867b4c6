package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestPendingTable_ReserveAndCreate(t *testing.T) {
	pt := newPendingTable()
	id := pt.reserveID()
	assert.Equal(t, uint64(1), id)

	user := common.HexToAddress("0x1")
	now := time.Now()
	tx := pt.createWithID(id, OpDeposit, user, MEZZ, big.NewInt(100), big.NewInt(100), now)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, id, tx.TxID)

	got := pt.get(id)
	assert.Same(t, tx, got)
}

func TestPendingTable_ScheduleRetry_Backoff(t *testing.T) {
	pt := newPendingTable()
	id := pt.reserveID()
	now := time.Now()
	pt.createWithID(id, OpDeposit, common.Address{}, BTC, big.NewInt(1), big.NewInt(1), now)

	retryCount, ok := pt.scheduleRetry(id, now)
	assert.True(t, ok)
	assert.Equal(t, 1, retryCount)

	tx := pt.get(id)
	assert.Equal(t, now.Add(1*time.Second), tx.NextRetryTS)

	retryCount, ok = pt.scheduleRetry(id, now)
	assert.True(t, ok)
	assert.Equal(t, 2, retryCount)
	assert.Equal(t, now.Add(2*time.Second), tx.NextRetryTS)
}

func TestPendingTable_CompactRemovesEntry(t *testing.T) {
	pt := newPendingTable()
	id := pt.reserveID()
	pt.createWithID(id, OpWithdraw, common.Address{}, SNR, big.NewInt(1), big.NewInt(1), time.Now())

	pt.compact(id)
	assert.Nil(t, pt.get(id))
}

func TestPendingTable_DueForRetry(t *testing.T) {
	pt := newPendingTable()
	id := pt.reserveID()
	now := time.Now()
	pt.createWithID(id, OpDeposit, common.Address{}, BTC, big.NewInt(1), big.NewInt(1), now)
	pt.scheduleRetry(id, now)

	assert.Empty(t, pt.dueForRetry(now), "a retry scheduled for the future must not be due yet")
	assert.Len(t, pt.dueForRetry(now.Add(3*time.Second)), 1, "a retry whose backoff has elapsed must be due")
}
