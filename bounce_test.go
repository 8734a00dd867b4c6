package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tonsurance/vault/pkg/lptoken"
)

func TestHandleBounce_SchedulesRetryBeforeExhaustion(t *testing.T) {
	v, _ := newTestVault(t)
	txID, err := v.Deposit(testUser, SNR, big.NewInt(100), GasBudget(MinDepositGas))
	assert.NoError(t, err)

	assert.NoError(t, v.HandleBounce(txID))

	tx := v.pending.get(txID)
	assert.NotNil(t, tx, "a tx with retries remaining must stay pending, not roll back")
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, 1, tx.RetryCount)
}

func TestHandleBounce_ExhaustsOnFifthCall(t *testing.T) {
	v, _ := newTestVault(t)
	txID, err := v.Deposit(testUser, SNR, big.NewInt(100), GasBudget(MinDepositGas))
	assert.NoError(t, err)

	for i := 0; i < MaxBounceRetries-1; i++ {
		assert.NoError(t, v.HandleBounce(txID))
		tx := v.pending.get(txID)
		assert.NotNil(t, tx, "tx must still be pending before the retry budget is spent")
	}

	// The fifth bounce call exhausts the budget in the same call that
	// records it, per spec section 4.10 step 3.
	assert.NoError(t, v.HandleBounce(txID))
	assert.Nil(t, v.pending.get(txID), "an exhausted tx must be compacted out of the pending table")

	capital, _ := v.TrancheCapital(SNR)
	assert.Equal(t, big.NewInt(0), capital)
}

func TestHandleBounce_FailedRefundEmitsUnclaimed(t *testing.T) {
	v, _ := newTestVault(t)
	rail := lptoken.NewQueuedRefundRail()
	rail.FailRefund = true
	v.refundRail = rail

	txID, err := v.Deposit(testUser, SNR, big.NewInt(100), GasBudget(MinDepositGas))
	assert.NoError(t, err)

	for i := 0; i < MaxBounceRetries; i++ {
		assert.NoError(t, v.HandleBounce(txID))
	}

	var sawUnclaimed bool
	for {
		select {
		case ev := <-v.Events():
			if ev.Kind == EventRefundUnclaimed {
				sawUnclaimed = true
			}
		default:
			goto done
		}
	}
done:
	assert.True(t, sawUnclaimed, "a failed refund rail must surface REFUND_UNCLAIMED")
}

func TestHandleBounce_IgnoresUnknownOrTerminalTx(t *testing.T) {
	v, _ := newTestVault(t)
	assert.NoError(t, v.HandleBounce(999))

	txID, err := v.Deposit(testUser, SNR, big.NewInt(100), GasBudget(MinDepositGas))
	assert.NoError(t, err)
	assert.NoError(t, v.HandleMintAck(clientAddrFor(v, SNR), txID))

	// A bounce arriving after the tx already committed must be a no-op.
	assert.NoError(t, v.HandleBounce(txID))
	balance, _ := v.DepositorBalance(testUser, SNR)
	assert.Equal(t, big.NewInt(100), balance)
}
