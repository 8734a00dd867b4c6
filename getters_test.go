package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetters_ReflectDepositState(t *testing.T) {
	v, _ := newTestVault(t)
	txID, err := v.Deposit(testUser, MEZZ, big.NewInt(250), GasBudget(MinDepositGas))
	assert.NoError(t, err)
	assert.NoError(t, v.HandleMintAck(clientAddrFor(v, MEZZ), txID))

	assert.Equal(t, big.NewInt(250), v.TotalCapital())

	capital, err := v.TrancheCapital(MEZZ)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(250), capital)

	minBps, maxBps, err := v.TrancheAPY(MEZZ)
	assert.NoError(t, err)
	assert.Equal(t, uint16(600), minBps)
	assert.Equal(t, uint16(1000), maxBps)

	balance, err := v.DepositorBalance(testUser, MEZZ)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(250), balance)

	assert.False(t, v.IsPaused())
}

func TestGetters_InvalidTrancheErrors(t *testing.T) {
	v, _ := newTestVault(t)
	_, err := v.TrancheCapital(TrancheID(0))
	assert.ErrorIs(t, err, ErrInvalidTranche)

	_, err = v.DepositorBalance(testUser, TrancheID(99))
	assert.ErrorIs(t, err, ErrInvalidTranche)
}

func TestGetters_CircuitBreakerStatus(t *testing.T) {
	v, _ := newTestVault(t)
	status := v.CircuitBreakerStatus()
	assert.Equal(t, big.NewInt(0), status.LossesInWindow)
}
