package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatch_DepositAndMintAckRoundTrip(t *testing.T) {
	v, _ := newTestVault(t)

	res, err := v.Dispatch(OpDepositCode, DispatchRequest{
		User:       testUser,
		TrancheID:  MEZZ,
		AmountBase: big.NewInt(100),
		Gas:        GasBudget(MinDepositGas),
	})
	assert.NoError(t, err)
	assert.NotZero(t, res.TxID)

	_, err = v.Dispatch(OpMintAck, DispatchRequest{
		Caller: clientAddrFor(v, MEZZ),
		TxID:   res.TxID,
	})
	assert.NoError(t, err)

	balance, _ := v.DepositorBalance(testUser, MEZZ)
	assert.Equal(t, big.NewInt(100), balance)
}

func TestDispatch_PauseUnpause(t *testing.T) {
	v, _ := newTestVault(t)

	_, err := v.Dispatch(OpPause, DispatchRequest{Caller: testAdmin})
	assert.NoError(t, err)
	assert.True(t, v.IsPaused())

	_, err = v.Dispatch(OpUnpause, DispatchRequest{Caller: testAdmin})
	assert.NoError(t, err)
	assert.False(t, v.IsPaused())
}

func TestDispatch_UnknownOpCode(t *testing.T) {
	v, _ := newTestVault(t)
	_, err := v.Dispatch(OpCode(200), DispatchRequest{})
	assert.ErrorIs(t, err, ErrUnknownOp)
}
