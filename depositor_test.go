package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestLedger_CreditDebit(t *testing.T) {
	l := newLedger()
	user := common.HexToAddress("0x1")
	now := time.Now()

	l.credit(user, MEZZ, big.NewInt(100), now)
	assert.Equal(t, big.NewInt(100), l.Balance(user, MEZZ))

	assert.NoError(t, l.debit(user, MEZZ, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), l.Balance(user, MEZZ))
}

func TestLedger_DebitInsufficientBalance(t *testing.T) {
	l := newLedger()
	user := common.HexToAddress("0x2")
	err := l.debit(user, MEZZ, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestLedger_ZeroBalanceGarbageCollected(t *testing.T) {
	l := newLedger()
	user := common.HexToAddress("0x3")
	now := time.Now()

	l.credit(user, BTC, big.NewInt(50), now)
	assert.NoError(t, l.debit(user, BTC, big.NewInt(50)))

	_, ok := l.entries[depositorKey{user, BTC}]
	assert.False(t, ok, "a zero balance entry must be garbage-collected")
}

func TestLedger_FirstDepositTSNotUpdated(t *testing.T) {
	l := newLedger()
	user := common.HexToAddress("0x4")
	first := time.Now()
	second := first.Add(time.Hour)

	l.credit(user, SNR, big.NewInt(10), first)
	l.credit(user, SNR, big.NewInt(10), second)

	entry := l.entries[depositorKey{user, SNR}]
	assert.Equal(t, first, entry.FirstDepositTS)
}
