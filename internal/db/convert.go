package db

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tonsurance/vault"
)

// PendingTxRecordFrom builds the durable twin of a vault.PendingTx for
// write-through persistence on every committed transition.
func PendingTxRecordFrom(tx *vault.PendingTx) PendingTxRecord {
	return PendingTxRecord{
		TxID:         tx.TxID,
		OpKind:       int(tx.OpKind),
		UserAddress:  tx.User.Hex(),
		TrancheID:    uint8(tx.TrancheID),
		AmountBase:   bigIntToString(tx.AmountBase),
		AmountShares: bigIntToString(tx.AmountShares),
		Status:       int(tx.Status),
		RetryCount:   tx.RetryCount,
		NextRetryTS:  tx.NextRetryTS,
		CreatedTS:    tx.CreatedTS,
	}
}

// DepositorRecordFrom builds the durable twin of a depositor's balance in
// one tranche.
func DepositorRecordFrom(user vault.Address, trancheID vault.TrancheID, entry *vault.DepositorEntry) DepositorRecord {
	return DepositorRecord{
		UserAddress:    user.Hex(),
		TrancheID:      uint8(trancheID),
		Balance:        bigIntToString(entry.Balance),
		FirstDepositTS: entry.FirstDepositTS,
	}
}

// TrancheSnapshotRecordFrom builds one audit row for a tranche at time at.
func TrancheSnapshotRecordFrom(t *vault.Tranche, at time.Time) TrancheSnapshotRecord {
	return TrancheSnapshotRecord{
		Timestamp:              at,
		TrancheID:              uint8(t.ID),
		Capital:                bigIntToString(t.Capital),
		AccumulatedYield:       bigIntToString(t.AccumulatedYield),
		ProtocolEarnedOverflow: bigIntToString(t.ProtocolEarnedOverflow),
		NAV:                    bigIntToString(t.NAV(at)),
	}
}

// bigIntFromString is the inverse of bigIntToString; an unparseable value
// (corrupt row) becomes zero rather than a panic.
func bigIntFromString(value string) *big.Int {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}

// PendingTxFromRecord rebuilds a vault.PendingTx from its durable twin, for
// rehydrating the in-memory pending table at process start.
func PendingTxFromRecord(rec PendingTxRecord) *vault.PendingTx {
	return &vault.PendingTx{
		TxID:         rec.TxID,
		OpKind:       vault.OpKind(rec.OpKind),
		User:         common.HexToAddress(rec.UserAddress),
		TrancheID:    vault.TrancheID(rec.TrancheID),
		AmountBase:   bigIntFromString(rec.AmountBase),
		AmountShares: bigIntFromString(rec.AmountShares),
		Status:       vault.TxStatus(rec.Status),
		RetryCount:   rec.RetryCount,
		NextRetryTS:  rec.NextRetryTS,
		CreatedTS:    rec.CreatedTS,
	}
}

// DepositorFromRecord extracts the (user, tranche, balance,
// first_deposit_ts) tuple a DepositorRecord carries, for SeedDepositor.
func DepositorFromRecord(rec DepositorRecord) (user vault.Address, trancheID vault.TrancheID, balance *big.Int, firstDepositTS time.Time) {
	return common.HexToAddress(rec.UserAddress), vault.TrancheID(rec.TrancheID), bigIntFromString(rec.Balance), rec.FirstDepositTS
}

// TrancheStateFromSnapshot extracts the (tranche, capital,
// accumulated_yield, protocol_earned_overflow) tuple a TrancheSnapshotRecord
// carries, for SeedTrancheState. The record's NAV column is informational
// only; NAV is always recomputed live from capital and yield.
func TrancheStateFromSnapshot(rec TrancheSnapshotRecord) (trancheID vault.TrancheID, capital, accumulatedYield, protocolEarnedOverflow *big.Int) {
	return vault.TrancheID(rec.TrancheID), bigIntFromString(rec.Capital), bigIntFromString(rec.AccumulatedYield), bigIntFromString(rec.ProtocolEarnedOverflow)
}
