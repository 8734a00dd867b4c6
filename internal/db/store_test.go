package db

import (
	"math/big"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create gorm DB: %v", err)
	}

	return &Store{db: gormDB}, mock
}

func TestStore_UpsertPendingTx(t *testing.T) {
	store, mock := newMockStore(t)

	// Save with a non-zero primary key tries an UPDATE first and falls back
	// to an INSERT when no existing row matched.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `pending_txs`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `pending_txs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := PendingTxRecord{
		TxID:         1,
		UserAddress:  "0x0000000000000000000000000000000000dEaD",
		TrancheID:    1,
		AmountBase:   "100",
		AmountShares: "100",
		CreatedTS:    time.Now(),
	}
	err := store.UpsertPendingTx(rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordTrancheSnapshot(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `tranche_snapshots`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := TrancheSnapshotRecord{
		Timestamp:        time.Now(),
		TrancheID:        6,
		Capital:          "1000",
		AccumulatedYield: "50",
		NAV:              "1000000000",
	}
	err := store.RecordTrancheSnapshot(rec)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_DeleteDepositor(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `depositors`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.DeleteDepositor("0x0000000000000000000000000000000000dEaD", 1)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AllPendingTxs(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"tx_id", "op_kind", "user_address", "tranche_id", "amount_base", "amount_shares", "status", "retry_count", "next_retry_ts", "created_ts", "updated_at"}).
		AddRow(1, 0, "0x0000000000000000000000000000000000dEaD", 1, "100", "100", 0, 0, time.Time{}, time.Now(), time.Now())
	mock.ExpectQuery("SELECT \\* FROM `pending_txs`").WillReturnRows(rows)

	records, err := store.AllPendingTxs()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AllDepositors(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "user_address", "tranche_id", "balance", "first_deposit_ts", "updated_at"}).
		AddRow(1, "0x0000000000000000000000000000000000dEaD", 1, "100", time.Now(), time.Now())
	mock.ExpectQuery("SELECT \\* FROM `depositors`").WillReturnRows(rows)

	records, err := store.AllDepositors()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LatestTrancheSnapshots(t *testing.T) {
	store, mock := newMockStore(t)

	earlier := time.Now().Add(-time.Hour)
	later := time.Now()
	rows := sqlmock.NewRows([]string{"id", "timestamp", "tranche_id", "capital", "accumulated_yield", "protocol_earned_overflow", "nav", "created_at"}).
		AddRow(1, earlier, 6, "1000", "10", "0", "1000000000", earlier).
		AddRow(2, later, 6, "1100", "20", "0", "1100000000", later)
	mock.ExpectQuery("SELECT \\* FROM `tranche_snapshots`").WillReturnRows(rows)

	records, err := store.LatestTrancheSnapshots()
	assert.NoError(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "1100", records[0].Capital)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBigIntToString(t *testing.T) {
	tests := []struct {
		name     string
		input    *big.Int
		expected string
	}{
		{"nil value", nil, "0"},
		{"zero value", big.NewInt(0), "0"},
		{"positive value", big.NewInt(123456789), "123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, bigIntToString(tt.input))
		})
	}
}

func TestPendingTxRecord_TableName(t *testing.T) {
	assert.Equal(t, "pending_txs", PendingTxRecord{}.TableName())
}

func TestDepositorRecord_TableName(t *testing.T) {
	assert.Equal(t, "depositors", DepositorRecord{}.TableName())
}

func TestTrancheSnapshotRecord_TableName(t *testing.T) {
	assert.Equal(t, "tranche_snapshots", TrancheSnapshotRecord{}.TableName())
}
