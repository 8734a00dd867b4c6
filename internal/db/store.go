// Package db is the GORM/MySQL persistence layer backing the in-memory
// vault. It durably mirrors PendingTx, DepositorEntry and periodic tranche
// snapshots so state survives a process restart; the in-memory vault
// remains the source of truth during a process's lifetime.
package db

import (
	"fmt"
	"math/big"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PendingTxRecord is the durable twin of vault.PendingTx. Amounts are
// string-encoded big.Int, matching AssetSnapshotRecord's convention for
// values that do not fit in a native SQL integer type.
type PendingTxRecord struct {
	TxID         uint64 `gorm:"primaryKey"`
	OpKind       int    `gorm:"not null;comment:OpKind as integer"`
	UserAddress  string `gorm:"type:varchar(42);index;not null"`
	TrancheID    uint8  `gorm:"index;not null"`
	AmountBase   string `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	AmountShares string `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	Status       int    `gorm:"index;not null;comment:TxStatus as integer"`
	RetryCount   int    `gorm:"not null"`
	NextRetryTS  time.Time
	CreatedTS    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (PendingTxRecord) TableName() string {
	return "pending_txs"
}

// DepositorRecord is the durable twin of vault.DepositorEntry, keyed by
// (user_address, tranche_id).
type DepositorRecord struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	UserAddress    string    `gorm:"type:varchar(42);uniqueIndex:idx_depositor;not null"`
	TrancheID      uint8     `gorm:"uniqueIndex:idx_depositor;not null"`
	Balance        string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	FirstDepositTS time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM.
func (DepositorRecord) TableName() string {
	return "depositors"
}

// TrancheSnapshotRecord is a periodic audit snapshot of all six tranches,
// mirroring AssetSnapshotRecord's role for the teacher's strategy.
type TrancheSnapshotRecord struct {
	ID                     uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp              time.Time `gorm:"index;not null"`
	TrancheID              uint8     `gorm:"index;not null"`
	Capital                string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	AccumulatedYield       string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	ProtocolEarnedOverflow string    `gorm:"type:varchar(78);not null;comment:big.Int as string"`
	NAV                    string    `gorm:"type:varchar(78);not null;comment:Ray-scaled big.Int as string"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM.
func (TrancheSnapshotRecord) TableName() string {
	return "tranche_snapshots"
}

// Store wraps a GORM DB handle for the vault's three record types.
type Store struct {
	db *gorm.DB
}

// NewStore opens a MySQL connection and auto-migrates the schema.
// dsn format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
func NewStore(dsn string) (*Store, error) {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return NewStoreWithDB(gdb)
}

// NewStoreWithDB wraps an existing GORM DB instance, auto-migrating the
// schema. Used directly by tests against a sqlmock-backed *gorm.DB.
func NewStoreWithDB(gdb *gorm.DB) (*Store, error) {
	if err := gdb.AutoMigrate(&PendingTxRecord{}, &DepositorRecord{}, &TrancheSnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: gdb}, nil
}

// UpsertPendingTx writes a PendingTxRecord, overwriting any existing row
// with the same tx_id.
func (s *Store) UpsertPendingTx(rec PendingTxRecord) error {
	result := s.db.Save(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert pending tx %d: %w", rec.TxID, result.Error)
	}
	return nil
}

// DeleteTerminalPendingTx removes a compacted PendingTx row.
func (s *Store) DeleteTerminalPendingTx(txID uint64) error {
	result := s.db.Delete(&PendingTxRecord{}, "tx_id = ?", txID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete pending tx %d: %w", txID, result.Error)
	}
	return nil
}

// PendingTxsDueForRetry returns every row in PENDING status whose
// next_retry_ts has elapsed. Rehydration at process start (cmd/vaultd)
// reads every row through AllPendingTxs rather than this query.
func (s *Store) PendingTxsDueForRetry(now time.Time) ([]PendingTxRecord, error) {
	var records []PendingTxRecord
	result := s.db.Where("status = ? AND next_retry_ts <= ?", 0 /* StatusPending */, now).
		Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query due pending txs: %w", result.Error)
	}
	return records, nil
}

// UpsertDepositor writes a DepositorRecord for (userAddress, trancheID).
func (s *Store) UpsertDepositor(rec DepositorRecord) error {
	result := s.db.Where("user_address = ? AND tranche_id = ?", rec.UserAddress, rec.TrancheID).
		Assign(rec).
		FirstOrCreate(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert depositor %s/%d: %w", rec.UserAddress, rec.TrancheID, result.Error)
	}
	return nil
}

// DeleteDepositor removes the durable row for (userAddress, trancheID),
// mirroring the in-memory ledger's zero-balance garbage collection.
func (s *Store) DeleteDepositor(userAddress string, trancheID uint8) error {
	result := s.db.Where("user_address = ? AND tranche_id = ?", userAddress, trancheID).
		Delete(&DepositorRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete depositor %s/%d: %w", userAddress, trancheID, result.Error)
	}
	return nil
}

// RecordTrancheSnapshot inserts one audit row per tranche.
func (s *Store) RecordTrancheSnapshot(rec TrancheSnapshotRecord) error {
	result := s.db.Create(&rec)
	if result.Error != nil {
		return fmt.Errorf("failed to record tranche snapshot: %w", result.Error)
	}
	return nil
}

// AllPendingTxs returns every PendingTx row, for rehydrating the in-memory
// pending table at process start.
func (s *Store) AllPendingTxs() ([]PendingTxRecord, error) {
	var records []PendingTxRecord
	result := s.db.Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query all pending txs: %w", result.Error)
	}
	return records, nil
}

// AllDepositors returns every depositor row, for rehydrating the in-memory
// ledger at process start.
func (s *Store) AllDepositors() ([]DepositorRecord, error) {
	var records []DepositorRecord
	result := s.db.Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query all depositors: %w", result.Error)
	}
	return records, nil
}

// LatestTrancheSnapshots returns the most recent snapshot row per tranche
// id, for rehydrating each tranche's capital/yield/overflow at process
// start. navLossFactor is not part of this schema and is never restored.
func (s *Store) LatestTrancheSnapshots() ([]TrancheSnapshotRecord, error) {
	var records []TrancheSnapshotRecord
	result := s.db.Order("tranche_id, timestamp ASC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query tranche snapshots: %w", result.Error)
	}
	latest := make(map[uint8]TrancheSnapshotRecord, 6)
	for _, rec := range records {
		latest[rec.TrancheID] = rec
	}
	out := make([]TrancheSnapshotRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	return out, nil
}

// GetDB returns the underlying GORM DB instance for advanced queries.
func (s *Store) GetDB() *gorm.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}

// bigIntToString safely converts *big.Int to string, handling nil values.
func bigIntToString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
