package db

import (
	"math/big"
	"time"

	"github.com/tonsurance/vault"
)

// VaultStore adapts *Store to vault.Persister, keeping the vault package
// free of any dependency on gorm or this package (vault's own persist.go
// depends only on the Persister interface it declares).
type VaultStore struct {
	store *Store
}

var _ vault.Persister = (*VaultStore)(nil)

// NewVaultStore wraps store as a vault.Persister.
func NewVaultStore(store *Store) *VaultStore {
	return &VaultStore{store: store}
}

func (s *VaultStore) SavePendingTx(tx *vault.PendingTx) error {
	return s.store.UpsertPendingTx(PendingTxRecordFrom(tx))
}

func (s *VaultStore) DeletePendingTx(txID uint64) error {
	return s.store.DeleteTerminalPendingTx(txID)
}

func (s *VaultStore) SaveDepositor(user vault.Address, trancheID vault.TrancheID, balance *big.Int, firstDepositTS time.Time) error {
	entry := &vault.DepositorEntry{Balance: balance, FirstDepositTS: firstDepositTS}
	return s.store.UpsertDepositor(DepositorRecordFrom(user, trancheID, entry))
}

func (s *VaultStore) DeleteDepositor(user vault.Address, trancheID vault.TrancheID) error {
	return s.store.DeleteDepositor(user.Hex(), uint8(trancheID))
}

func (s *VaultStore) SaveTrancheSnapshot(t *vault.Tranche, at time.Time) error {
	return s.store.RecordTrancheSnapshot(TrancheSnapshotRecordFrom(t, at))
}
