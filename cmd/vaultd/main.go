package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	vaultdex "github.com/tonsurance/vault"
	"github.com/tonsurance/vault/configs"
	"github.com/tonsurance/vault/internal/db"
	"github.com/tonsurance/vault/pkg/lptoken"
	"github.com/tonsurance/vault/pkg/retrydispatch"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("VAULT_DSN")
	if dsn == "" {
		panic("VAULT_DSN not set")
	}

	conf, err := configs.LoadConfig("configs/config.yml")
	if err != nil {
		panic(err)
	}

	store, err := db.NewStore(dsn)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	lpClients := lptoken.NewRegistry()

	epoch := time.Now()
	vaultCfg := conf.ToVaultConfig(epoch)
	vaultCfg.Store = db.NewVaultStore(store)
	v := vaultdex.New(vaultCfg, lpClients)

	if err := rehydrate(v, store); err != nil {
		panic(err)
	}

	dispatcher := retrydispatch.NewDispatcher(
		v,
		retrydispatch.WithPollInterval(3*time.Second),
		retrydispatch.WithTimeout(0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	log.Println("vault started")
	for ev := range v.Events() {
		fmt.Printf("[%s] %s phase=%s tx=%d tranche=%d: %s\n",
			ev.Timestamp.Format(time.RFC3339), ev.Kind, ev.Phase, ev.TxID, ev.TrancheID, ev.Message)
	}
}

// rehydrate restores the vault's in-memory state from its durable mirror at
// process start (SPEC_FULL.md section 4.14): pending transactions, then
// depositor balances, then each tranche's latest capital/yield/overflow
// snapshot. Order doesn't matter for correctness — the three record types
// don't reference each other — but pending txs are seeded first since they
// are the most time-sensitive (their next_retry_ts may already be due).
func rehydrate(v *vaultdex.Vault, store *db.Store) error {
	pendingTxs, err := store.AllPendingTxs()
	if err != nil {
		return fmt.Errorf("rehydrate pending txs: %w", err)
	}
	for _, rec := range pendingTxs {
		v.SeedPendingTx(db.PendingTxFromRecord(rec))
	}

	depositors, err := store.AllDepositors()
	if err != nil {
		return fmt.Errorf("rehydrate depositors: %w", err)
	}
	for _, rec := range depositors {
		user, trancheID, balance, firstDepositTS := db.DepositorFromRecord(rec)
		v.SeedDepositor(user, trancheID, balance, firstDepositTS)
	}

	snapshots, err := store.LatestTrancheSnapshots()
	if err != nil {
		return fmt.Errorf("rehydrate tranche snapshots: %w", err)
	}
	for _, rec := range snapshots {
		trancheID, capital, accumulatedYield, protocolEarnedOverflow := db.TrancheStateFromSnapshot(rec)
		if err := v.SeedTrancheState(trancheID, capital, accumulatedYield, protocolEarnedOverflow); err != nil {
			return fmt.Errorf("rehydrate tranche %s: %w", trancheID, err)
		}
	}

	log.Printf("rehydrated %d pending txs, %d depositors, %d tranche snapshots",
		len(pendingTxs), len(depositors), len(snapshots))
	return nil
}
