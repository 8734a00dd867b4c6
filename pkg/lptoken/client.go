// Package lptoken is the external-contract abstraction the vault calls to
// mint and burn LP-token shares. It mirrors the teacher's ContractClient:
// a small, method-dispatched interface standing in for a contract the
// vault does not own, resolved per tranche by address
// (tranche.lp_token_ref), per spec section 9's address-based capability
// design note.
package lptoken

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Client is the per-tranche external collaborator the vault dispatches
// mint/burn calls to. Calls are fire-and-forget from the vault's point of
// view: success here only means the call was accepted for asynchronous
// processing, not that it has been acknowledged. The eventual ack or
// bounce arrives out of band through the vault's MintAck/BurnAck/Bounce
// entry points (spec section 6).
type Client interface {
	Mint(txID uint64, to common.Address, shares *big.Int) error
	Burn(txID uint64, from common.Address, shares *big.Int) error
}

// RefundRail is the external payment abstraction used to return base
// currency to a user after a rolled-back deposit or withdraw (spec
// section 7). It is not tranche-resolved like Client: a refund is not
// share-denominated, so one rail serves every tranche.
type RefundRail interface {
	Refund(txID uint64, to common.Address, amountBase *big.Int) error
}

// Registry resolves a Client by the tranche's lp_token_ref address,
// mirroring Blackhole.Client(address) / ContractClientMap in the teacher.
type Registry struct {
	mu      sync.RWMutex
	clients map[common.Address]Client
}

// NewRegistry constructs an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[common.Address]Client)}
}

// Register binds addr to client. The vault's SetTrancheToken does not call
// it; the client for a tranche's lp_token_ref is registered here
// separately.
func (r *Registry) Register(addr common.Address, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[addr] = client
}

// Resolve returns the client bound to addr, or an error if none is
// registered.
func (r *Registry) Resolve(addr common.Address) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[addr]
	if !ok {
		return nil, fmt.Errorf("lptoken: no client registered for %s", addr.Hex())
	}
	return c, nil
}
