package vault

import "math/big"

// DispatchRequest bundles every field any single operation in the external
// surface of spec section 6 might need. Only the fields relevant to Op are
// read; the rest are ignored.
type DispatchRequest struct {
	Caller Address

	TrancheID     TrancheID
	User          Address
	AmountBase    *big.Int
	SharesToBurn  *big.Int
	PremiumAmount *big.Int
	LossAmount    *big.Int
	Gas           GasBudget

	TxID         uint64
	PayoutFailed bool

	TokenAddress  Address
	ApyMinBps     uint16
	ApyMaxBps     uint16
	CurveID       CurveID
	AllocationBps uint32
}

// DispatchResult carries whichever of these fields the executed operation
// produced; the rest are left at their zero value.
type DispatchResult struct {
	TxID uint64
}

// Dispatch routes a single external message to the corresponding Vault
// method, mirroring the address/method-dispatched external surface of spec
// section 6. It exists alongside the individually-callable methods (Deposit,
// Withdraw, ...) for callers that receive an untyped op code off the wire
// rather than calling into the Go API directly.
func (v *Vault) Dispatch(op OpCode, req DispatchRequest) (DispatchResult, error) {
	switch op {
	case OpDepositCode:
		txID, err := v.Deposit(req.User, req.TrancheID, req.AmountBase, req.Gas)
		return DispatchResult{TxID: txID}, err
	case OpWithdrawCode:
		txID, err := v.Withdraw(req.User, req.TrancheID, req.SharesToBurn)
		return DispatchResult{TxID: txID}, err
	case OpMintAck:
		return DispatchResult{}, v.HandleMintAck(req.Caller, req.TxID)
	case OpBurnAck:
		return DispatchResult{}, v.HandleBurnAck(req.Caller, req.TxID, req.PayoutFailed)
	case OpDistributePremium:
		return DispatchResult{}, v.DistributePremium(req.Caller, req.PremiumAmount)
	case OpAbsorbLoss:
		return DispatchResult{}, v.AbsorbLoss(req.Caller, req.Gas, req.LossAmount)
	case OpRetryPayout:
		return DispatchResult{}, v.RetryPayout(req.Caller, req.TxID)
	case OpPause:
		return DispatchResult{}, v.Pause(req.Caller)
	case OpUnpause:
		return DispatchResult{}, v.Unpause(req.Caller)
	case OpSetTrancheToken:
		return DispatchResult{}, v.SetTrancheToken(req.Caller, req.TrancheID, req.TokenAddress)
	case OpSetTrancheParams:
		return DispatchResult{}, v.SetTrancheParams(req.Caller, req.TrancheID, req.ApyMinBps, req.ApyMaxBps, req.CurveID, req.AllocationBps)
	case OpFlushEQTOverflow:
		return DispatchResult{}, v.FlushEQTOverflow(req.Caller, req.TokenAddress)
	case OpBounce:
		return DispatchResult{}, v.HandleBounce(req.TxID)
	default:
		return DispatchResult{}, ErrUnknownOp
	}
}
