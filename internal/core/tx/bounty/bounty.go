// Package bounty implements the bounty escrow transactions: InitializeEscrow,
// FundEscrow, ProposeRelease, ConfirmRelease, Claim and Refund.
package bounty

import (
	"errors"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// loadEscrow reads the escrow at key.
func loadEscrow(ctx *tx.ApplyContext, key types.Hash256) (*sle.BountyEscrow, tx.Result) {
	data, err := ctx.View.Read(keylet.BountyEscrowByKey(key))
	if err != nil {
		ctx.Logger.Error("failed to read escrow", zap.Error(err))
		return nil, tx.TefINTERNAL
	}
	if data == nil {
		return nil, tx.TecNO_ENTRY
	}
	escrow, err := sle.ParseBountyEscrow(data)
	if err != nil {
		ctx.Logger.Error("failed to decode escrow", zap.Error(err))
		return nil, tx.TefINTERNAL
	}
	return escrow, tx.TesSUCCESS
}

// storeEscrow writes an existing escrow back and stamps it with the
// current transaction.
func storeEscrow(ctx *tx.ApplyContext, key types.Hash256, escrow *sle.BountyEscrow) tx.Result {
	escrow.PreviousTxnID = ctx.TxHash
	data, err := sle.Encode(escrow)
	if err != nil {
		ctx.Logger.Error("failed to encode escrow", zap.Error(err))
		return tx.TefINTERNAL
	}
	if err := ctx.View.Update(keylet.BountyEscrowByKey(key), data); err != nil {
		ctx.Logger.Error("failed to update escrow", zap.Error(err))
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}

// custodyResult maps a custody failure to a result code.
func custodyResult(ctx *tx.ApplyContext, err error) tx.Result {
	if errors.Is(err, tx.ErrInsufficientFunds) {
		return tx.TecINSUFFICIENT_FUNDS
	}
	ctx.Logger.Error("custody transfer failed", zap.Error(err))
	return tx.TefINTERNAL
}

// checkMint verifies an optional mint named by the caller.
func checkMint(requested types.Mint, escrow *sle.BountyEscrow) tx.Result {
	if !requested.IsZero() && requested != escrow.TokenMint {
		return tx.TecINVALID_MINT
	}
	return tx.TesSUCCESS
}

// EscrowRef names an existing escrow by its record key.
type EscrowRef struct {
	Escrow types.Hash256 `json:"Escrow"`
}

func (r EscrowRef) validate() error {
	if r.Escrow.IsZero() {
		return errors.New("temMALFORMED: Escrow is required")
	}
	return nil
}
