package bounty

import (
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeProposeRelease, func() tx.Transaction {
		return &ProposeRelease{BaseTx: *tx.NewBaseTx(tx.TypeProposeRelease, types.Identity{})}
	})
}

// ProposeRelease moves a funded escrow to Pending so recipients can
// confirm.
type ProposeRelease struct {
	tx.BaseTx
	EscrowRef
}

// NewProposeRelease creates a new ProposeRelease transaction
func NewProposeRelease(requester types.Identity, escrow types.Hash256) *ProposeRelease {
	return &ProposeRelease{
		BaseTx:    *tx.NewBaseTx(tx.TypeProposeRelease, requester),
		EscrowRef: EscrowRef{Escrow: escrow},
	}
}

// TxType returns the transaction type
func (p *ProposeRelease) TxType() tx.Type {
	return tx.TypeProposeRelease
}

// Validate validates the ProposeRelease transaction
func (p *ProposeRelease) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	return p.EscrowRef.validate()
}

// Apply requires the requester and a Funded escrow with a positive total.
func (p *ProposeRelease) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, result := loadEscrow(ctx, p.Escrow)
	if !result.IsSuccess() {
		return result
	}

	if ctx.Caller != escrow.Requester {
		return tx.TecUNAUTHORIZED
	}
	if escrow.Status != sle.StatusFunded || escrow.TotalAmount == 0 {
		return tx.TecINVALID_STATUS
	}

	escrow.Status = sle.StatusPending
	if result := storeEscrow(ctx, p.Escrow, escrow); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.ReleaseProposed{Escrow: p.Escrow, By: ctx.Caller})
	return tx.TesSUCCESS
}
