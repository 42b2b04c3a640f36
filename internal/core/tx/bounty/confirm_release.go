package bounty

import (
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeConfirmRelease, func() tx.Transaction {
		return &ConfirmRelease{BaseTx: *tx.NewBaseTx(tx.TypeConfirmRelease, types.Identity{})}
	})
}

// ConfirmRelease records a recipient's approval of a pending release.
// The confirmation that reaches RequiredConfirmations releases the escrow.
type ConfirmRelease struct {
	tx.BaseTx
	EscrowRef
}

// NewConfirmRelease creates a new ConfirmRelease transaction
func NewConfirmRelease(recipient types.Identity, escrow types.Hash256) *ConfirmRelease {
	return &ConfirmRelease{
		BaseTx:    *tx.NewBaseTx(tx.TypeConfirmRelease, recipient),
		EscrowRef: EscrowRef{Escrow: escrow},
	}
}

// TxType returns the transaction type
func (c *ConfirmRelease) TxType() tx.Type {
	return tx.TypeConfirmRelease
}

// Validate validates the ConfirmRelease transaction
func (c *ConfirmRelease) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	return c.EscrowRef.validate()
}

// Apply sets the caller's confirmation bit.
func (c *ConfirmRelease) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, result := loadEscrow(ctx, c.Escrow)
	if !result.IsSuccess() {
		return result
	}

	idx := escrow.RecipientIndex(ctx.Caller)
	if idx < 0 {
		return tx.TecRECIPIENT_NOT_FOUND
	}
	if escrow.Status != sle.StatusPending {
		return tx.TecINVALID_STATUS
	}
	if err := escrow.Confirmations.Set(idx); err != nil {
		return tx.TecALREADY_CONFIRMED
	}

	if escrow.Confirmations.Count() >= int(escrow.RequiredConfirmations) {
		escrow.Status = sle.StatusReleased
		escrow.ReleasedAmount = escrow.TotalAmount
	}

	if result := storeEscrow(ctx, c.Escrow, escrow); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.ReleaseConfirmed{Escrow: c.Escrow, By: ctx.Caller, Confirmations: uint8(escrow.Confirmations)})
	return tx.TesSUCCESS
}
