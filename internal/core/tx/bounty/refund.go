package bounty

import (
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeRefund, func() tx.Transaction {
		return &Refund{BaseTx: *tx.NewBaseTx(tx.TypeRefund, types.Identity{})}
	})
}

// Refund returns the whole escrow total to the requester. It is only
// possible before release, and only once the timelock (if any) expired.
type Refund struct {
	tx.BaseTx
	EscrowRef
}

// NewRefund creates a new Refund transaction
func NewRefund(requester types.Identity, escrow types.Hash256) *Refund {
	return &Refund{
		BaseTx:    *tx.NewBaseTx(tx.TypeRefund, requester),
		EscrowRef: EscrowRef{Escrow: escrow},
	}
}

// TxType returns the transaction type
func (r *Refund) TxType() tx.Type {
	return tx.TypeRefund
}

// Validate validates the Refund transaction
func (r *Refund) Validate() error {
	if err := r.BaseTx.Validate(); err != nil {
		return err
	}
	return r.EscrowRef.validate()
}

// Apply withdraws the total to the requester and closes the escrow.
func (r *Refund) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, result := loadEscrow(ctx, r.Escrow)
	if !result.IsSuccess() {
		return result
	}

	if ctx.Caller != escrow.Requester {
		return tx.TecUNAUTHORIZED
	}
	if escrow.Status == sle.StatusReleased || escrow.Status == sle.StatusRefunded {
		return tx.TecALREADY_FINALIZED
	}
	if escrow.TimelockExpiry != 0 && ctx.Unix() < escrow.TimelockExpiry {
		return tx.TecTIMELOCK_ACTIVE
	}
	if escrow.TotalAmount == 0 {
		return tx.TecINSUFFICIENT_FUNDS
	}

	amount := escrow.TotalAmount
	if err := ctx.Custody.Withdraw(escrow.TokenMint, escrow.Vault, escrow.Requester, amount); err != nil {
		return custodyResult(ctx, err)
	}

	escrow.TotalAmount = 0
	escrow.Status = sle.StatusRefunded
	if result := storeEscrow(ctx, r.Escrow, escrow); !result.IsSuccess() {
		return result
	}

	ctx.Metadata.DeliveredAmount = amount
	ctx.Emit(tx.EscrowRefunded{Escrow: r.Escrow, RefundedTo: escrow.Requester, Amount: amount})
	return tx.TesSUCCESS
}
