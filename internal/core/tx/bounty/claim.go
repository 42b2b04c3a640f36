package bounty

import (
	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeClaim, func() tx.Transaction {
		return &Claim{BaseTx: *tx.NewBaseTx(tx.TypeClaim, types.Identity{})}
	})
}

// Claim withdraws the caller's share of a released escrow.
//
// The share is floor(ReleasedAmount * split / 10000), independent of who
// claimed before. When the last recipient claims, TotalAmount is set to
// zero and any rounding dust remains in the vault.
type Claim struct {
	tx.BaseTx
	EscrowRef

	// Destination receives the share. Defaults to the caller (optional)
	Destination types.Identity `json:"Destination,omitempty"`

	// TokenMint, if set, must equal the escrow's mint (optional)
	TokenMint types.Mint `json:"TokenMint,omitempty"`
}

// NewClaim creates a new Claim transaction
func NewClaim(recipient types.Identity, escrow types.Hash256) *Claim {
	return &Claim{
		BaseTx:    *tx.NewBaseTx(tx.TypeClaim, recipient),
		EscrowRef: EscrowRef{Escrow: escrow},
	}
}

// TxType returns the transaction type
func (c *Claim) TxType() tx.Type {
	return tx.TypeClaim
}

// Validate validates the Claim transaction
func (c *Claim) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	return c.EscrowRef.validate()
}

// Apply transfers the share and sets the caller's claim bit.
func (c *Claim) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, result := loadEscrow(ctx, c.Escrow)
	if !result.IsSuccess() {
		return result
	}

	idx := escrow.RecipientIndex(ctx.Caller)
	if idx < 0 {
		return tx.TecRECIPIENT_NOT_FOUND
	}
	if escrow.Status != sle.StatusReleased {
		return tx.TecINVALID_STATUS
	}
	if escrow.Claimed.IsSet(idx) {
		return tx.TecALREADY_CLAIMED
	}
	if result := checkMint(c.TokenMint, escrow); !result.IsSuccess() {
		return result
	}

	share := split.Share(escrow.ReleasedAmount, escrow.Splits[idx])
	// A zero share is never claimable; see the split package doc
	if share == 0 {
		return tx.TecINVALID_SPLITS
	}
	if share > escrow.TotalAmount {
		ctx.Logger.Error("claim share exceeds escrow total",
			zap.Uint64("share", share), zap.Uint64("total", escrow.TotalAmount))
		return tx.TefINTERNAL
	}

	destination := c.Destination
	if destination.IsZero() {
		destination = ctx.Caller
	}
	if err := ctx.Custody.Withdraw(escrow.TokenMint, escrow.Vault, destination, share); err != nil {
		return custodyResult(ctx, err)
	}

	if err := escrow.Claimed.Set(idx); err != nil {
		return tx.TecALREADY_CLAIMED
	}
	escrow.TotalAmount -= share
	if escrow.AllClaimed() {
		escrow.TotalAmount = 0
	}

	if result := storeEscrow(ctx, c.Escrow, escrow); !result.IsSuccess() {
		return result
	}

	ctx.Metadata.DeliveredAmount = share
	ctx.Emit(tx.EscrowReleased{Escrow: c.Escrow, Recipient: ctx.Caller, TotalDistributed: share})
	return tx.TesSUCCESS
}
