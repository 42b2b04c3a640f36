package bounty

import (
	"errors"
	"math"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeFundEscrow, func() tx.Transaction {
		return &FundEscrow{BaseTx: *tx.NewBaseTx(tx.TypeFundEscrow, types.Identity{})}
	})
}

// FundEscrow moves Amount from the requester's holding into the vault.
// Funding is cumulative while the escrow is Initialized or Funded.
type FundEscrow struct {
	tx.BaseTx
	EscrowRef

	// Amount in base units (required, > 0)
	Amount uint64 `json:"Amount,string"`

	// TokenMint, if set, must equal the escrow's mint (optional)
	TokenMint types.Mint `json:"TokenMint,omitempty"`
}

// NewFundEscrow creates a new FundEscrow transaction
func NewFundEscrow(requester types.Identity, escrow types.Hash256, amount uint64) *FundEscrow {
	return &FundEscrow{
		BaseTx:    *tx.NewBaseTx(tx.TypeFundEscrow, requester),
		EscrowRef: EscrowRef{Escrow: escrow},
		Amount:    amount,
	}
}

// TxType returns the transaction type
func (f *FundEscrow) TxType() tx.Type {
	return tx.TypeFundEscrow
}

// Validate validates the FundEscrow transaction
func (f *FundEscrow) Validate() error {
	if err := f.BaseTx.Validate(); err != nil {
		return err
	}
	if f.Amount == 0 {
		return errors.New("temINVALID_AMOUNT: Amount must be positive")
	}
	return f.EscrowRef.validate()
}

// Apply deposits into the vault and raises the escrow total.
func (f *FundEscrow) Apply(ctx *tx.ApplyContext) tx.Result {
	escrow, result := loadEscrow(ctx, f.Escrow)
	if !result.IsSuccess() {
		return result
	}

	if ctx.Caller != escrow.Requester {
		return tx.TecUNAUTHORIZED
	}
	if result := checkMint(f.TokenMint, escrow); !result.IsSuccess() {
		return result
	}
	if escrow.Status != sle.StatusInitialized && escrow.Status != sle.StatusFunded {
		return tx.TecINVALID_STATUS
	}
	if escrow.TotalAmount > math.MaxUint64-f.Amount {
		return tx.TecOVERFLOW
	}

	if err := ctx.Custody.Deposit(escrow.TokenMint, escrow.Vault, ctx.Caller, f.Amount); err != nil {
		return custodyResult(ctx, err)
	}

	escrow.TotalAmount += f.Amount
	escrow.Status = sle.StatusFunded

	if result := storeEscrow(ctx, f.Escrow, escrow); !result.IsSuccess() {
		return result
	}

	ctx.Emit(tx.EscrowFunded{Escrow: f.Escrow, Amount: f.Amount})
	return tx.TesSUCCESS
}
