package bounty

import (
	"errors"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func init() {
	tx.Register(tx.TypeInitializeEscrow, func() tx.Transaction {
		return &InitializeEscrow{BaseTx: *tx.NewBaseTx(tx.TypeInitializeEscrow, types.Identity{})}
	})
}

// InitializeEscrow creates the escrow record for (Account, BountyID).
// The record is immutable afterwards except for status, totals and the
// two bitmasks.
type InitializeEscrow struct {
	tx.BaseTx

	// BountyID is an opaque identifier chosen by the requester (required)
	BountyID types.Hash256 `json:"BountyID"`

	// TokenMint is the asset held by the escrow (required)
	TokenMint types.Mint `json:"TokenMint"`

	// Recipients receive shares in this order, 1 to 8 entries (required)
	Recipients []types.Identity `json:"Recipients"`

	// Splits are the recipients' shares in basis points (required)
	Splits []uint16 `json:"Splits"`

	// RequiredConfirmations is the release quorum (required)
	RequiredConfirmations uint8 `json:"RequiredConfirmations"`

	// Arbiter is recorded but has no powers. Zero means none (optional)
	Arbiter types.Identity `json:"Arbiter,omitempty"`

	// TimelockExpiry is a unix time after which the requester may refund.
	// Zero disables it (optional)
	TimelockExpiry int64 `json:"TimelockExpiry,omitempty"`
}

// NewInitializeEscrow creates a new InitializeEscrow transaction
func NewInitializeEscrow(requester types.Identity, bountyID types.Hash256, mint types.Mint) *InitializeEscrow {
	return &InitializeEscrow{
		BaseTx:    *tx.NewBaseTx(tx.TypeInitializeEscrow, requester),
		BountyID:  bountyID,
		TokenMint: mint,
	}
}

// TxType returns the transaction type
func (i *InitializeEscrow) TxType() tx.Type {
	return tx.TypeInitializeEscrow
}

// Validate runs the creation checks that do not depend on the clock or
// on ledger state, in this order: recipient count, duplicates, splits,
// quorum, arbiter.
func (i *InitializeEscrow) Validate() error {
	if err := i.BaseTx.Validate(); err != nil {
		return err
	}

	n := len(i.Recipients)
	if err := split.ValidateRecipientCount(n); err != nil {
		return errors.New("temINVALID_RECIPIENT_COUNT: recipients must number 1 to 8")
	}

	seen := make(map[types.Identity]struct{}, n)
	for _, r := range i.Recipients {
		if _, dup := seen[r]; dup {
			return errors.New("temDUPLICATE_RECIPIENT: recipient listed twice")
		}
		seen[r] = struct{}{}
	}

	switch err := split.ValidateSplits(i.Splits, n); {
	case errors.Is(err, split.ErrZeroSplit):
		return errors.New("temZERO_SPLIT: split cannot be zero")
	case err != nil:
		return errors.New("temINVALID_SPLITS: splits must match recipients and sum to 10000")
	}

	if i.RequiredConfirmations < 1 || int(i.RequiredConfirmations) > n {
		return errors.New("temINVALID_RECIPIENT_COUNT: RequiredConfirmations must be between 1 and the recipient count")
	}

	if !i.Arbiter.IsZero() && i.Arbiter == i.Account {
		return errors.New("temINVALID_ARBITER: arbiter cannot be the requester")
	}

	if i.TokenMint.IsZero() {
		return errors.New("temMALFORMED: TokenMint is required")
	}
	for _, r := range i.Recipients {
		if r.IsZero() {
			return errors.New("temMALFORMED: recipient identity is empty")
		}
	}
	if i.TimelockExpiry < 0 {
		return errors.New("temMALFORMED: TimelockExpiry cannot be negative")
	}

	return nil
}

// Apply creates the escrow record.
func (i *InitializeEscrow) Apply(ctx *tx.ApplyContext) tx.Result {
	if i.TimelockExpiry != 0 && i.TimelockExpiry <= ctx.Unix() {
		return tx.TecINVALID_TIMELOCK
	}

	k := keylet.BountyEscrow(ctx.Caller, i.BountyID)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		ctx.Logger.Error("failed to check escrow", zap.Error(err))
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecALREADY_EXISTS
	}

	escrow := &sle.BountyEscrow{
		BountyID:              i.BountyID,
		Requester:             ctx.Caller,
		TokenMint:             i.TokenMint,
		Vault:                 keylet.Vault(k.Key),
		RecipientCount:        uint8(len(i.Recipients)),
		RequiredConfirmations: i.RequiredConfirmations,
		Arbiter:               i.Arbiter,
		TimelockExpiry:        i.TimelockExpiry,
		Status:                sle.StatusInitialized,
		CreatedAt:             ctx.Unix(),
		PreviousTxnID:         ctx.TxHash,
	}
	copy(escrow.Recipients[:], i.Recipients)
	copy(escrow.Splits[:], i.Splits)

	data, err := sle.Encode(escrow)
	if err != nil {
		ctx.Logger.Error("failed to encode escrow", zap.Error(err))
		return tx.TefINTERNAL
	}
	if err := ctx.View.Insert(k, data); err != nil {
		ctx.Logger.Error("failed to insert escrow", zap.Error(err))
		return tx.TefINTERNAL
	}

	ctx.Emit(tx.EscrowCreated{Escrow: k.Hash(), Requester: ctx.Caller, BountyID: i.BountyID})
	return tx.TesSUCCESS
}
