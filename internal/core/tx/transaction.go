package tx

import (
	"errors"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate performs the checks that do not depend on ledger state.
	// Errors carry the result token as a prefix, e.g. "temZERO_SPLIT: ...".
	Validate() error

	// GetRawBytes returns the JSON the transaction was parsed from, if any
	GetRawBytes() []byte

	// SetRawBytes stores the original JSON
	SetRawBytes([]byte)
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	TransactionType string `json:"TransactionType"`

	// Account is the identity of the caller. The transaction must be
	// signed by its key.
	Account types.Identity `json:"Account"`

	// Sequence is a caller-chosen nonce. Two otherwise identical
	// operations need distinct sequences to have distinct hashes.
	Sequence uint32 `json:"Sequence,omitempty"`

	// TxnSignature is the hex DER signature over the signing hash
	TxnSignature string `json:"TxnSignature,omitempty"`

	// RawBytes stores the original JSON for hash computation
	RawBytes []byte `json:"-"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account.IsZero() {
		return errors.New("temBAD_SRC_ACCOUNT: Account is required")
	}
	if c.TransactionType == "" {
		return errors.New("temINVALID: TransactionType is required")
	}
	return nil
}

// GetRawBytes returns the original serialized bytes
func (c *Common) GetRawBytes() []byte {
	return c.RawBytes
}

// SetRawBytes stores the original serialized bytes
func (c *Common) SetRawBytes(data []byte) {
	c.RawBytes = data
}

// SetSequence sets the sequence number
func (c *Common) SetSequence(seq uint32) {
	c.Sequence = seq
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// NewBaseTx creates a new base transaction
func NewBaseTx(txType Type, account types.Identity) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
