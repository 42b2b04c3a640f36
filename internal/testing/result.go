package testing

import (
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was successfully applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash is the transaction hash. It is zero when the transaction was
	// rejected before hashing.
	Hash types.Hash256

	// Events are the events emitted by the transaction.
	Events []tx.Event

	// Metadata contains the affected nodes and delivered amount.
	Metadata *tx.Metadata
}

func newTxResult(r tx.ApplyResult) TxResult {
	return TxResult{
		Code:     r.Result.String(),
		Success:  r.Result.IsSuccess(),
		Message:  r.Message,
		Hash:     r.Hash,
		Events:   r.Events,
		Metadata: r.Metadata,
	}
}

// IsSuccess returns true if the transaction succeeded.
func (r TxResult) IsSuccess() bool {
	return r.Success
}

// IsClaimed returns true if the transaction failed with a tec code.
func (r TxResult) IsClaimed() bool {
	return len(r.Code) >= 3 && r.Code[:3] == "tec"
}

// IsMalformed returns true if the transaction failed stateless checks.
func (r TxResult) IsMalformed() bool {
	return len(r.Code) >= 3 && r.Code[:3] == "tem"
}

// Delivered returns the amount moved by a Claim or Refund.
func (r TxResult) Delivered() uint64 {
	if r.Metadata == nil {
		return 0
	}
	return r.Metadata.DeliveredAmount
}
