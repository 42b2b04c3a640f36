package sle

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// TxRecord marks a transaction hash as applied. Its presence rejects
// resubmission of the same signed blob.
type TxRecord struct {
	Hash            types.Hash256  `codec:"hash" json:"hash"`
	TransactionType string         `codec:"transaction_type" json:"transaction_type"`
	Account         types.Identity `codec:"account" json:"account"`
	Result          string         `codec:"result" json:"result"`
	Blob            []byte         `codec:"blob" json:"-"`
	AppliedAt       int64          `codec:"applied_at" json:"applied_at"`
}

func (*TxRecord) EntryType() entry.Type { return entry.TypeTransaction }

// Tx returns the original transaction JSON.
func (r *TxRecord) Tx() json.RawMessage {
	return json.RawMessage(r.Blob)
}

// ParseTxRecord decodes a serialized transaction record.
func ParseTxRecord(data []byte) (*TxRecord, error) {
	r := &TxRecord{}
	if err := decodeInto(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
