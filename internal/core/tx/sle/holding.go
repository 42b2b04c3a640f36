package sle

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Holding is the custody balance of one owner in one mint. Owner is a
// 33-byte identity or a 32-byte vault reference.
type Holding struct {
	Mint          types.Mint    `codec:"mint" json:"mint"`
	Owner         []byte        `codec:"owner" json:"-"`
	Balance       uint64        `codec:"balance" json:"balance"`
	PreviousTxnID types.Hash256 `codec:"previous_txn_id" json:"previous_txn_id"`
}

func (*Holding) EntryType() entry.Type { return entry.TypeHolding }

func (h *Holding) MarshalJSON() ([]byte, error) {
	type plain Holding
	return json.Marshal(struct {
		*plain
		Owner string `json:"owner"`
	}{
		plain: (*plain)(h),
		Owner: strings.ToUpper(hex.EncodeToString(h.Owner)),
	})
}

// ParseHolding decodes a serialized holding.
func ParseHolding(data []byte) (*Holding, error) {
	h := &Holding{}
	if err := decodeInto(data, h); err != nil {
		return nil, err
	}
	return h, nil
}
