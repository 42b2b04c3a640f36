package sle

import (
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// EscrowStatus is the lifecycle state of a bounty escrow.
type EscrowStatus uint8

const (
	StatusInitialized EscrowStatus = 0
	StatusFunded      EscrowStatus = 1
	StatusPending     EscrowStatus = 2
	StatusReleased    EscrowStatus = 3
	// StatusDisputed is reserved for arbiter intervention. No transaction
	// moves an escrow into it.
	StatusDisputed EscrowStatus = 4
	StatusRefunded EscrowStatus = 5
)

func (s EscrowStatus) String() string {
	switch s {
	case StatusInitialized:
		return "Initialized"
	case StatusFunded:
		return "Funded"
	case StatusPending:
		return "Pending"
	case StatusReleased:
		return "Released"
	case StatusDisputed:
		return "Disputed"
	case StatusRefunded:
		return "Refunded"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

func (s EscrowStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *EscrowStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		var n uint8
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		*s = EscrowStatus(n)
		return nil
	}
	for c := StatusInitialized; c <= StatusRefunded; c++ {
		if c.String() == name {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown escrow status %q", name)
}

// BountyEscrow is the per-bounty escrow record, keyed by
// keylet.BountyEscrow(Requester, BountyID).
type BountyEscrow struct {
	BountyID              types.Hash256                       `codec:"bounty_id" json:"bounty_id"`
	Requester             types.Identity                      `codec:"requester" json:"requester"`
	TokenMint             types.Mint                          `codec:"token_mint" json:"token_mint"`
	Vault                 types.Hash256                       `codec:"vault" json:"vault"`
	RecipientCount        uint8                               `codec:"recipient_count" json:"recipient_count"`
	Recipients            [split.MaxRecipients]types.Identity `codec:"recipients" json:"-"`
	Splits                [split.MaxRecipients]uint16         `codec:"splits" json:"-"`
	RequiredConfirmations uint8                               `codec:"required_confirmations" json:"required_confirmations"`
	Arbiter               types.Identity                      `codec:"arbiter" json:"arbiter"`
	TimelockExpiry        int64                               `codec:"timelock_expiry" json:"timelock_expiry"`
	Status                EscrowStatus                        `codec:"status" json:"status"`
	TotalAmount           uint64                              `codec:"total_amount" json:"total_amount"`
	// ReleasedAmount is TotalAmount captured when quorum was reached.
	// Claim shares are computed against it.
	ReleasedAmount uint64        `codec:"released_amount" json:"released_amount"`
	Confirmations  split.Bitmask `codec:"confirmations" json:"confirmations"`
	Claimed        split.Bitmask `codec:"claimed" json:"claimed"`
	CreatedAt      int64         `codec:"created_at" json:"created_at"`
	PreviousTxnID  types.Hash256 `codec:"previous_txn_id" json:"previous_txn_id"`
}

func (*BountyEscrow) EntryType() entry.Type { return entry.TypeBountyEscrow }

// ActiveRecipients returns the recipients in index order.
func (e *BountyEscrow) ActiveRecipients() []types.Identity {
	out := make([]types.Identity, e.RecipientCount)
	copy(out, e.Recipients[:e.RecipientCount])
	return out
}

// ActiveSplits returns the splits in recipient order.
func (e *BountyEscrow) ActiveSplits() []uint16 {
	out := make([]uint16, e.RecipientCount)
	copy(out, e.Splits[:e.RecipientCount])
	return out
}

// RecipientIndex returns the bit index of id, or -1.
func (e *BountyEscrow) RecipientIndex(id types.Identity) int {
	for i := 0; i < int(e.RecipientCount); i++ {
		if e.Recipients[i] == id {
			return i
		}
	}
	return -1
}

// AllClaimed reports whether every recipient has claimed.
func (e *BountyEscrow) AllClaimed() bool {
	return e.Claimed.Full(int(e.RecipientCount))
}

// MarshalJSON flattens the fixed arrays to the active recipients.
func (e *BountyEscrow) MarshalJSON() ([]byte, error) {
	type plain BountyEscrow
	return json.Marshal(struct {
		*plain
		Recipients []types.Identity `json:"recipients"`
		Splits     []uint16         `json:"splits"`
	}{
		plain:      (*plain)(e),
		Recipients: e.ActiveRecipients(),
		Splits:     e.ActiveSplits(),
	})
}

// ParseBountyEscrow decodes a serialized bounty escrow.
func ParseBountyEscrow(data []byte) (*BountyEscrow, error) {
	e := &BountyEscrow{}
	if err := decodeInto(data, e); err != nil {
		return nil, err
	}
	return e, nil
}
