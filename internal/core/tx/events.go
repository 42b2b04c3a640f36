package tx

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Event is emitted by a successful transaction and published to
// subscribers after commit.
type Event interface {
	EventType() string
}

type EscrowCreated struct {
	Escrow    types.Hash256  `json:"escrow"`
	Requester types.Identity `json:"requester"`
	BountyID  types.Hash256  `json:"bounty_id"`
}

type EscrowFunded struct {
	Escrow types.Hash256 `json:"escrow"`
	Amount uint64        `json:"amount,string"`
}

type ReleaseProposed struct {
	Escrow types.Hash256  `json:"escrow"`
	By     types.Identity `json:"by"`
}

type ReleaseConfirmed struct {
	Escrow        types.Hash256  `json:"escrow"`
	By            types.Identity `json:"by"`
	Confirmations uint8          `json:"confirmations"`
}

// EscrowReleased is emitted by every claim with the amount it transferred.
type EscrowReleased struct {
	Escrow           types.Hash256  `json:"escrow"`
	Recipient        types.Identity `json:"recipient"`
	TotalDistributed uint64         `json:"total_distributed,string"`
}

type EscrowRefunded struct {
	Escrow     types.Hash256  `json:"escrow"`
	RefundedTo types.Identity `json:"refunded_to"`
	Amount     uint64         `json:"amount,string"`
}

func (EscrowCreated) EventType() string    { return "EscrowCreated" }
func (EscrowFunded) EventType() string     { return "EscrowFunded" }
func (ReleaseProposed) EventType() string  { return "ReleaseProposed" }
func (ReleaseConfirmed) EventType() string { return "ReleaseConfirmed" }
func (EscrowReleased) EventType() string   { return "EscrowReleased" }
func (EscrowRefunded) EventType() string   { return "EscrowRefunded" }

// MarshalEvent encodes an event with its type name.
func MarshalEvent(e Event) (json.RawMessage, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	name, _ := json.Marshal(e.EventType())
	fields["type"] = name
	return json.Marshal(fields)
}
