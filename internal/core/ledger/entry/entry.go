package entry

import "fmt"

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeInvalid      Type = 0x0000
	TypeBountyEscrow Type = 0x0042 // Per-bounty escrow record
	TypeHolding      Type = 0x0048 // Custody balance of (mint, owner)
	TypeTransaction  Type = 0x0074 // Applied transaction record
)

// String returns the canonical name of the entry type
func (t Type) String() string {
	switch t {
	case TypeBountyEscrow:
		return "BountyEscrow"
	case TypeHolding:
		return "Holding"
	case TypeTransaction:
		return "Transaction"
	default:
		return fmt.Sprintf("Unknown(0x%04x)", uint16(t))
	}
}

// TypeFromName returns the entry type for a canonical name
func TypeFromName(name string) (Type, bool) {
	switch name {
	case "BountyEscrow":
		return TypeBountyEscrow, true
	case "Holding":
		return TypeHolding, true
	case "Transaction":
		return TypeTransaction, true
	}
	return TypeInvalid, false
}
