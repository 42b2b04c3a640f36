package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// All transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	TypeInitializeEscrow Type = 1
	TypeFundEscrow       Type = 2
	TypeProposeRelease   Type = 3
	TypeConfirmRelease   Type = 4
	TypeClaim            Type = 5
	TypeRefund           Type = 6
)

var typeNames = map[Type]string{
	TypeInitializeEscrow: "InitializeEscrow",
	TypeFundEscrow:       "FundEscrow",
	TypeProposeRelease:   "ProposeRelease",
	TypeConfirmRelease:   "ConfirmRelease",
	TypeClaim:            "Claim",
	TypeRefund:           "Refund",
}

var typeNameMap = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the string name of the transaction type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the transaction type for a given name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}
