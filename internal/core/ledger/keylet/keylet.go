package keylet

import (
	"encoding/binary"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	crypto "github.com/LeJamon/goBountySplit/internal/crypto/common"
)

// Space identifiers for keylet generation
const (
	spaceBountyEscrow uint16 = 'B' // Bounty escrow
	spaceVault        uint16 = 'V' // Escrow vault
	spaceHolding      uint16 = 'h' // Custody holding
	spaceTransaction  uint16 = 't' // Applied transaction
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// Hash returns the key as a Hash256.
func (k Keylet) Hash() types.Hash256 {
	return types.Hash256(k.Key)
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// BountyEscrow returns the keylet of the escrow a requester opened for a bounty.
func BountyEscrow(requester types.Identity, bountyID types.Hash256) Keylet {
	return Keylet{
		Type: entry.TypeBountyEscrow,
		Key:  indexHash(spaceBountyEscrow, requester[:], bountyID[:]),
	}
}

// BountyEscrowByKey returns the keylet of an escrow whose key is already known.
func BountyEscrowByKey(key types.Hash256) Keylet {
	return Keylet{Type: entry.TypeBountyEscrow, Key: key}
}

// Vault returns the custody reference owned by an escrow. It is not a
// ledger entry by itself; holdings are keyed by it.
func Vault(escrowKey [32]byte) types.Hash256 {
	return types.Hash256(indexHash(spaceVault, escrowKey[:]))
}

// Holding returns the keylet for the balance of owner in mint. Owner is
// either an identity or a vault reference.
func Holding(mint types.Mint, owner []byte) Keylet {
	return Keylet{
		Type: entry.TypeHolding,
		Key:  indexHash(spaceHolding, mint[:], owner),
	}
}

// Transaction returns the keylet of an applied transaction.
func Transaction(hash types.Hash256) Keylet {
	return Keylet{
		Type: entry.TypeTransaction,
		Key:  indexHash(spaceTransaction, hash[:]),
	}
}

// Unchecked wraps a raw key whose type is not known.
func Unchecked(key [32]byte) Keylet {
	return Keylet{Type: entry.TypeInvalid, Key: key}
}
