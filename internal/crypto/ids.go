package crypto

import (
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// CalcAccountID computes the account ID from a public key as
// RIPEMD160(SHA256(publicKey)).
func CalcAccountID(publicKey []byte) types.AccountID {
	sha256Hash := sha256.Sum256(publicKey)

	ripemd160Hasher := ripemd160.New()
	ripemd160Hasher.Write(sha256Hash[:])
	ripemd160Hash := ripemd160Hasher.Sum(nil)

	var result types.AccountID
	copy(result[:], ripemd160Hash)
	return result
}

// AccountOf returns the account ID of an identity.
func AccountOf(id types.Identity) types.AccountID {
	return CalcAccountID(id[:])
}
