package testing

import (
	"github.com/LeJamon/goBountySplit/internal/core/types"
	common "github.com/LeJamon/goBountySplit/internal/crypto/common"
)

// DefaultMintCode is the token a TestEnv uses unless told otherwise.
const DefaultMintCode = "USDC"

// MustMint returns the mint for a ticker-style code and panics on error.
func MustMint(code string) types.Mint {
	m, err := types.MintFromCode(code)
	if err != nil {
		panic("invalid mint code " + code + ": " + err.Error())
	}
	return m
}

// BountyID derives a deterministic bounty identifier from a label.
func BountyID(label string) types.Hash256 {
	return types.Hash256(common.Sha512Half([]byte("bounty:"), []byte(label)))
}
