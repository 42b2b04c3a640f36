// Package types defines the fixed-size identifiers shared by the ledger,
// the transactors and the RPC layer.
package types

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// IdentitySize is the size of a compressed secp256k1 public key.
	IdentitySize = 33
	// AccountIDSize is the size of RIPEMD160(SHA256(pubkey)).
	AccountIDSize = 20
	// HashSize is the size of a Sha512Half digest.
	HashSize = 32
	// MintSize is the size of an asset identifier.
	MintSize = 32
)

var (
	ErrInvalidLength = errors.New("invalid length")
	ErrInvalidHex    = errors.New("invalid hex")
)

// Identity is a caller identity: the compressed secp256k1 public key
// that signs its transactions.
type Identity [IdentitySize]byte

// AccountID is the short form of an Identity used to index history.
type AccountID [AccountIDSize]byte

// Hash256 is a 32-byte digest. It is used for bounty ids, record keys,
// vault references and transaction hashes.
type Hash256 [HashSize]byte

// Mint identifies a fungible asset held in custody.
type Mint [MintSize]byte

func decodeFixed(dst []byte, s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	if len(b) != len(dst) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLength, len(dst), len(b))
	}
	copy(dst, b)
	return nil
}

func marshalHex(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b)*2+2)
	out = append(out, '"')
	out = append(out, strings.ToUpper(hex.EncodeToString(b))...)
	out = append(out, '"')
	return out, nil
}

func unmarshalHex(dst []byte, data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: expected a JSON string", ErrInvalidHex)
	}
	s = s[1 : len(s)-1]
	if s == "" {
		for i := range dst {
			dst[i] = 0
		}
		return nil
	}
	return decodeFixed(dst, s)
}

// IdentityFromHex parses a hex-encoded compressed public key.
func IdentityFromHex(s string) (Identity, error) {
	var id Identity
	err := decodeFixed(id[:], s)
	return id, err
}

// IdentityFromBytes copies b into an Identity.
func IdentityFromBytes(b []byte) (Identity, error) {
	var id Identity
	if len(b) != IdentitySize {
		return id, ErrInvalidLength
	}
	copy(id[:], b)
	return id, nil
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id == Identity{} }

func (id Identity) Bytes() []byte { return id[:] }

func (id Identity) String() string { return strings.ToUpper(hex.EncodeToString(id[:])) }

func (id Identity) MarshalJSON() ([]byte, error) { return marshalHex(id[:]) }

func (id *Identity) UnmarshalJSON(data []byte) error { return unmarshalHex(id[:], data) }

func (a AccountID) String() string { return strings.ToUpper(hex.EncodeToString(a[:])) }

func (a AccountID) MarshalJSON() ([]byte, error) { return marshalHex(a[:]) }

func (a *AccountID) UnmarshalJSON(data []byte) error { return unmarshalHex(a[:], data) }

// AccountIDFromHex parses a hex-encoded account id.
func AccountIDFromHex(s string) (AccountID, error) {
	var a AccountID
	err := decodeFixed(a[:], s)
	return a, err
}

// HashFromHex parses a hex-encoded 32-byte hash.
func HashFromHex(s string) (Hash256, error) {
	var h Hash256
	err := decodeFixed(h[:], s)
	return h, err
}

func (h Hash256) IsZero() bool { return h == Hash256{} }

func (h Hash256) String() string { return strings.ToUpper(hex.EncodeToString(h[:])) }

func (h Hash256) MarshalJSON() ([]byte, error) { return marshalHex(h[:]) }

func (h *Hash256) UnmarshalJSON(data []byte) error { return unmarshalHex(h[:], data) }

// MintFromHex parses a hex-encoded 32-byte mint.
func MintFromHex(s string) (Mint, error) {
	var m Mint
	err := decodeFixed(m[:], s)
	return m, err
}

// MintFromCode builds a mint from a short ASCII mnemonic such as "USDC".
// The code is right-padded with zero bytes.
func MintFromCode(code string) (Mint, error) {
	var m Mint
	if len(code) < 3 || len(code) > MintSize {
		return m, fmt.Errorf("%w: mint code must be 3 to %d characters", ErrInvalidLength, MintSize)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 0x21 || code[i] > 0x7e {
			return m, fmt.Errorf("mint code contains non-printable character at %d", i)
		}
	}
	copy(m[:], code)
	return m, nil
}

// ParseMint accepts either 64 hex characters or a short mnemonic code.
func ParseMint(s string) (Mint, error) {
	if len(s) == MintSize*2 {
		if m, err := MintFromHex(s); err == nil {
			return m, nil
		}
	}
	return MintFromCode(s)
}

func (m Mint) IsZero() bool { return m == Mint{} }

// Code returns the mnemonic if the mint was built with MintFromCode,
// otherwise the empty string.
func (m Mint) Code() string {
	end := bytes.IndexByte(m[:], 0)
	if end < 0 {
		end = MintSize
	}
	if end < 3 {
		return ""
	}
	for _, b := range m[end:] {
		if b != 0 {
			return ""
		}
	}
	for _, b := range m[:end] {
		if b < 0x21 || b > 0x7e {
			return ""
		}
	}
	return string(m[:end])
}

func (m Mint) String() string {
	if code := m.Code(); code != "" {
		return code
	}
	return strings.ToUpper(hex.EncodeToString(m[:]))
}

func (m Mint) MarshalJSON() ([]byte, error) { return marshalHex(m[:]) }

func (m *Mint) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' && len(s)-2 != MintSize*2 && len(s) > 2 {
		parsed, err := MintFromCode(s[1 : len(s)-1])
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	return unmarshalHex(m[:], data)
}
