package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/LeJamon/goBountySplit/internal/core/types"
	common "github.com/LeJamon/goBountySplit/internal/crypto/common"
)

// SeedSize is the size of a keypair seed.
const SeedSize = 16

var (
	// ErrInvalidPrivateKey is returned when the private key is invalid
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidPublicKey is returned when the public key is invalid
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidSignature is returned when a signature cannot be parsed or does not verify
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrNonCanonicalSignature is returned for signatures that are not strict
	// DER with a low S value
	ErrNonCanonicalSignature = errors.New("signature is not fully canonical")
	// ErrInvalidSeed is returned for seeds of the wrong size
	ErrInvalidSeed = errors.New("seed must be 16 bytes")
)

// Keypair is a secp256k1 signing key and its public identity.
type Keypair struct {
	privateKey *btcec.PrivateKey
	identity   types.Identity
}

// GenerateSeed returns a random 16-byte seed.
func GenerateSeed() ([]byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return seed, nil
}

// SeedFromPassphrase derives a seed from an arbitrary string.
// Only suitable for tests and local tooling.
func SeedFromPassphrase(passphrase string) []byte {
	h := common.Sha512Half([]byte(passphrase))
	return h[:SeedSize]
}

// KeypairFromSeed derives a keypair from a 16-byte seed. The scalar is
// Sha512Half(seed || counter) for the first counter producing a value in
// [1, n-1].
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}

	var counter [4]byte
	for i := uint32(0); i < 256; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		candidate := common.Sha512Half(seed, counter[:])

		var scalar secp256k1.ModNScalar
		if overflow := scalar.SetBytes(&candidate); overflow != 0 || scalar.IsZero() {
			continue
		}
		return newKeypair(secp256k1.NewPrivateKey(&scalar)), nil
	}
	return nil, ErrInvalidPrivateKey
}

// KeypairFromPrivateKeyHex loads a keypair from a hex-encoded private key.
func KeypairFromPrivateKeyHex(privKeyHex string) (*Keypair, error) {
	if len(privKeyHex) == 66 && privKeyHex[:2] == "00" {
		privKeyHex = privKeyHex[2:]
	}
	if len(privKeyHex) != 64 {
		return nil, ErrInvalidPrivateKey
	}
	privKeyBytes, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, ErrInvalidPrivateKey
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privKeyBytes); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return newKeypair(secp256k1.NewPrivateKey(&scalar)), nil
}

func newKeypair(pk *btcec.PrivateKey) *Keypair {
	kp := &Keypair{privateKey: pk}
	copy(kp.identity[:], pk.PubKey().SerializeCompressed())
	return kp
}

// Identity returns the compressed public key.
func (k *Keypair) Identity() types.Identity {
	return k.identity
}

// AccountID returns the account ID of the public key.
func (k *Keypair) AccountID() types.AccountID {
	return CalcAccountID(k.identity[:])
}

// PrivateKeyHex returns the private key as a hex string (with 00 prefix).
func (k *Keypair) PrivateKeyHex() string {
	return "00" + strings.ToUpper(hex.EncodeToString(k.privateKey.Serialize()))
}

// Sign signs a 32-byte digest and returns a DER signature.
func (k *Keypair) Sign(digest [32]byte) []byte {
	return ecdsa.Sign(k.privateKey, digest[:]).Serialize()
}

// Verify checks a DER signature over digest against the identity.
func Verify(id types.Identity, digest [32]byte, sig []byte) error {
	pub, err := btcec.ParsePubKey(id[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if ECDSACanonicality(sig) != CanonicityFullyCanonical {
		return ErrNonCanonicalSignature
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !parsed.Verify(digest[:], pub) {
		return ErrInvalidSignature
	}
	return nil
}

// ValidIdentity reports whether id is a point on the curve.
func ValidIdentity(id types.Identity) bool {
	_, err := btcec.ParsePubKey(id[:])
	return err == nil
}
