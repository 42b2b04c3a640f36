package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func TestCalcAccountID(t *testing.T) {
	tests := []struct {
		name      string
		publicKey string
		accountID string
	}{
		{
			name:      "Secp256k1 public key",
			publicKey: "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020",
			accountID: "b5f762798a53d543a014caf8b297cff8f2f937e8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pubKey, err := hex.DecodeString(tt.publicKey)
			require.NoError(t, err)

			accountID := CalcAccountID(pubKey)

			expectedID, err := hex.DecodeString(tt.accountID)
			require.NoError(t, err)
			assert.Equal(t, expectedID, accountID[:])
		})
	}
}

func TestAccountOf(t *testing.T) {
	id, err := types.IdentityFromHex("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	require.NoError(t, err)
	assert.Equal(t, "B5F762798A53D543A014CAF8B297CFF8F2F937E8", AccountOf(id).String())
}

func TestCalcAccountIDOfDerivedKey(t *testing.T) {
	kp, err := KeypairFromSeed(SeedFromPassphrase("recipient"))
	require.NoError(t, err)
	pub := kp.Identity()

	sum := sha256.Sum256(pub[:])
	h := ripemd160.New()
	h.Write(sum[:])

	id := kp.AccountID()
	assert.Equal(t, h.Sum(nil), id[:])
}
