package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/LeJamon/goBountySplit/internal/crypto/common"
)

func TestKeypairFromSeedIsDeterministic(t *testing.T) {
	seed := SeedFromPassphrase("alice")

	a, err := KeypairFromSeed(seed)
	require.NoError(t, err)
	b, err := KeypairFromSeed(seed)
	require.NoError(t, err)

	assert.Equal(t, a.Identity(), b.Identity())
	assert.Equal(t, a.PrivateKeyHex(), b.PrivateKeyHex())
	assert.True(t, ValidIdentity(a.Identity()))

	other, err := KeypairFromSeed(SeedFromPassphrase("bob"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Identity(), other.Identity())
}

func TestKeypairFromSeedRejectsBadSize(t *testing.T) {
	_, err := KeypairFromSeed([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidSeed)
}

func TestKeypairFromPrivateKeyHex(t *testing.T) {
	kp, err := KeypairFromSeed(SeedFromPassphrase("carol"))
	require.NoError(t, err)

	loaded, err := KeypairFromPrivateKeyHex(kp.PrivateKeyHex())
	require.NoError(t, err)
	assert.Equal(t, kp.Identity(), loaded.Identity())

	_, err = KeypairFromPrivateKeyHex("1234")
	require.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = KeypairFromPrivateKeyHex("0000000000000000000000000000000000000000000000000000000000000000")
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestSignVerify(t *testing.T) {
	kp, err := KeypairFromSeed(SeedFromPassphrase("dave"))
	require.NoError(t, err)

	digest := common.Sha512Half([]byte("payload"))
	sig := kp.Sign(digest)

	require.NoError(t, Verify(kp.Identity(), digest, sig))

	t.Run("wrong digest", func(t *testing.T) {
		other := common.Sha512Half([]byte("other payload"))
		require.ErrorIs(t, Verify(kp.Identity(), other, sig), ErrInvalidSignature)
	})

	t.Run("wrong key", func(t *testing.T) {
		eve, err := KeypairFromSeed(SeedFromPassphrase("eve"))
		require.NoError(t, err)
		require.ErrorIs(t, Verify(eve.Identity(), digest, sig), ErrInvalidSignature)
	})

	t.Run("garbage signature", func(t *testing.T) {
		require.ErrorIs(t, Verify(kp.Identity(), digest, []byte{0x30, 0x01}), ErrInvalidSignature)
	})
}
