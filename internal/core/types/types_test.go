package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityJSON(t *testing.T) {
	var id Identity
	id[0] = 0x02
	id[32] = 0xAB

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(data))

	var back Identity
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)
}

func TestIdentityFromHexRejectsWrongLength(t *testing.T) {
	_, err := IdentityFromHex("0203")
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = IdentityFromHex("zz")
	require.ErrorIs(t, err, ErrInvalidHex)
}

func TestIdentityIsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.False(t, Identity{1}.IsZero())
}

func TestMintFromCode(t *testing.T) {
	m, err := MintFromCode("USDC")
	require.NoError(t, err)
	assert.Equal(t, "USDC", m.Code())
	assert.Equal(t, "USDC", m.String())

	_, err = MintFromCode("AB")
	require.Error(t, err)

	_, err = MintFromCode("BAD CODE")
	require.Error(t, err)
}

func TestMintJSONAcceptsCodeAndHex(t *testing.T) {
	var m Mint
	require.NoError(t, json.Unmarshal([]byte(`"USDC"`), &m))
	assert.Equal(t, "USDC", m.Code())

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Mint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestParseMint(t *testing.T) {
	code, err := ParseMint("EURC")
	require.NoError(t, err)

	hexForm, err := ParseMint(strings.ToUpper(hex.EncodeToString(code[:])))
	require.NoError(t, err)
	assert.Equal(t, code, hexForm)

	raw := Mint{0xFF, 0x01}
	parsed, err := ParseMint(raw.String())
	require.NoError(t, err)
	assert.Equal(t, raw, parsed)
	assert.Empty(t, raw.Code())
}

func TestHashRoundTrip(t *testing.T) {
	h := Hash256{0xDE, 0xAD}
	parsed, err := HashFromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.False(t, h.IsZero())
}
