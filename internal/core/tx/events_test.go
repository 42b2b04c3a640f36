package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

func TestMarshalEvent(t *testing.T) {
	data, err := MarshalEvent(EscrowFunded{Escrow: types.Hash256{0xAA}, Amount: 18446744073709551615})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "EscrowFunded",
		"escrow": "AA00000000000000000000000000000000000000000000000000000000000000",
		"amount": "18446744073709551615"
	}`, string(data))
}
