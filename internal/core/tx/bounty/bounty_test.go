package bounty

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/crypto"
)

func identity(t *testing.T, name string) types.Identity {
	t.Helper()
	kp, err := crypto.KeypairFromSeed(crypto.SeedFromPassphrase(name))
	require.NoError(t, err)
	return kp.Identity()
}

func usdc(t *testing.T) types.Mint {
	t.Helper()
	m, err := types.MintFromCode("USDC")
	require.NoError(t, err)
	return m
}

// resultOf maps a Validate error to its result code the way the engine does.
func resultOf(err error) string {
	if err == nil {
		return "tesSUCCESS"
	}
	token, _, _ := strings.Cut(err.Error(), ":")
	return token
}

func TestInitializeEscrowValidate(t *testing.T) {
	requester := identity(t, "requester")
	a, b, c := identity(t, "a"), identity(t, "b"), identity(t, "c")

	base := func() *InitializeEscrow {
		i := NewInitializeEscrow(requester, types.Hash256{1}, usdc(t))
		i.Recipients = []types.Identity{a, b, c}
		i.Splits = []uint16{5000, 2500, 2500}
		i.RequiredConfirmations = 2
		return i
	}

	tests := []struct {
		name   string
		mutate func(*InitializeEscrow)
		want   string
	}{
		{"Valid", func(*InitializeEscrow) {}, "tesSUCCESS"},
		{"ValidArbiter", func(i *InitializeEscrow) { i.Arbiter = a }, "tesSUCCESS"},
		{"NoRecipients", func(i *InitializeEscrow) { i.Recipients = nil; i.Splits = nil }, "temINVALID_RECIPIENT_COUNT"},
		{"DuplicateBeforeSplits", func(i *InitializeEscrow) { i.Recipients[2] = a; i.Splits[0] = 0 }, "temDUPLICATE_RECIPIENT"},
		{"ZeroBeforeSum", func(i *InitializeEscrow) { i.Splits = []uint16{0, 2500, 2500} }, "temZERO_SPLIT"},
		{"SumBelow", func(i *InitializeEscrow) { i.Splits = []uint16{4000, 2500, 2500} }, "temINVALID_SPLITS"},
		{"SumAbove", func(i *InitializeEscrow) { i.Splits = []uint16{6000, 2500, 2500} }, "temINVALID_SPLITS"},
		{"SplitsShort", func(i *InitializeEscrow) { i.Splits = []uint16{7500, 2500} }, "temINVALID_SPLITS"},
		{"SplitsBeforeQuorum", func(i *InitializeEscrow) { i.Splits[0] = 1; i.RequiredConfirmations = 0 }, "temINVALID_SPLITS"},
		{"QuorumZero", func(i *InitializeEscrow) { i.RequiredConfirmations = 0 }, "temINVALID_RECIPIENT_COUNT"},
		{"QuorumTooHigh", func(i *InitializeEscrow) { i.RequiredConfirmations = 4 }, "temINVALID_RECIPIENT_COUNT"},
		{"ArbiterIsRequester", func(i *InitializeEscrow) { i.Arbiter = requester }, "temINVALID_ARBITER"},
		{"ZeroMint", func(i *InitializeEscrow) { i.TokenMint = types.Mint{} }, "temMALFORMED"},
		{"ZeroRecipient", func(i *InitializeEscrow) { i.Recipients[1] = types.Identity{} }, "temMALFORMED"},
		{"NegativeTimelock", func(i *InitializeEscrow) { i.TimelockExpiry = -5 }, "temMALFORMED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i := base()
			tc.mutate(i)
			assert.Equal(t, tc.want, resultOf(i.Validate()))
		})
	}
}

func TestEscrowRefValidate(t *testing.T) {
	caller := identity(t, "caller")

	txns := []tx.Transaction{
		NewProposeRelease(caller, types.Hash256{}),
		NewConfirmRelease(caller, types.Hash256{}),
		NewClaim(caller, types.Hash256{}),
		NewRefund(caller, types.Hash256{}),
		NewFundEscrow(caller, types.Hash256{}, 1),
	}
	for _, txn := range txns {
		t.Run(txn.TxType().String(), func(t *testing.T) {
			assert.Equal(t, "temMALFORMED", resultOf(txn.Validate()))
		})
	}
}

func TestFundEscrowValidate(t *testing.T) {
	f := NewFundEscrow(identity(t, "requester"), types.Hash256{1}, 0)
	assert.Equal(t, "temINVALID_AMOUNT", resultOf(f.Validate()))

	f.Amount = 1
	assert.NoError(t, f.Validate())
}

func TestParseRoundTrip(t *testing.T) {
	requester := identity(t, "requester")
	init := NewInitializeEscrow(requester, types.Hash256{7}, usdc(t))
	init.Recipients = []types.Identity{identity(t, "a"), identity(t, "b")}
	init.Splits = []uint16{9000, 1000}
	init.RequiredConfirmations = 1
	init.TimelockExpiry = 1_900_000_000
	init.Sequence = 3

	fund := NewFundEscrow(requester, types.Hash256{9}, 18_000_000_000_000_000_000)
	claim := NewClaim(requester, types.Hash256{9})
	claim.Destination = identity(t, "payout")

	for _, original := range []tx.Transaction{init, fund, claim} {
		t.Run(original.TxType().String(), func(t *testing.T) {
			data, err := json.Marshal(original)
			require.NoError(t, err)

			parsed, err := tx.FromJSON(data)
			require.NoError(t, err)
			require.Equal(t, original.TxType(), parsed.TxType())

			again, err := json.Marshal(parsed)
			require.NoError(t, err)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestFundAmountIsString(t *testing.T) {
	fund := NewFundEscrow(identity(t, "requester"), types.Hash256{9}, 42)
	data, err := json.Marshal(fund)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "42", fields["Amount"])
	assert.Equal(t, "FundEscrow", fields["TransactionType"])
}

func TestRegisteredTypes(t *testing.T) {
	registered := tx.RegisteredTypes()
	for _, want := range []tx.Type{
		tx.TypeInitializeEscrow,
		tx.TypeFundEscrow,
		tx.TypeProposeRelease,
		tx.TypeConfirmRelease,
		tx.TypeClaim,
		tx.TypeRefund,
	} {
		assert.Contains(t, registered, want)
	}
}
