package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// RequireBalance asserts that an account has the expected default-token balance.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d, got %d", acc.Name, expected, actual)
}

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction result indicates failure with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireEscrowStatus asserts the status of the escrow at key.
func RequireEscrowStatus(t *testing.T, env *TestEnv, key types.Hash256, expected sle.EscrowStatus) {
	t.Helper()
	actual := env.Escrow(key).Status
	require.Equal(t, expected, actual,
		"Escrow status mismatch: expected %s, got %s", expected, actual)
}

// RequireEscrowTotal asserts the tracked total of the escrow at key.
func RequireEscrowTotal(t *testing.T, env *TestEnv, key types.Hash256, expected uint64) {
	t.Helper()
	actual := env.Escrow(key).TotalAmount
	require.Equal(t, expected, actual,
		"Escrow total mismatch: expected %d, got %d", expected, actual)
}

// RequireBitmasks asserts both bitmasks of the escrow at key.
func RequireBitmasks(t *testing.T, env *TestEnv, key types.Hash256, confirmations, claimed split.Bitmask) {
	t.Helper()
	escrow := env.Escrow(key)
	require.Equal(t, confirmations, escrow.Confirmations,
		"Confirmations mismatch: expected %08b, got %08b", confirmations, escrow.Confirmations)
	require.Equal(t, claimed, escrow.Claimed,
		"Claimed mismatch: expected %08b, got %08b", claimed, escrow.Claimed)
}

// RequireUnchanged asserts that the ledger, apart from transaction
// records, matches before.
func RequireUnchanged(t *testing.T, env *TestEnv, before Snapshot) {
	t.Helper()
	require.True(t, before.Equal(env.Snapshot()), "ledger state changed")
}

// RequireEvent returns the first event of type T in result.
func RequireEvent[T tx.Event](t *testing.T, result TxResult) T {
	t.Helper()
	for _, e := range result.Events {
		if ev, ok := e.(T); ok {
			return ev
		}
	}
	var zero T
	require.Failf(t, "event not found", "no %s event in %d events", zero.EventType(), len(result.Events))
	return zero
}
