// Package testing provides test infrastructure for bounty escrow
// transaction testing.
//
// It mirrors the shape of a jtx-style harness: a TestEnv owns an
// in-memory ledger, a transaction engine with signature verification
// enabled, a manual clock and a default token mint.
//
// # Basic Usage
//
//	func TestFund(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//
//	    alice := jtx.NewAccount("alice")
//	    env.Credit(alice, 1_000_000)
//
//	    result := env.Submit(someTransaction)
//	    jtx.RequireTxSuccess(t, result)
//	}
//
// # Account
//
// Accounts derive their keypair from their name, so the same name
// always yields the same identity. Submit signs each transaction with
// the keypair of the account named in its Account field.
//
// # Custody
//
// Balances live in the same ledger as escrows. Credit mints tokens to an
// account outside of any transaction; Balance and VaultBalance read them
// back. WithCustody swaps the custody provider, which lets tests inject
// failures through tx.MockCustody.
package testing
