package bounty_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	jtx "github.com/LeJamon/goBountySplit/internal/testing"
	"github.com/LeJamon/goBountySplit/internal/testing/bounty"
)

func mockEnv(t *testing.T) (*jtx.TestEnv, *tx.MockCustody) {
	ctrl := gomock.NewController(t)
	mock := tx.NewMockCustody(ctrl)
	env := jtx.NewTestEnv(t, jtx.WithCustody(func(tx.LedgerView) tx.Custody { return mock }))
	return env, mock
}

func TestCustodyFailure_Fund(t *testing.T) {
	env, mock := mockEnv(t)
	requester, r1 := jtx.NewAccount("requester"), jtx.NewAccount("recipient1")
	bountyID := jtx.BountyID(t.Name())
	key := bounty.Key(requester, bountyID)

	jtx.RequireTxSuccess(t, env.Submit(bounty.Initialize(requester, bountyID).Recipients(r1).Splits(10000).Build()))
	vault := env.Escrow(key).Vault

	t.Run("InsufficientFunds", func(t *testing.T) {
		mock.EXPECT().
			Deposit(env.Mint(), vault, requester.Identity, uint64(500)).
			Return(fmt.Errorf("debit: %w", tx.ErrInsufficientFunds))

		before := env.Snapshot()
		jtx.RequireTxFail(t, env.Submit(bounty.Fund(requester, key, 500).Build()), "tecINSUFFICIENT_FUNDS")
		jtx.RequireUnchanged(t, env, before)
	})

	t.Run("ProviderError", func(t *testing.T) {
		mock.EXPECT().
			Deposit(env.Mint(), vault, requester.Identity, uint64(500)).
			Return(errors.New("custody unavailable"))

		before := env.Snapshot()
		jtx.RequireTxFail(t, env.Submit(bounty.Fund(requester, key, 500).Build()), "tefINTERNAL")
		jtx.RequireUnchanged(t, env, before)
	})

	jtx.RequireEscrowStatus(t, env, key, sle.StatusInitialized)
	jtx.RequireEscrowTotal(t, env, key, 0)
}

func TestCustodyFailure_ClaimLeavesBitsUnset(t *testing.T) {
	env, mock := mockEnv(t)
	requester := jtx.NewAccount("requester")
	r1, r2 := jtx.NewAccount("recipient1"), jtx.NewAccount("recipient2")
	bountyID := jtx.BountyID(t.Name())
	key := bounty.Key(requester, bountyID)

	jtx.RequireTxSuccess(t, env.Submit(bounty.Initialize(requester, bountyID).Recipients(r1, r2).Splits(6000, 4000).Build()))
	vault := env.Escrow(key).Vault

	mock.EXPECT().Deposit(env.Mint(), vault, requester.Identity, uint64(1000)).Return(nil)
	jtx.RequireTxSuccess(t, env.Submit(bounty.Fund(requester, key, 1000).Build()))
	jtx.RequireTxSuccess(t, env.Submit(bounty.Propose(requester, key)))
	jtx.RequireTxSuccess(t, env.Submit(bounty.Confirm(r2, key)))

	gomock.InOrder(
		mock.EXPECT().Withdraw(env.Mint(), vault, r1.Identity, uint64(600)).Return(tx.ErrInsufficientFunds),
		mock.EXPECT().Withdraw(env.Mint(), vault, r1.Identity, uint64(600)).Return(nil),
	)

	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(bounty.Claim(r1, key).Build()), "tecINSUFFICIENT_FUNDS")
	jtx.RequireUnchanged(t, env, before)
	jtx.RequireBitmasks(t, env, key, 0b10, 0)
	jtx.RequireEscrowTotal(t, env, key, 1000)

	// The same claim succeeds once the provider does
	result := env.Submit(bounty.Claim(r1, key).Build())
	jtx.RequireTxSuccess(t, result)
	require.Equal(t, uint64(600), result.Delivered())
	jtx.RequireBitmasks(t, env, key, 0b10, 0b01)
	jtx.RequireEscrowTotal(t, env, key, 400)
}

// TestConcurrentConfirmAndClaim submits every recipient's confirmation and
// claim from separate goroutines. The engine serializes them, so the
// quorum is reached exactly once and every share is paid exactly once.
func TestConcurrentConfirmAndClaim(t *testing.T) {
	env := jtx.NewTestEnv(t)
	requester := jtx.NewAccount("requester")
	recipients := make([]*jtx.Account, split.MaxRecipients)
	for i := range recipients {
		recipients[i] = jtx.NewAccount(fmt.Sprintf("concurrent-%d", i))
	}
	bountyID := jtx.BountyID(t.Name())
	key := bounty.Key(requester, bountyID)
	env.Credit(8_000_000, requester)

	jtx.RequireTxSuccess(t, env.Submit(bounty.Initialize(requester, bountyID).
		Recipients(recipients...).Even().Required(split.MaxRecipients).Build()))
	jtx.RequireTxSuccess(t, env.Submit(bounty.Fund(requester, key, 8_000_000).Build()))
	jtx.RequireTxSuccess(t, env.Submit(bounty.Propose(requester, key)))

	run := func(build func(r *jtx.Account) tx.Transaction) []tx.ApplyResult {
		txns := make([]tx.Transaction, len(recipients))
		for i, r := range recipients {
			txns[i] = build(r)
			require.NoError(t, tx.Sign(txns[i], r.Keypair))
		}
		results := make([]tx.ApplyResult, len(txns))
		var wg sync.WaitGroup
		for i := range txns {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = env.Engine().Apply(txns[i])
			}(i)
		}
		wg.Wait()
		return results
	}

	for _, r := range run(func(r *jtx.Account) tx.Transaction { return bounty.Confirm(r, key) }) {
		require.Equal(t, tx.TesSUCCESS, r.Result)
	}
	jtx.RequireEscrowStatus(t, env, key, sle.StatusReleased)
	jtx.RequireBitmasks(t, env, key, 0xFF, 0)

	for _, r := range run(func(r *jtx.Account) tx.Transaction { return bounty.Claim(r, key).Build() }) {
		require.Equal(t, tx.TesSUCCESS, r.Result)
		require.Equal(t, uint64(1_000_000), r.Metadata.DeliveredAmount)
	}
	jtx.RequireBitmasks(t, env, key, 0xFF, 0xFF)
	jtx.RequireEscrowTotal(t, env, key, 0)
	require.Equal(t, uint64(0), env.VaultBalance(key))
	for _, r := range recipients {
		jtx.RequireBalance(t, env, r, 1_000_000)
	}
}
