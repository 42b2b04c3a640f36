package bounty_test

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	jtx "github.com/LeJamon/goBountySplit/internal/testing"
	"github.com/LeJamon/goBountySplit/internal/testing/bounty"
)

// randomSplits returns n positive basis-point splits summing to 10000.
func randomSplits(rng *rand.Rand, n int) []uint16 {
	cuts := rng.Perm(split.BasisPointsDenominator - 1)[:n-1]
	for i := range cuts {
		cuts[i]++
	}
	sort.Ints(cuts)

	out := make([]uint16, n)
	prev := 0
	for i, c := range cuts {
		out[i] = uint16(c - prev)
		prev = c
	}
	out[n-1] = uint16(split.BasisPointsDenominator - prev)
	return out
}

// TestLifecycleProperties drives random escrows through confirm and
// claim in random order and checks the accounting invariants after
// every step.
func TestLifecycleProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(20240101))
	pool := make([]*jtx.Account, split.MaxRecipients)
	for i := range pool {
		pool[i] = jtx.NewAccount(fmt.Sprintf("prop-recipient-%d", i))
	}

	for iter := 0; iter < 60; iter++ {
		n := 1 + rng.Intn(split.MaxRecipients)
		required := uint8(1 + rng.Intn(n))
		splits := randomSplits(rng, n)
		// At least 10000 so every share is positive
		amount := uint64(10_000 + rng.Int63n(1_000_000_000))

		t.Run(fmt.Sprintf("n=%d/q=%d/amount=%d", n, required, amount), func(t *testing.T) {
			env := jtx.NewTestEnv(t)
			requester := jtx.NewAccount("prop-requester")
			env.Credit(amount, requester)
			recipients := pool[:n]

			bountyID := jtx.BountyID(t.Name())
			key := bounty.Key(requester, bountyID)
			jtx.RequireTxSuccess(t, env.Submit(bounty.Initialize(requester, bountyID).
				Recipients(recipients...).Splits(splits...).Required(required).Build()))
			jtx.RequireTxSuccess(t, env.Submit(bounty.Fund(requester, key, amount).Build()))
			jtx.RequireTxSuccess(t, env.Submit(bounty.Propose(requester, key)))

			// Quorum monotonicity: Released exactly when the count reaches
			// the quorum, and never back.
			released := false
			for i, idx := range rng.Perm(n) {
				r := recipients[idx]
				result := env.Submit(bounty.Confirm(r, key))
				if released {
					jtx.RequireTxFail(t, result, "tecINVALID_STATUS")
					continue
				}
				jtx.RequireTxSuccess(t, result)

				escrow := env.Escrow(key)
				require.Equal(t, i+1, escrow.Confirmations.Count())
				released = escrow.Confirmations.Count() >= int(required)
				if released {
					require.Equal(t, sle.StatusReleased, escrow.Status)
					require.Equal(t, amount, escrow.ReleasedAmount)
					// Status is checked before the bit
					jtx.RequireTxFail(t, env.Submit(bounty.Confirm(r, key)), "tecINVALID_STATUS")
				} else {
					require.Equal(t, sle.StatusPending, escrow.Status)
					jtx.RequireTxFail(t, env.Submit(bounty.Confirm(r, key)), "tecALREADY_CONFIRMED")
				}
			}
			require.True(t, released)

			// Conservation: the tracked total is always the sum of the
			// unclaimed shares until the last claim zeroes it.
			shares, dust := split.Distribute(amount, splits)
			require.Less(t, dust, uint64(n))

			var paid uint64
			for step, idx := range rng.Perm(n) {
				r := recipients[idx]
				result := env.Submit(bounty.Claim(r, key).Build())
				jtx.RequireTxSuccess(t, result)
				require.Equal(t, shares[idx], result.Delivered())
				paid += result.Delivered()

				jtx.RequireTxFail(t, env.Submit(bounty.Claim(r, key).Build()), "tecALREADY_CLAIMED")

				escrow := env.Escrow(key)
				require.True(t, escrow.Claimed.IsSet(idx))
				require.Equal(t, step+1, escrow.Claimed.Count())
				if step < n-1 {
					require.Equal(t, amount-paid, escrow.TotalAmount)
				}
				require.Equal(t, amount-paid, env.VaultBalance(key))
			}

			require.LessOrEqual(t, paid, amount)
			require.Equal(t, dust, amount-paid)
			jtx.RequireEscrowTotal(t, env, key, 0)
			require.Equal(t, dust, env.VaultBalance(key))
			require.True(t, env.Escrow(key).AllClaimed())
		})
	}
}
