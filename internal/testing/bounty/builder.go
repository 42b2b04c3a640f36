// Package bounty provides fluent builders for bounty escrow transactions.
package bounty

import (
	"time"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	bountytx "github.com/LeJamon/goBountySplit/internal/core/tx/bounty"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/testing"
)

// Key returns the escrow record key for (requester, bountyID).
func Key(requester *testing.Account, bountyID types.Hash256) types.Hash256 {
	return keylet.BountyEscrow(requester.Identity, bountyID).Hash()
}

// InitializeBuilder provides a fluent interface for building InitializeEscrow transactions.
type InitializeBuilder struct {
	requester  *testing.Account
	bountyID   types.Hash256
	mint       types.Mint
	recipients []types.Identity
	splits     []uint16
	required   uint8
	arbiter    types.Identity
	timelock   int64
	sequence   uint32
}

// Initialize creates a builder with the default test mint and a quorum
// of one.
func Initialize(requester *testing.Account, bountyID types.Hash256) *InitializeBuilder {
	return &InitializeBuilder{
		requester: requester,
		bountyID:  bountyID,
		mint:      testing.MustMint(testing.DefaultMintCode),
		required:  1,
	}
}

// Recipients sets the recipients in index order.
func (b *InitializeBuilder) Recipients(accs ...*testing.Account) *InitializeBuilder {
	b.recipients = testing.Identities(accs...)
	return b
}

// RecipientIdentities sets raw recipient identities.
func (b *InitializeBuilder) RecipientIdentities(ids ...types.Identity) *InitializeBuilder {
	b.recipients = ids
	return b
}

// Splits sets the basis-point splits.
func (b *InitializeBuilder) Splits(bps ...uint16) *InitializeBuilder {
	b.splits = bps
	return b
}

// Even sets equal splits for the current recipients, giving the
// remainder to the first one.
func (b *InitializeBuilder) Even() *InitializeBuilder {
	n := len(b.recipients)
	if n == 0 {
		return b
	}
	b.splits = make([]uint16, n)
	for i := range b.splits {
		b.splits[i] = uint16(10000 / n)
	}
	b.splits[0] += uint16(10000 % n)
	return b
}

// Required sets the release quorum.
func (b *InitializeBuilder) Required(n uint8) *InitializeBuilder {
	b.required = n
	return b
}

// Arbiter sets the arbiter.
func (b *InitializeBuilder) Arbiter(acc *testing.Account) *InitializeBuilder {
	b.arbiter = acc.Identity
	return b
}

// Timelock sets the timelock expiry.
func (b *InitializeBuilder) Timelock(t time.Time) *InitializeBuilder {
	b.timelock = t.Unix()
	return b
}

// TimelockUnix sets the timelock expiry as unix seconds.
func (b *InitializeBuilder) TimelockUnix(ts int64) *InitializeBuilder {
	b.timelock = ts
	return b
}

// Mint sets the escrowed token.
func (b *InitializeBuilder) Mint(m types.Mint) *InitializeBuilder {
	b.mint = m
	return b
}

// Sequence sets an explicit sequence number.
func (b *InitializeBuilder) Sequence(seq uint32) *InitializeBuilder {
	b.sequence = seq
	return b
}

// Build constructs the InitializeEscrow transaction.
func (b *InitializeBuilder) Build() *bountytx.InitializeEscrow {
	t := bountytx.NewInitializeEscrow(b.requester.Identity, b.bountyID, b.mint)
	t.Recipients = b.recipients
	t.Splits = b.splits
	t.RequiredConfirmations = b.required
	t.Arbiter = b.arbiter
	t.TimelockExpiry = b.timelock
	t.Sequence = b.sequence
	return t
}

// FundBuilder provides a fluent interface for building FundEscrow transactions.
type FundBuilder struct {
	from   *testing.Account
	escrow types.Hash256
	amount uint64
	mint   types.Mint
}

// Fund creates a FundEscrow builder.
func Fund(from *testing.Account, escrow types.Hash256, amount uint64) *FundBuilder {
	return &FundBuilder{from: from, escrow: escrow, amount: amount}
}

// Mint names the token being deposited.
func (b *FundBuilder) Mint(m types.Mint) *FundBuilder {
	b.mint = m
	return b
}

// Build constructs the FundEscrow transaction.
func (b *FundBuilder) Build() *bountytx.FundEscrow {
	t := bountytx.NewFundEscrow(b.from.Identity, b.escrow, b.amount)
	t.TokenMint = b.mint
	return t
}

// Propose builds a ProposeRelease transaction.
func Propose(from *testing.Account, escrow types.Hash256) *bountytx.ProposeRelease {
	return bountytx.NewProposeRelease(from.Identity, escrow)
}

// Confirm builds a ConfirmRelease transaction.
func Confirm(from *testing.Account, escrow types.Hash256) *bountytx.ConfirmRelease {
	return bountytx.NewConfirmRelease(from.Identity, escrow)
}

// ClaimBuilder provides a fluent interface for building Claim transactions.
type ClaimBuilder struct {
	from        *testing.Account
	escrow      types.Hash256
	destination types.Identity
	mint        types.Mint
}

// Claim creates a Claim builder.
func Claim(from *testing.Account, escrow types.Hash256) *ClaimBuilder {
	return &ClaimBuilder{from: from, escrow: escrow}
}

// To sends the share to another account.
func (b *ClaimBuilder) To(acc *testing.Account) *ClaimBuilder {
	b.destination = acc.Identity
	return b
}

// Mint names the token expected from the escrow.
func (b *ClaimBuilder) Mint(m types.Mint) *ClaimBuilder {
	b.mint = m
	return b
}

// Build constructs the Claim transaction.
func (b *ClaimBuilder) Build() *bountytx.Claim {
	t := bountytx.NewClaim(b.from.Identity, b.escrow)
	t.Destination = b.destination
	t.TokenMint = b.mint
	return t
}

// Refund builds a Refund transaction.
func Refund(from *testing.Account, escrow types.Hash256) *bountytx.Refund {
	return bountytx.NewRefund(from.Identity, escrow)
}
