package tx

import (
	"errors"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

//go:generate mockgen -source=custody.go -destination=mock_custody.go -package=tx

// ErrInsufficientFunds is returned by a Custody when the source balance
// cannot cover a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Custody moves asset balances into and out of escrow vaults. A failed
// call must leave balances unchanged.
type Custody interface {
	// Deposit moves amount of mint from source into vault.
	Deposit(mint types.Mint, vault types.Hash256, source types.Identity, amount uint64) error
	// Withdraw moves amount of mint from vault to destination.
	Withdraw(mint types.Mint, vault types.Hash256, destination types.Identity, amount uint64) error
	// Balance returns the balance of owner, an identity or a vault reference.
	Balance(mint types.Mint, owner []byte) (uint64, error)
}

// CustodyFactory binds a Custody to the view a transaction is applied on,
// so custody writes commit or roll back with the escrow record.
type CustodyFactory func(view LedgerView) Custody
