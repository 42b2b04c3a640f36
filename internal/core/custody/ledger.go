// Package custody keeps per-mint token balances as Holding entries in
// the ledger view. It is the custody provider the bounty transactions
// move funds through.
package custody

import (
	"errors"
	"fmt"
	"math"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds a balance.
	ErrInsufficientFunds = tx.ErrInsufficientFunds

	// ErrOverflow is returned when a credit would overflow a balance.
	ErrOverflow = errors.New("balance overflow")

	ErrZeroAmount = errors.New("amount must be positive")
)

// Ledger implements tx.Custody over a ledger view. Writes go to the view
// it was created with, so inside the engine they share the transaction's
// state table and are discarded with it.
type Ledger struct {
	view tx.LedgerView
}

var _ tx.Custody = (*Ledger)(nil)

func NewLedger(view tx.LedgerView) *Ledger {
	return &Ledger{view: view}
}

// Factory returns the engine hook that binds a Ledger to each
// transaction's view.
func Factory() tx.CustodyFactory {
	return func(view tx.LedgerView) tx.Custody {
		return NewLedger(view)
	}
}

func (l *Ledger) load(mint types.Mint, owner []byte) (*sle.Holding, bool, error) {
	data, err := l.view.Read(keylet.Holding(mint, owner))
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return &sle.Holding{Mint: mint, Owner: append([]byte(nil), owner...)}, false, nil
	}
	h, err := sle.ParseHolding(data)
	if err != nil {
		return nil, false, err
	}
	return h, true, nil
}

func (l *Ledger) store(h *sle.Holding, exists bool) error {
	data, err := sle.Encode(h)
	if err != nil {
		return err
	}
	k := keylet.Holding(h.Mint, h.Owner)
	if exists {
		return l.view.Update(k, data)
	}
	return l.view.Insert(k, data)
}

// Balance returns owner's balance of mint, zero if it never held any.
func (l *Ledger) Balance(mint types.Mint, owner []byte) (uint64, error) {
	h, _, err := l.load(mint, owner)
	if err != nil {
		return 0, err
	}
	return h.Balance, nil
}

// Credit mints amount to owner out of thin air. It backs the admin
// faucet and test setup; no transaction calls it.
func (l *Ledger) Credit(mint types.Mint, owner []byte, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	h, exists, err := l.load(mint, owner)
	if err != nil {
		return err
	}
	if h.Balance > math.MaxUint64-amount {
		return ErrOverflow
	}
	h.Balance += amount
	return l.store(h, exists)
}

// transfer debits from and credits to. Both balances are checked before
// either is written.
func (l *Ledger) transfer(mint types.Mint, from, to []byte, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	src, srcExists, err := l.load(mint, from)
	if err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Balance, amount)
	}
	dst, dstExists, err := l.load(mint, to)
	if err != nil {
		return err
	}
	if dst.Balance > math.MaxUint64-amount {
		return ErrOverflow
	}

	src.Balance -= amount
	dst.Balance += amount
	if err := l.store(src, srcExists); err != nil {
		return err
	}
	return l.store(dst, dstExists)
}

// Deposit moves amount from source into vault.
func (l *Ledger) Deposit(mint types.Mint, vault types.Hash256, source types.Identity, amount uint64) error {
	return l.transfer(mint, source.Bytes(), vault[:], amount)
}

// Withdraw moves amount from vault to destination.
func (l *Ledger) Withdraw(mint types.Mint, vault types.Hash256, destination types.Identity, amount uint64) error {
	return l.transfer(mint, vault[:], destination.Bytes(), amount)
}
