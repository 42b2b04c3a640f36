// Package relationaldb stores the applied-transaction history in a SQL
// database, indexed by hash and by the accounts each transaction touched.
package relationaldb

import (
	"context"
	"time"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// TxEntry is one applied transaction.
type TxEntry struct {
	// Seq orders entries by application. Assigned by the store.
	Seq             uint64         `json:"seq"`
	Hash            types.Hash256  `json:"hash"`
	TransactionType string         `json:"transaction_type"`
	Account         types.Identity `json:"account"`
	Result          string         `json:"result"`
	RawTxn          []byte         `json:"raw_txn"`
	Meta            []byte         `json:"meta"`
	AppliedAt       time.Time      `json:"applied_at"`
}

// AccountTxOptions selects a page of an account's history. Entries are
// returned newest first unless Forward is set.
type AccountTxOptions struct {
	Account types.Identity
	Limit   int
	// Marker is the Seq to continue after, as returned in AccountTxResult
	Marker  uint64
	Forward bool
}

// AccountTxResult is a page of account history
type AccountTxResult struct {
	Transactions []TxEntry `json:"transactions"`
	Limit        int       `json:"limit"`
	Marker       uint64    `json:"marker,omitempty"`
}

// MaxAccountTxLimit caps AccountTxOptions.Limit.
const MaxAccountTxLimit = 400

// HistoryStore is the transaction history repository.
type HistoryStore interface {
	// SaveTransaction stores entry and indexes it under each of accounts.
	// It returns ErrDuplicateEntry if the hash is already stored.
	SaveTransaction(ctx context.Context, entry *TxEntry, accounts []types.Identity) error

	// GetTransaction returns ErrTransactionNotFound for unknown hashes.
	GetTransaction(ctx context.Context, hash types.Hash256) (*TxEntry, error)

	GetAccountTransactions(ctx context.Context, opts AccountTxOptions) (*AccountTxResult, error)

	// Count returns the number of stored transactions.
	Count(ctx context.Context) (int64, error)

	Close() error
}
