// Package ledger holds the base state views the transaction engine
// commits into: Memory for tests and ephemeral nodes, Store for
// persistent state over a keyValueDb.
package ledger

import (
	"errors"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
)

var (
	ErrEntryExists   = errors.New("ledger entry already exists")
	ErrEntryNotFound = errors.New("ledger entry not found")
)

var (
	_ tx.LedgerView     = (*Memory)(nil)
	_ tx.BatchCommitter = (*Memory)(nil)
	_ tx.LedgerView     = (*Store)(nil)
	_ tx.BatchCommitter = (*Store)(nil)
)
