package tx

import (
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Caller is the authenticated identity that signed the transaction
	Caller types.Identity

	// Custody moves asset balances through the same View
	Custody Custody

	// Config holds engine configuration
	Config EngineConfig

	// Now is the engine clock reading for this transaction
	Now time.Time

	// TxHash is the hash of the current transaction
	TxHash types.Hash256

	// Metadata allows transactions to report the amount they moved
	Metadata *Metadata

	Logger *zap.Logger

	events []Event
}

// Emit records an event. Events are only published if the transaction
// succeeds.
func (ctx *ApplyContext) Emit(e Event) {
	ctx.events = append(ctx.events, e)
}

// Events returns the events emitted so far.
func (ctx *ApplyContext) Events() []Event {
	return ctx.events
}

// Unix returns Now as unix seconds.
func (ctx *ApplyContext) Unix() int64 {
	return ctx.Now.Unix()
}
