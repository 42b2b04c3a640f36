package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// TransactionEvent describes one applied transaction.
type TransactionEvent struct {
	Hash            types.Hash256
	TransactionType string
	Account         types.Identity
	Result          tx.Result

	// Tx is the signed transaction JSON
	Tx       json.RawMessage
	Metadata *tx.Metadata
	Events   []tx.Event

	// AffectedAccounts lists every identity the transaction touched:
	// the caller, the escrow's requester and recipients, and any payee.
	AffectedAccounts []types.Identity

	AppliedAt time.Time
}

// EventHooks provides structured callbacks for ledger events.
type EventHooks struct {
	// OnTransaction is called for each applied transaction, in
	// application order. It must not block.
	OnTransaction func(event *TransactionEvent)
}

// EventPublisher fans applied transactions out to the registered hooks.
type EventPublisher struct {
	mu    sync.RWMutex
	hooks []*EventHooks
}

// NewEventPublisher creates a new event publisher.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// AddEventHooks registers hooks. They stay registered for the lifetime
// of the publisher.
func (p *EventPublisher) AddEventHooks(hooks *EventHooks) {
	if hooks == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, hooks)
}

// HasSubscribers returns true if there are any hooks.
func (p *EventPublisher) HasSubscribers() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.hooks) > 0
}

// PublishTransaction calls every OnTransaction hook synchronously.
func (p *EventPublisher) PublishTransaction(event *TransactionEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, h := range p.hooks {
		if h.OnTransaction != nil {
			h.OnTransaction(event)
		}
	}
}
