// Package service ties the transaction engine to persistent state, the
// transaction history and the event publisher. It is the only component
// the RPC layer talks to.
package service

import (
	"errors"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/custody"
	"github.com/LeJamon/goBountySplit/internal/core/ledger"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/metrics"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// Common errors
var (
	ErrEscrowNotFound      = errors.New("escrow not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNoHistory           = errors.New("transaction history is not configured")
	ErrMalformedTx         = errors.New("malformed transaction")
	ErrClosed              = errors.New("service is closed")
)

// Config holds configuration for the Service
type Config struct {
	// State is the base ledger view. Nil selects an in-memory ledger.
	State tx.LedgerView

	// History stores applied transactions for tx and account_tx (optional)
	History relationaldb.HistoryStore

	// Metrics receives per-transaction observations (optional)
	Metrics *metrics.Metrics

	// SkipSignatureVerification disables signature checks in the engine
	SkipSignatureVerification bool

	// Now defaults to time.Now
	Now func() time.Time

	// Version is reported by server_info
	Version string

	Logger *zap.Logger
}

// Service manages the escrow ledger
type Service struct {
	config    Config
	state     tx.LedgerView
	engine    *tx.Engine
	history   relationaldb.HistoryStore
	publisher *EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger

	startedAt time.Time
	closed    atomic.Bool
}

// New creates a Service over cfg.State.
func New(cfg Config) (*Service, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	state := cfg.State
	if state == nil {
		state = ledger.NewMemory()
	}

	engine := tx.NewEngine(state, tx.EngineConfig{
		SkipSignatureVerification: cfg.SkipSignatureVerification,
		Now:                       cfg.Now,
		Custody:                   custody.Factory(),
		Logger:                    cfg.Logger,
	})

	if cfg.SkipSignatureVerification {
		cfg.Logger.Warn("signature verification is disabled")
	}

	return &Service{
		config:    cfg,
		state:     state,
		engine:    engine,
		history:   cfg.History,
		publisher: NewEventPublisher(),
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.Named("service"),
		startedAt: cfg.Now(),
	}, nil
}

// Engine returns the transaction engine.
func (s *Service) Engine() *tx.Engine {
	return s.engine
}

// Publisher returns the event publisher that receives every applied
// transaction.
func (s *Service) Publisher() *EventPublisher {
	return s.publisher
}

// HasHistory reports whether a history store is configured.
func (s *Service) HasHistory() bool {
	return s.history != nil
}

// Close releases the history store and the state backend.
func (s *Service) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if closer, ok := s.state.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
