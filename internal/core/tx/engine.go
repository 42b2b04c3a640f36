package tx

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Engine applies transactions to a ledger view. Apply holds a single
// lock for the whole pipeline, so every transaction observes the state
// left by the previous one and concurrent confirms or claims against the
// same escrow are linearized.
type Engine struct {
	mu sync.Mutex

	// View provides access to ledger state
	view LedgerView

	// Config holds engine configuration
	config EngineConfig

	logger *zap.Logger
}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// SkipSignatureVerification skips signature checks (for testing/standalone)
	SkipSignatureVerification bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Custody builds the custody provider bound to each transaction's view
	Custody CustodyFactory

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read reads a ledger entry. It returns nil, nil if the entry does not exist.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries
	// If fn returns false, iteration stops early
	ForEach(fn func(key [32]byte, data []byte) bool) error
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction changed the ledger
	Applied bool

	// Hash identifies the transaction
	Hash types.Hash256

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Events are the events emitted by a successful transaction
	Events []Event

	// Message is a human-readable result message
	Message string

	// Transaction is the applied transaction
	Transaction Transaction
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	// AffectedNodes lists all nodes that were created, modified, or deleted
	AffectedNodes []AffectedNode `json:"AffectedNodes"`

	// TransactionResult is the result code
	TransactionResult Result `json:"TransactionResult"`

	// DeliveredAmount is the amount moved by a Claim or Refund
	DeliveredAmount uint64 `json:"delivered_amount,omitempty,string"`
}

// AffectedNode is an alias for sle.AffectedNode
type AffectedNode = sle.AffectedNode

// NewEngine creates a transaction engine over view.
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		view:   view,
		config: config,
		logger: logger.Named("engine"),
	}
}

// View returns the base ledger view.
func (e *Engine) View() LedgerView {
	return e.view
}

// Apply processes a transaction and applies it to the ledger
func (e *Engine) Apply(tx Transaction) ApplyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Step 1: Preflight checks (syntax and signature)
	if result := e.preflight(tx); !result.IsSuccess() {
		return e.reject(tx, types.Hash256{}, result)
	}

	// Step 2: Compute transaction hash
	txHash, err := TransactionHash(tx)
	if errors.Is(err, ErrInvalidSignature) {
		return e.reject(tx, types.Hash256{}, TemBAD_SIGNATURE)
	}
	if err != nil {
		e.logger.Error("failed to compute transaction hash", zap.Error(err))
		return e.reject(tx, txHash, TefINTERNAL)
	}

	// Step 3: The same signed transaction applies at most once
	seen, err := e.view.Exists(keylet.Transaction(txHash))
	if err != nil {
		e.logger.Error("failed to check transaction record", zap.Error(err))
		return e.reject(tx, txHash, TefINTERNAL)
	}
	if seen {
		return e.reject(tx, txHash, TefALREADY)
	}

	appliable, ok := tx.(Appliable)
	if !ok {
		return e.reject(tx, txHash, TemUNKNOWN)
	}
	if e.config.Custody == nil {
		e.logger.Error("engine has no custody provider")
		return e.reject(tx, txHash, TefINTERNAL)
	}

	// Step 4: Apply on a state table so failures leave no trace
	table := NewApplyStateTable(e.view, txHash)
	metadata := &Metadata{AffectedNodes: make([]AffectedNode, 0)}
	now := e.config.Now()
	ctx := &ApplyContext{
		View:     table,
		Caller:   tx.GetCommon().Account,
		Custody:  e.config.Custody(table),
		Config:   e.config,
		Now:      now,
		TxHash:   txHash,
		Metadata: metadata,
		Logger:   e.logger.With(zap.String("tx", txHash.String()), zap.String("type", tx.TxType().String())),
	}

	result := appliable.Apply(ctx)
	if !result.IsSuccess() {
		return e.reject(tx, txHash, result)
	}

	// Step 5: Record the transaction and commit
	if result = e.recordTransaction(table, tx, txHash, now); !result.IsSuccess() {
		return e.reject(tx, txHash, result)
	}
	applied, err := table.Apply()
	if err != nil {
		e.logger.Error("failed to commit transaction", zap.String("tx", txHash.String()), zap.Error(err))
		return e.reject(tx, txHash, TefINTERNAL)
	}
	applied.TransactionResult = TesSUCCESS
	applied.DeliveredAmount = metadata.DeliveredAmount

	e.logger.Debug("transaction applied",
		zap.String("tx", txHash.String()),
		zap.String("type", tx.TxType().String()),
		zap.Int("affected", len(applied.AffectedNodes)))

	return ApplyResult{
		Result:      TesSUCCESS,
		Applied:     true,
		Hash:        txHash,
		Metadata:    applied,
		Events:      ctx.Events(),
		Message:     TesSUCCESS.Message(),
		Transaction: tx,
	}
}

// Exclusive runs fn on a state table under the engine lock and commits
// its writes if fn returns nil. Admin writes such as custody credits go
// through here so they never interleave with Apply.
func (e *Engine) Exclusive(fn func(view LedgerView) error) (*Metadata, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table := NewApplyStateTable(e.view, types.Hash256{})
	if err := fn(table); err != nil {
		return nil, err
	}
	return table.Apply()
}

func (e *Engine) reject(tx Transaction, hash types.Hash256, result Result) ApplyResult {
	e.logger.Debug("transaction rejected",
		zap.String("type", tx.TxType().String()),
		zap.String("result", result.String()))
	return ApplyResult{
		Result:      result,
		Applied:     false,
		Hash:        hash,
		Metadata:    &Metadata{AffectedNodes: []AffectedNode{}, TransactionResult: result},
		Message:     result.Message(),
		Transaction: tx,
	}
}

func (e *Engine) recordTransaction(view LedgerView, tx Transaction, hash types.Hash256, now time.Time) Result {
	blob, err := serialize(tx)
	if err != nil {
		return TefINTERNAL
	}
	data, err := sle.Encode(&sle.TxRecord{
		Hash:            hash,
		TransactionType: tx.TxType().String(),
		Account:         tx.GetCommon().Account,
		Result:          TesSUCCESS.String(),
		Blob:            blob,
		AppliedAt:       now.Unix(),
	})
	if err != nil {
		return TefINTERNAL
	}
	if err := view.Insert(keylet.Transaction(hash), data); err != nil {
		return TefINTERNAL
	}
	return TesSUCCESS
}

func (e *Engine) preflight(tx Transaction) Result {
	common := tx.GetCommon()

	if common.Account.IsZero() {
		return TemBAD_SRC_ACCOUNT
	}
	if common.TransactionType != tx.TxType().String() {
		return TemINVALID
	}

	// Verify signature (unless skipped for testing)
	if !e.config.SkipSignatureVerification {
		if err := VerifySignature(tx); err != nil {
			return TemBAD_SIGNATURE
		}
	}

	// Transaction-specific validation
	if err := tx.Validate(); err != nil {
		return parseValidationError(err)
	}

	return TesSUCCESS
}

// parseValidationError extracts a result code from a validation error message.
// If the error message starts with a known tem code prefix (e.g., "temZERO_SPLIT:"),
// it returns the corresponding Result. Otherwise, it returns TemINVALID.
func parseValidationError(err error) Result {
	msg := err.Error()
	token := msg
	if i := strings.IndexAny(msg, ": "); i >= 0 {
		token = msg[:i]
	}
	if r, ok := ResultFromString(token); ok && r.IsTem() {
		return r
	}
	return TemINVALID
}
