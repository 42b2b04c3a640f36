package testing

import (
	"bytes"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/custody"
	"github.com/LeJamon/goBountySplit/internal/core/ledger"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// TestEnv manages a test ledger environment for transaction testing.
type TestEnv struct {
	t      *testing.T
	ledger *ledger.Memory
	engine *tx.Engine
	clock  *ManualClock
	mint   types.Mint

	custody tx.CustodyFactory
	logger  *zap.Logger

	// sequences auto-fills Sequence so repeated identical operations hash
	// differently.
	sequences map[types.Identity]uint32
}

// EnvOption customizes a TestEnv.
type EnvOption func(*TestEnv)

// WithCustody replaces the ledger-backed custody provider.
func WithCustody(factory tx.CustodyFactory) EnvOption {
	return func(e *TestEnv) { e.custody = factory }
}

// WithMint sets the default mint.
func WithMint(m types.Mint) EnvOption {
	return func(e *TestEnv) { e.mint = m }
}

// WithLogger sets the engine logger. The default discards output.
func WithLogger(l *zap.Logger) EnvOption {
	return func(e *TestEnv) { e.logger = l }
}

// NewTestEnv creates a new test environment with an empty ledger.
func NewTestEnv(t *testing.T, opts ...EnvOption) *TestEnv {
	t.Helper()

	env := &TestEnv{
		t:         t,
		ledger:    ledger.NewMemory(),
		clock:     NewManualClock(),
		mint:      MustMint(DefaultMintCode),
		custody:   custody.Factory(),
		logger:    zap.NewNop(),
		sequences: make(map[types.Identity]uint32),
	}
	for _, opt := range opts {
		opt(env)
	}
	env.engine = tx.NewEngine(env.ledger, tx.EngineConfig{
		Now:     env.clock.Now,
		Custody: env.custody,
		Logger:  env.logger,
	})
	return env
}

// Engine returns the environment's transaction engine.
func (e *TestEnv) Engine() *tx.Engine {
	return e.engine
}

// Ledger returns the in-memory ledger.
func (e *TestEnv) Ledger() *ledger.Memory {
	return e.ledger
}

// Mint returns the default token mint.
func (e *TestEnv) Mint() types.Mint {
	return e.mint
}

// Clock returns the manual clock driving the engine.
func (e *TestEnv) Clock() *ManualClock {
	return e.clock
}

// Now returns the current engine time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// AdvanceTime moves the engine clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// Submit signs a transaction with the key of its Account and applies it.
// A zero Sequence is filled from a per-account counter.
func (e *TestEnv) Submit(txn tx.Transaction) TxResult {
	e.t.Helper()

	common := txn.GetCommon()
	acc, ok := AccountFor(common.Account)
	if !ok {
		e.t.Fatalf("Submit: no test account for identity %s", common.Account)
		return TxResult{Code: tx.TemBAD_SRC_ACCOUNT.String()}
	}
	if common.Sequence == 0 {
		e.sequences[acc.Identity]++
		common.Sequence = e.sequences[acc.Identity]
	}
	if err := tx.Sign(txn, acc.Keypair); err != nil {
		e.t.Fatalf("Submit: failed to sign for %s: %v", acc, err)
	}
	return e.Apply(txn)
}

// Apply applies a transaction as is, without filling or signing it.
func (e *TestEnv) Apply(txn tx.Transaction) TxResult {
	e.t.Helper()
	return newTxResult(e.engine.Apply(txn))
}

// Credit mints amount of the default token to each account.
func (e *TestEnv) Credit(amount uint64, accs ...*Account) {
	e.t.Helper()
	for _, acc := range accs {
		e.CreditMint(e.mint, acc, amount)
	}
}

// CreditMint mints amount of a specific token to acc.
func (e *TestEnv) CreditMint(mint types.Mint, acc *Account, amount uint64) {
	e.t.Helper()
	if err := custody.NewLedger(e.ledger).Credit(mint, acc.Identity.Bytes(), amount); err != nil {
		e.t.Fatalf("Credit %d to %s: %v", amount, acc, err)
	}
}

// Balance returns the default-token balance of acc.
func (e *TestEnv) Balance(acc *Account) uint64 {
	e.t.Helper()
	return e.balance(e.mint, acc.Identity.Bytes())
}

// BalanceOf returns the balance of an arbitrary identity in mint.
func (e *TestEnv) BalanceOf(mint types.Mint, id types.Identity) uint64 {
	e.t.Helper()
	return e.balance(mint, id.Bytes())
}

// VaultBalance returns the custody balance of an escrow's vault.
func (e *TestEnv) VaultBalance(escrowKey types.Hash256) uint64 {
	e.t.Helper()
	escrow := e.Escrow(escrowKey)
	return e.balance(escrow.TokenMint, escrow.Vault[:])
}

func (e *TestEnv) balance(mint types.Mint, owner []byte) uint64 {
	bal, err := custody.NewLedger(e.ledger).Balance(mint, owner)
	if err != nil {
		e.t.Fatalf("Balance: %v", err)
	}
	return bal
}

// EscrowKey returns the record key of the escrow for (requester, bountyID).
func (e *TestEnv) EscrowKey(requester *Account, bountyID types.Hash256) types.Hash256 {
	return keylet.BountyEscrow(requester.Identity, bountyID).Hash()
}

// EscrowExists reports whether an escrow record exists at key.
func (e *TestEnv) EscrowExists(key types.Hash256) bool {
	e.t.Helper()
	ok, err := e.ledger.Exists(keylet.BountyEscrowByKey(key))
	if err != nil {
		e.t.Fatalf("EscrowExists: %v", err)
	}
	return ok
}

// Escrow reads the escrow at key and fails the test if it is missing.
func (e *TestEnv) Escrow(key types.Hash256) *sle.BountyEscrow {
	e.t.Helper()
	data, err := e.ledger.Read(keylet.BountyEscrowByKey(key))
	if err != nil {
		e.t.Fatalf("Escrow %s: %v", key, err)
	}
	if data == nil {
		e.t.Fatalf("Escrow %s not found", key)
	}
	escrow, err := sle.ParseBountyEscrow(data)
	if err != nil {
		e.t.Fatalf("Escrow %s: %v", key, err)
	}
	return escrow
}

// Snapshot captures the ledger so a later state can be compared to it.
type Snapshot map[[32]byte][]byte

// Snapshot returns a copy of every ledger entry.
func (e *TestEnv) Snapshot() Snapshot {
	return Snapshot(e.ledger.Snapshot())
}

// Equal reports whether two snapshots hold the same entries, ignoring
// transaction records.
func (s Snapshot) Equal(other Snapshot) bool {
	a, b := s.withoutTxRecords(), other.withoutTxRecords()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || !bytes.Equal(v, w) {
			return false
		}
	}
	return true
}

func (s Snapshot) withoutTxRecords() map[[32]byte][]byte {
	out := make(map[[32]byte][]byte, len(s))
	for k, v := range s {
		if typ, err := sle.TypeOf(v); err == nil && typ == entry.TypeTransaction {
			continue
		}
		out[k] = v
	}
	return out
}
