package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/custody"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/entry"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// EscrowInfo is an escrow record with its custody view.
type EscrowInfo struct {
	Key    types.Hash256
	Escrow *sle.BountyEscrow
	// VaultBalance is what custody holds for the escrow
	VaultBalance uint64
	// Dust is VaultBalance minus the tracked total: the rounding
	// remainder left behind by claims.
	Dust uint64
}

// Escrow returns the escrow of (requester, bountyID).
func (s *Service) Escrow(requester types.Identity, bountyID types.Hash256) (*EscrowInfo, error) {
	return s.EscrowByKey(keylet.BountyEscrow(requester, bountyID).Hash())
}

// EscrowByKey returns the escrow stored at key.
func (s *Service) EscrowByKey(key types.Hash256) (*EscrowInfo, error) {
	data, err := s.state.Read(keylet.BountyEscrowByKey(key))
	if err != nil {
		return nil, fmt.Errorf("read escrow %s: %w", key, err)
	}
	if data == nil {
		return nil, ErrEscrowNotFound
	}
	escrow, err := sle.ParseBountyEscrow(data)
	if err != nil {
		return nil, fmt.Errorf("decode escrow %s: %w", key, err)
	}

	vault, err := custody.NewLedger(s.state).Balance(escrow.TokenMint, escrow.Vault[:])
	if err != nil {
		return nil, fmt.Errorf("read vault of %s: %w", key, err)
	}
	info := &EscrowInfo{Key: key, Escrow: escrow, VaultBalance: vault}
	if vault > escrow.TotalAmount {
		info.Dust = vault - escrow.TotalAmount
	}
	return info, nil
}

// Balance returns the custody balance of owner in mint. Owner is an
// identity or a vault reference.
func (s *Service) Balance(mint types.Mint, owner []byte) (uint64, error) {
	return custody.NewLedger(s.state).Balance(mint, owner)
}

// Credit mints amount of mint to owner and returns the new balance.
// It runs under the engine lock.
func (s *Service) Credit(mint types.Mint, owner types.Identity, amount uint64) (uint64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var balance uint64
	_, err := s.engine.Exclusive(func(view tx.LedgerView) error {
		ledger := custody.NewLedger(view)
		if err := ledger.Credit(mint, owner.Bytes(), amount); err != nil {
			return err
		}
		var err error
		balance, err = ledger.Balance(mint, owner.Bytes())
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("credited account",
		zap.String("owner", owner.String()), zap.String("mint", mint.String()), zap.Uint64("amount", amount))
	return balance, nil
}

// TxInfo is an applied transaction.
type TxInfo struct {
	Hash            types.Hash256
	TransactionType string
	Account         types.Identity
	Result          string
	Tx              json.RawMessage
	// Meta is nil when the transaction was found in ledger state only
	Meta      json.RawMessage
	AppliedAt time.Time
}

// Tx looks up an applied transaction, in the history first and then in
// the ledger's transaction records.
func (s *Service) Tx(ctx context.Context, hash types.Hash256) (*TxInfo, error) {
	if s.history != nil {
		entry, err := s.history.GetTransaction(ctx, hash)
		switch {
		case err == nil:
			return &TxInfo{
				Hash:            entry.Hash,
				TransactionType: entry.TransactionType,
				Account:         entry.Account,
				Result:          entry.Result,
				Tx:              entry.RawTxn,
				Meta:            entry.Meta,
				AppliedAt:       entry.AppliedAt,
			}, nil
		case !errors.Is(err, relationaldb.ErrTransactionNotFound):
			return nil, err
		}
	}

	data, err := s.state.Read(keylet.Transaction(hash))
	if err != nil {
		return nil, fmt.Errorf("read transaction %s: %w", hash, err)
	}
	if data == nil {
		return nil, ErrTransactionNotFound
	}
	record, err := sle.ParseTxRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", hash, err)
	}
	return &TxInfo{
		Hash:            record.Hash,
		TransactionType: record.TransactionType,
		Account:         record.Account,
		Result:          record.Result,
		Tx:              record.Tx(),
		AppliedAt:       time.Unix(record.AppliedAt, 0).UTC(),
	}, nil
}

// AccountTx returns a page of the transactions that touched account.
func (s *Service) AccountTx(ctx context.Context, opts relationaldb.AccountTxOptions) (*relationaldb.AccountTxResult, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.GetAccountTransactions(ctx, opts)
}

// ServerInfo summarizes the node.
type ServerInfo struct {
	Version               string        `json:"build_version"`
	StartedAt             time.Time     `json:"started_at"`
	Uptime                time.Duration `json:"-"`
	Escrows               int           `json:"escrows"`
	Holdings              int           `json:"holdings"`
	Transactions          int           `json:"transactions"`
	HistoryEnabled        bool          `json:"history_enabled"`
	SignatureVerification bool          `json:"signature_verification"`
}

// ServerInfo counts the ledger entries by type.
func (s *Service) ServerInfo() (*ServerInfo, error) {
	info := &ServerInfo{
		Version:               s.config.Version,
		StartedAt:             s.startedAt,
		Uptime:                s.config.Now().Sub(s.startedAt),
		HistoryEnabled:        s.history != nil,
		SignatureVerification: !s.config.SkipSignatureVerification,
	}
	err := s.state.ForEach(func(_ [32]byte, data []byte) bool {
		t, err := sle.TypeOf(data)
		if err != nil {
			return true
		}
		switch t {
		case entry.TypeBountyEscrow:
			info.Escrows++
		case entry.TypeHolding:
			info.Holdings++
		case entry.TypeTransaction:
			info.Transactions++
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan ledger: %w", err)
	}
	return info, nil
}
