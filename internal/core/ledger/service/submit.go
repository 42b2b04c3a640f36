package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/keylet"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/core/tx/bounty"
	"github.com/LeJamon/goBountySplit/internal/core/tx/sle"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// SubmitResult is the outcome of Submit. A rejected transaction is not
// an error: Result carries the tec/tem/tef code.
type SubmitResult struct {
	Result   tx.Result
	Applied  bool
	Hash     types.Hash256
	Tx       json.RawMessage
	Metadata *tx.Metadata
	Events   []tx.Event
	Message  string
}

// Submit parses a signed transaction, applies it, appends it to the
// history and publishes it. Only parse failures and a closed service
// are returned as errors.
func (s *Service) Submit(ctx context.Context, blob []byte) (*SubmitResult, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	canonical, err := tx.CanonicalJSON(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
	}
	txn, err := tx.FromJSON(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
	}

	start := time.Now()
	applied := s.engine.Apply(txn)
	if s.metrics != nil {
		s.metrics.ObserveTransaction(txn.TxType().String(), applied.Result.String(), time.Since(start))
	}

	result := &SubmitResult{
		Result:   applied.Result,
		Applied:  applied.Applied,
		Hash:     applied.Hash,
		Tx:       canonical,
		Metadata: applied.Metadata,
		Events:   applied.Events,
		Message:  applied.Message,
	}
	if !applied.Applied {
		return result, nil
	}

	event := &TransactionEvent{
		Hash:             applied.Hash,
		TransactionType:  txn.TxType().String(),
		Account:          txn.GetCommon().Account,
		Result:           applied.Result,
		Tx:               canonical,
		Metadata:         applied.Metadata,
		Events:           applied.Events,
		AffectedAccounts: s.affectedAccounts(txn, applied.Events),
		AppliedAt:        s.config.Now().UTC(),
	}

	// The ledger is already committed, so a history failure is logged
	// and counted rather than reported to the submitter.
	if err := s.record(ctx, event); err != nil {
		s.logger.Error("failed to record transaction history",
			zap.String("tx", applied.Hash.String()), zap.Error(err))
		if s.metrics != nil {
			s.metrics.HistoryError()
		}
	}

	s.publisher.PublishTransaction(event)
	return result, nil
}

func (s *Service) record(ctx context.Context, event *TransactionEvent) error {
	if s.history == nil {
		return nil
	}
	meta, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}
	err = s.history.SaveTransaction(ctx, &relationaldb.TxEntry{
		Hash:            event.Hash,
		TransactionType: event.TransactionType,
		Account:         event.Account,
		Result:          event.Result.String(),
		RawTxn:          event.Tx,
		Meta:            meta,
		AppliedAt:       event.AppliedAt,
	}, event.AffectedAccounts)
	if errors.Is(err, relationaldb.ErrDuplicateEntry) {
		return nil
	}
	return err
}

// affectedAccounts collects the caller, the participants of every escrow
// an event refers to, and any identity an event names.
func (s *Service) affectedAccounts(txn tx.Transaction, events []tx.Event) []types.Identity {
	seen := make(map[types.Identity]struct{})
	var out []types.Identity
	add := func(ids ...types.Identity) {
		for _, id := range ids {
			if id.IsZero() {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	add(txn.GetCommon().Account)
	if claim, ok := txn.(*bounty.Claim); ok {
		add(claim.Destination)
	}
	escrows := make(map[types.Hash256]struct{})
	for _, e := range events {
		var key types.Hash256
		switch ev := e.(type) {
		case tx.EscrowCreated:
			key = ev.Escrow
			add(ev.Requester)
		case tx.EscrowFunded:
			key = ev.Escrow
		case tx.ReleaseProposed:
			key = ev.Escrow
			add(ev.By)
		case tx.ReleaseConfirmed:
			key = ev.Escrow
			add(ev.By)
		case tx.EscrowReleased:
			key = ev.Escrow
			add(ev.Recipient)
		case tx.EscrowRefunded:
			key = ev.Escrow
			add(ev.RefundedTo)
		default:
			continue
		}
		escrows[key] = struct{}{}
	}

	for key := range escrows {
		data, err := s.state.Read(keylet.BountyEscrowByKey(key))
		if err != nil || data == nil {
			continue
		}
		escrow, err := sle.ParseBountyEscrow(data)
		if err != nil {
			continue
		}
		add(escrow.Requester)
		add(escrow.ActiveRecipients()...)
		add(escrow.Arbiter)
	}
	return out
}
