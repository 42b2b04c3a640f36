package rpc

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/service"
	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// TransactionMessage is the message sent to transaction and account
// subscribers for every applied transaction.
type TransactionMessage struct {
	Type                string            `json:"type"`
	Hash                string            `json:"hash"`
	Transaction         json.RawMessage   `json:"transaction"`
	Meta                *tx.Metadata      `json:"meta,omitempty"`
	Events              []json.RawMessage `json:"events,omitempty"`
	EngineResult        string            `json:"engine_result"`
	EngineResultCode    int               `json:"engine_result_code"`
	EngineResultMessage string            `json:"engine_result_message"`
	AppliedAt           int64             `json:"applied_at"`
	Validated           bool              `json:"validated"`
}

// Publisher broadcasts service events to WebSocket subscribers
type Publisher struct {
	subscriptions *rpc_types.SubscriptionManager
	logger        *zap.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(subscriptions *rpc_types.SubscriptionManager, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{subscriptions: subscriptions, logger: logger.Named("publisher")}
}

// Hooks returns the service hooks that feed this publisher.
func (p *Publisher) Hooks() *service.EventHooks {
	return &service.EventHooks{OnTransaction: p.PublishTransaction}
}

// PublishTransaction sends a transaction to the transactions stream and
// to subscribers of any affected account.
func (p *Publisher) PublishTransaction(event *service.TransactionEvent) {
	msg := TransactionMessage{
		Type:                "transaction",
		Hash:                event.Hash.String(),
		Transaction:         event.Tx,
		Meta:                event.Metadata,
		EngineResult:        event.Result.String(),
		EngineResultCode:    int(event.Result),
		EngineResultMessage: event.Result.Message(),
		AppliedAt:           event.AppliedAt.Unix(),
		Validated:           true,
	}
	for _, e := range event.Events {
		data, err := tx.MarshalEvent(e)
		if err != nil {
			p.logger.Error("failed to encode event", zap.String("type", e.EventType()), zap.Error(err))
			continue
		}
		msg.Events = append(msg.Events, data)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to marshal transaction message", zap.Error(err))
		return
	}
	p.subscriptions.Broadcast(rpc_types.SubTransactions, event.AffectedAccounts, data)
}

// PublishServerStatus sends a status message to the server stream.
func (p *Publisher) PublishServerStatus(status string) {
	data, err := json.Marshal(map[string]string{"type": "serverStatus", "server_status": status})
	if err != nil {
		return
	}
	p.subscriptions.Broadcast(rpc_types.SubServer, nil, data)
}

// GetSubscriberCount returns the number of subscribers for a stream
func (p *Publisher) GetSubscriberCount(stream rpc_types.SubscriptionType) int {
	return p.subscriptions.GetSubscriberCount(stream)
}
