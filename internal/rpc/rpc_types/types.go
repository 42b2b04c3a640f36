// Package rpc_types holds the request context, method interface, errors
// and subscription bookkeeping shared by the RPC server and its handlers.
package rpc_types

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/service"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// API Version constants
const (
	ApiVersion1       = 1
	DefaultApiVersion = ApiVersion1
)

// Role-based access control
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// RPC Context contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	IsAdmin    bool
	ClientIP   string
	Services   *ServiceContainer
}

// Method handler interface - all RPC methods implement this
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// Method registry for dynamic method registration
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names in order.
func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// BountyService is the escrow ledger as seen by the handlers.
// *service.Service implements it.
type BountyService interface {
	Submit(ctx context.Context, blob []byte) (*service.SubmitResult, error)
	Escrow(requester types.Identity, bountyID types.Hash256) (*service.EscrowInfo, error)
	EscrowByKey(key types.Hash256) (*service.EscrowInfo, error)
	Balance(mint types.Mint, owner []byte) (uint64, error)
	Credit(mint types.Mint, owner types.Identity, amount uint64) (uint64, error)
	Tx(ctx context.Context, hash types.Hash256) (*service.TxInfo, error)
	AccountTx(ctx context.Context, opts relationaldb.AccountTxOptions) (*relationaldb.AccountTxResult, error)
	ServerInfo() (*service.ServerInfo, error)
}

var _ BountyService = (*service.Service)(nil)

// ServiceContainer holds the dependencies handed to every handler.
type ServiceContainer struct {
	Bounty BountyService

	// Subscriptions is nil when WebSocket is disabled
	Subscriptions *SubscriptionManager

	Logger *zap.Logger
}

// WebSocketCommand is a WebSocket request. Parameters sit next to the
// command at the top level.
type WebSocketCommand struct {
	Command    string          `json:"command"`
	ID         interface{}     `json:"id,omitempty"`
	ApiVersion *int            `json:"api_version,omitempty"`
	Params     json.RawMessage `json:"-"`
}

type WebSocketResponse struct {
	Type       string      `json:"type"`
	ID         interface{} `json:"id,omitempty"`
	Status     string      `json:"status,omitempty"`
	Result     interface{} `json:"result,omitempty"`
	ApiVersion int         `json:"api_version,omitempty"`
}
