package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// SubscribeMethod handles subscribe over HTTP, where streams cannot be
// delivered. The WebSocket server handles it itself.
type SubscribeMethod struct{}

func (m *SubscribeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return nil, rpc_types.RpcErrorNotSupported("subscribe requires a WebSocket connection")
}

func (m *SubscribeMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SubscribeMethod) SupportedApiVersions() []int {
	return allVersions
}

// UnsubscribeMethod is the HTTP counterpart of SubscribeMethod.
type UnsubscribeMethod struct{}

func (m *UnsubscribeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return nil, rpc_types.RpcErrorNotSupported("unsubscribe requires a WebSocket connection")
}

func (m *UnsubscribeMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *UnsubscribeMethod) SupportedApiVersions() []int {
	return allVersions
}
