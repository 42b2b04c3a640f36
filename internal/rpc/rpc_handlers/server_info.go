package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// ServerInfoMethod handles the server_info RPC method
type ServerInfoMethod struct{}

func (m *ServerInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	info, err := svc.ServerInfo()
	if err != nil {
		return nil, serviceError(err)
	}

	fields := map[string]interface{}{
		"build_version":          info.Version,
		"started_at":             info.StartedAt.UTC().Format("2006-Jan-02 15:04:05.000000 UTC"),
		"uptime":                 int64(info.Uptime.Seconds()),
		"escrows":                info.Escrows,
		"holdings":               info.Holdings,
		"transactions":           info.Transactions,
		"history_enabled":        info.HistoryEnabled,
		"signature_verification": info.SignatureVerification,
	}
	if subs := ctx.Services.Subscriptions; subs != nil {
		fields["ws_connections"] = subs.ConnectionCount()
	}
	return map[string]interface{}{"info": fields}, nil
}

func (m *ServerInfoMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *ServerInfoMethod) SupportedApiVersions() []int {
	return allVersions
}
