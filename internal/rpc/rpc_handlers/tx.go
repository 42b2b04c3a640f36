package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// TxMethod handles the tx RPC method
type TxMethod struct{}

func (m *TxMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Transaction string `json:"transaction"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	hash, rpcErr := parseHash("transaction", request.Transaction)
	if rpcErr != nil {
		return nil, rpcErr
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	info, err := svc.Tx(ctx.Context, hash)
	if err != nil {
		return nil, serviceError(err)
	}

	response := map[string]interface{}{
		"hash":            info.Hash.String(),
		"TransactionType": info.TransactionType,
		"Account":         info.Account.String(),
		"engine_result":   info.Result,
		"tx_json":         info.Tx,
		"applied_at":      info.AppliedAt.Unix(),
		"validated":       true,
	}
	if len(info.Meta) > 0 {
		response["meta"] = info.Meta
	}
	return response, nil
}

func (m *TxMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *TxMethod) SupportedApiVersions() []int {
	return allVersions
}
