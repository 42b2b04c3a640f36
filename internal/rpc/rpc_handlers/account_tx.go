package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

const defaultAccountTxLimit = 200

// AccountTxMethod handles the account_tx RPC method
type AccountTxMethod struct{}

func (m *AccountTxMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string `json:"account"`
		Limit   int    `json:"limit,omitempty"`
		Marker  uint64 `json:"marker,omitempty"`
		Forward bool   `json:"forward,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseIdentity("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}

	limit := request.Limit
	switch {
	case limit < 0:
		return nil, rpc_types.RpcErrorInvalidField("limit")
	case limit == 0:
		limit = defaultAccountTxLimit
	case limit > relationaldb.MaxAccountTxLimit:
		limit = relationaldb.MaxAccountTxLimit
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, err := svc.AccountTx(ctx.Context, relationaldb.AccountTxOptions{
		Account: account,
		Limit:   limit,
		Marker:  request.Marker,
		Forward: request.Forward,
	})
	if err != nil {
		return nil, serviceError(err)
	}

	transactions := make([]map[string]interface{}, len(result.Transactions))
	for i, entry := range result.Transactions {
		txn := map[string]interface{}{
			"hash":            entry.Hash.String(),
			"TransactionType": entry.TransactionType,
			"Account":         entry.Account.String(),
			"engine_result":   entry.Result,
			"tx_json":         json.RawMessage(entry.RawTxn),
			"applied_at":      entry.AppliedAt.Unix(),
			"seq":             entry.Seq,
		}
		if len(entry.Meta) > 0 {
			txn["meta"] = json.RawMessage(entry.Meta)
		}
		transactions[i] = txn
	}

	response := map[string]interface{}{
		"account":      account.String(),
		"limit":        result.Limit,
		"transactions": transactions,
	}
	if result.Marker != 0 {
		response["marker"] = result.Marker
	}
	return response, nil
}

func (m *AccountTxMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *AccountTxMethod) SupportedApiVersions() []int {
	return allVersions
}
