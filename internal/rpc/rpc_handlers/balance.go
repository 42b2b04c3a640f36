package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// BalanceMethod handles the balance RPC method
type BalanceMethod struct{}

func (m *BalanceMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string `json:"account"`
		Mint    string `json:"mint"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseIdentity("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	mint, rpcErr := parseMint("mint", request.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := svc.Balance(mint, account.Bytes())
	if err != nil {
		return nil, serviceError(err)
	}

	return map[string]interface{}{
		"account": account.String(),
		"mint":    mint.String(),
		"balance": formatAmount(balance),
	}, nil
}

func (m *BalanceMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *BalanceMethod) SupportedApiVersions() []int {
	return allVersions
}

// TokenCreditMethod handles the token_credit admin method, which mints
// tokens to an account.
type TokenCreditMethod struct{}

func (m *TokenCreditMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Account string          `json:"account"`
		Mint    string          `json:"mint"`
		Amount  json.RawMessage `json:"amount"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseIdentity("account", request.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	mint, rpcErr := parseMint("mint", request.Mint)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount("amount", request.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	balance, err := svc.Credit(mint, account, amount)
	if err != nil {
		return nil, serviceError(err)
	}

	return map[string]interface{}{
		"account":  account.String(),
		"mint":     mint.String(),
		"credited": formatAmount(amount),
		"balance":  formatAmount(balance),
	}, nil
}

func (m *TokenCreditMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

func (m *TokenCreditMethod) SupportedApiVersions() []int {
	return allVersions
}
