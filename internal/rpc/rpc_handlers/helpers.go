// Package rpc_handlers implements the JSON-RPC methods of bountyd.
package rpc_handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/LeJamon/goBountySplit/internal/core/custody"
	"github.com/LeJamon/goBountySplit/internal/core/ledger/service"
	"github.com/LeJamon/goBountySplit/internal/core/types"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

var allVersions = []int{rpc_types.ApiVersion1}

// parseParams decodes params into request. Empty params leave request
// untouched.
func parseParams(params json.RawMessage, request interface{}) *rpc_types.RpcError {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, request); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func bountyService(ctx *rpc_types.RpcContext) (rpc_types.BountyService, *rpc_types.RpcError) {
	if ctx.Services == nil || ctx.Services.Bounty == nil {
		return nil, rpc_types.RpcErrorInternal("Bounty service not available")
	}
	return ctx.Services.Bounty, nil
}

func parseIdentity(field, value string) (types.Identity, *rpc_types.RpcError) {
	if value == "" {
		return types.Identity{}, rpc_types.RpcErrorMissingField(field)
	}
	id, err := types.IdentityFromHex(value)
	if err != nil {
		return types.Identity{}, rpc_types.RpcErrorActMalformed(field)
	}
	return id, nil
}

func parseHash(field, value string) (types.Hash256, *rpc_types.RpcError) {
	if value == "" {
		return types.Hash256{}, rpc_types.RpcErrorMissingField(field)
	}
	h, err := types.HashFromHex(value)
	if err != nil {
		return types.Hash256{}, rpc_types.RpcErrorInvalidHash(field)
	}
	return h, nil
}

func parseMint(field, value string) (types.Mint, *rpc_types.RpcError) {
	if value == "" {
		return types.Mint{}, rpc_types.RpcErrorMissingField(field)
	}
	m, err := types.ParseMint(value)
	if err != nil {
		return types.Mint{}, rpc_types.RpcErrorMintMalformed(field)
	}
	return m, nil
}

// parseAmount accepts a decimal string or a JSON number.
func parseAmount(field string, raw json.RawMessage) (uint64, *rpc_types.RpcError) {
	if len(raw) == 0 {
		return 0, rpc_types.RpcErrorMissingField(field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil || amount == 0 {
		return 0, rpc_types.RpcErrorInvalidField(field)
	}
	return amount, nil
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// serviceError maps service errors to RPC errors.
func serviceError(err error) *rpc_types.RpcError {
	switch {
	case errors.Is(err, service.ErrEscrowNotFound):
		return rpc_types.RpcErrorObjectNotFound("Escrow not found.")
	case errors.Is(err, service.ErrTransactionNotFound):
		return rpc_types.RpcErrorTxnNotFound("Transaction not found.")
	case errors.Is(err, service.ErrNoHistory):
		return rpc_types.RpcErrorNotEnabled("transaction history")
	case errors.Is(err, service.ErrClosed):
		return rpc_types.RpcErrorShutDown("Server is shutting down.")
	case errors.Is(err, service.ErrMalformedTx):
		return rpc_types.RpcErrorInvalidParams(err.Error())
	case errors.Is(err, custody.ErrOverflow), errors.Is(err, custody.ErrZeroAmount):
		return rpc_types.RpcErrorInvalidParams(err.Error())
	default:
		return rpc_types.RpcErrorInternal(err.Error())
	}
}
