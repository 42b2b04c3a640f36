package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goBountySplit/internal/core/ledger/service"
	"github.com/LeJamon/goBountySplit/internal/core/split"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// EscrowInfoMethod handles the escrow_info RPC method. The escrow is
// selected by its key or by requester and bounty_id.
type EscrowInfoMethod struct{}

func (m *EscrowInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Escrow    string `json:"escrow,omitempty"`
		Requester string `json:"requester,omitempty"`
		BountyID  string `json:"bounty_id,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var (
		info *service.EscrowInfo
		err  error
	)
	if request.Escrow != "" {
		key, rpcErr := parseHash("escrow", request.Escrow)
		if rpcErr != nil {
			return nil, rpcErr
		}
		info, err = svc.EscrowByKey(key)
	} else {
		if request.Requester == "" && request.BountyID == "" {
			return nil, rpc_types.RpcErrorMissingField("escrow")
		}
		requester, rpcErr := parseIdentity("requester", request.Requester)
		if rpcErr != nil {
			return nil, rpcErr
		}
		bountyID, rpcErr := parseHash("bounty_id", request.BountyID)
		if rpcErr != nil {
			return nil, rpcErr
		}
		info, err = svc.Escrow(requester, bountyID)
	}
	if err != nil {
		return nil, serviceError(err)
	}

	response := map[string]interface{}{
		"escrow_key":    info.Key.String(),
		"escrow":        info.Escrow,
		"vault_balance": formatAmount(info.VaultBalance),
		"dust":          formatAmount(info.Dust),
	}

	// Shares are fixed once the quorum captures the released amount
	if e := info.Escrow; e.ReleasedAmount > 0 {
		shares, _ := split.Distribute(e.ReleasedAmount, e.Splits[:e.RecipientCount])
		out := make([]map[string]interface{}, len(shares))
		for i, share := range shares {
			out[i] = map[string]interface{}{
				"recipient": e.Recipients[i].String(),
				"amount":    formatAmount(share),
				"claimed":   e.Claimed.IsSet(i),
			}
		}
		response["shares"] = out
	}
	return response, nil
}

func (m *EscrowInfoMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *EscrowInfoMethod) SupportedApiVersions() []int {
	return allVersions
}
