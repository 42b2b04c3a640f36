package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goBountySplit/internal/core/tx"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// SubmitMethod handles the submit RPC method. The signed transaction is
// given either as tx_json or as tx_blob, the hex encoding of its JSON.
type SubmitMethod struct{}

func (m *SubmitMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		TxJSON json.RawMessage `json:"tx_json,omitempty"`
		TxBlob string          `json:"tx_blob,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}

	var blob []byte
	switch {
	case len(request.TxJSON) > 0:
		blob = request.TxJSON
	case request.TxBlob != "":
		decoded, err := hex.DecodeString(strings.TrimSpace(request.TxBlob))
		if err != nil {
			return nil, rpc_types.RpcErrorInvalidField("tx_blob")
		}
		blob = decoded
	default:
		return nil, rpc_types.RpcErrorMissingField("tx_json")
	}

	svc, rpcErr := bountyService(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, err := svc.Submit(ctx.Context, blob)
	if err != nil {
		return nil, serviceError(err)
	}

	response := map[string]interface{}{
		"engine_result":         result.Result.String(),
		"engine_result_code":    int(result.Result),
		"engine_result_message": result.Message,
		"tx_json":               result.Tx,
		"tx_hash":               result.Hash.String(),
		"accepted":              result.Applied,
		"applied":               result.Applied,
	}
	if result.Metadata != nil {
		response["meta"] = result.Metadata
	}
	if len(result.Events) > 0 {
		events, rpcErr := marshalEvents(result.Events)
		if rpcErr != nil {
			return nil, rpcErr
		}
		response["events"] = events
	}
	return response, nil
}

func marshalEvents(events []tx.Event) ([]json.RawMessage, *rpc_types.RpcError) {
	out := make([]json.RawMessage, 0, len(events))
	for _, e := range events {
		data, err := tx.MarshalEvent(e)
		if err != nil {
			return nil, rpc_types.RpcErrorInternal("Failed to encode event: " + err.Error())
		}
		out = append(out, data)
	}
	return out, nil
}

func (m *SubmitMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (m *SubmitMethod) SupportedApiVersions() []int {
	return allVersions
}
