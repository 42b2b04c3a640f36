package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goBountySplit/internal/crypto"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// WalletProposeMethod handles the wallet_propose RPC method
type WalletProposeMethod struct{}

func (m *WalletProposeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Seed       string `json:"seed,omitempty"`
		Passphrase string `json:"passphrase,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}

	var seed []byte
	switch {
	case request.Seed != "" && request.Passphrase != "":
		return nil, rpc_types.RpcErrorInvalidParams("Specify only one of seed and passphrase")
	case request.Seed != "":
		decoded, err := hex.DecodeString(request.Seed)
		if err != nil || len(decoded) != crypto.SeedSize {
			return nil, rpc_types.RpcErrorBadSeed("Seed must be 16 bytes of hex")
		}
		seed = decoded
	case request.Passphrase != "":
		seed = crypto.SeedFromPassphrase(request.Passphrase)
	default:
		generated, err := crypto.GenerateSeed()
		if err != nil {
			return nil, rpc_types.RpcErrorInternal(err.Error())
		}
		seed = generated
	}

	kp, err := crypto.KeypairFromSeed(seed)
	if err != nil {
		return nil, rpc_types.RpcErrorBadSeed(err.Error())
	}

	response := map[string]interface{}{
		"master_seed": strings.ToUpper(hex.EncodeToString(seed)),
		"public_key":  kp.Identity().String(),
		"account_id":  kp.AccountID().String(),
		"key_type":    "secp256k1",
	}
	if request.Passphrase != "" {
		response["warning"] = "This wallet was generated using a user-supplied passphrase. It may be vulnerable to brute-force attacks."
	}
	return response, nil
}

func (m *WalletProposeMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleAdmin
}

func (m *WalletProposeMethod) SupportedApiVersions() []int {
	return allVersions
}
