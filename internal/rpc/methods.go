package rpc

import (
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_handlers"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// registerAllMethods registers every RPC method on r.
func registerAllMethods(r *rpc_types.MethodRegistry) {
	// Transactions
	r.Register("submit", &rpc_handlers.SubmitMethod{})
	r.Register("tx", &rpc_handlers.TxMethod{})
	r.Register("account_tx", &rpc_handlers.AccountTxMethod{})

	// Ledger state
	r.Register("escrow_info", &rpc_handlers.EscrowInfoMethod{})
	r.Register("balance", &rpc_handlers.BalanceMethod{})

	// Server
	r.Register("server_info", &rpc_handlers.ServerInfoMethod{})
	r.Register("ping", &rpc_handlers.PingMethod{})

	// Subscriptions, served by the WebSocket server
	r.Register("subscribe", &rpc_handlers.SubscribeMethod{})
	r.Register("unsubscribe", &rpc_handlers.UnsubscribeMethod{})

	// Admin
	r.Register("token_credit", &rpc_handlers.TokenCreditMethod{})
	r.Register("wallet_propose", &rpc_handlers.WalletProposeMethod{})
}
