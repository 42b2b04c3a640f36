package rpc_types

import (
	"sync"

	"github.com/LeJamon/goBountySplit/internal/core/types"
)

// Subscription types for WebSocket streams
type SubscriptionType string

const (
	SubTransactions SubscriptionType = "transactions"
	SubAccounts     SubscriptionType = "accounts"
	SubServer       SubscriptionType = "server"
)

// validStreams contains the set of valid stream types
var validStreams = map[SubscriptionType]bool{
	SubTransactions: true,
	SubServer:       true,
}

// SubscriptionRequest is the body of subscribe and unsubscribe.
type SubscriptionRequest struct {
	Streams  []SubscriptionType `json:"streams,omitempty"`
	Accounts []string           `json:"accounts,omitempty"`
}

// Connection represents a WebSocket connection for subscription management
type Connection struct {
	ID          string
	Streams     map[SubscriptionType]bool
	Accounts    map[types.Identity]bool
	SendChannel chan []byte
}

// NewConnection creates a connection with a send buffer of size buffer.
func NewConnection(id string, buffer int) *Connection {
	return &Connection{
		ID:          id,
		Streams:     make(map[SubscriptionType]bool),
		Accounts:    make(map[types.Identity]bool),
		SendChannel: make(chan []byte, buffer),
	}
}

// SubscriptionManager manages WebSocket subscriptions
type SubscriptionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection

	// OnDrop is called when a message is dropped for a slow connection
	OnDrop func(connID string)
}

// NewSubscriptionManager creates a new SubscriptionManager
func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		connections: make(map[string]*Connection),
	}
}

// AddConnection adds a connection to the subscription manager
func (sm *SubscriptionManager) AddConnection(conn *Connection) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.connections[conn.ID] = conn
}

// RemoveConnection removes a connection from the subscription manager
func (sm *SubscriptionManager) RemoveConnection(connID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.connections, connID)
}

func parseAccounts(accounts []string) ([]types.Identity, *RpcError) {
	out := make([]types.Identity, 0, len(accounts))
	for _, acc := range accounts {
		id, err := types.IdentityFromHex(acc)
		if err != nil {
			return nil, RpcErrorActMalformed(acc)
		}
		out = append(out, id)
	}
	return out, nil
}

// HandleSubscribe handles a subscribe request for a connection. Nothing
// is subscribed unless the whole request is valid.
func (sm *SubscriptionManager) HandleSubscribe(connID string, request SubscriptionRequest) *RpcError {
	for _, stream := range request.Streams {
		if !validStreams[stream] {
			return NewRpcError(RpcSTREAM_MALFORMED, "malformedStream", "malformedStream",
				"Unknown stream type: "+string(stream))
		}
	}
	accounts, rpcErr := parseAccounts(request.Accounts)
	if rpcErr != nil {
		return rpcErr
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	conn, ok := sm.connections[connID]
	if !ok {
		return RpcErrorInternal("unknown connection " + connID)
	}
	for _, stream := range request.Streams {
		conn.Streams[stream] = true
	}
	for _, id := range accounts {
		conn.Accounts[id] = true
	}
	return nil
}

// HandleUnsubscribe handles an unsubscribe request for a connection
func (sm *SubscriptionManager) HandleUnsubscribe(connID string, request SubscriptionRequest) *RpcError {
	accounts, rpcErr := parseAccounts(request.Accounts)
	if rpcErr != nil {
		return rpcErr
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	conn, ok := sm.connections[connID]
	if !ok {
		return RpcErrorInternal("unknown connection " + connID)
	}
	for _, stream := range request.Streams {
		delete(conn.Streams, stream)
	}
	for _, id := range accounts {
		delete(conn.Accounts, id)
	}
	return nil
}

// Broadcast sends data to every connection subscribed to stream or to
// any of accounts. A connection receives it at most once. Full send
// buffers drop the message.
func (sm *SubscriptionManager) Broadcast(stream SubscriptionType, accounts []types.Identity, data []byte) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, conn := range sm.connections {
		if !conn.wants(stream, accounts) {
			continue
		}
		select {
		case conn.SendChannel <- data:
		default:
			if sm.OnDrop != nil {
				sm.OnDrop(conn.ID)
			}
		}
	}
}

func (c *Connection) wants(stream SubscriptionType, accounts []types.Identity) bool {
	if c.Streams[stream] {
		return true
	}
	for _, id := range accounts {
		if c.Accounts[id] {
			return true
		}
	}
	return false
}

// GetSubscriberCount returns the number of subscribers for a stream type
func (sm *SubscriptionManager) GetSubscriberCount(stream SubscriptionType) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	count := 0
	for _, conn := range sm.connections {
		if conn.Streams[stream] {
			count++
		}
	}
	return count
}

// ConnectionCount returns the number of active connections
func (sm *SubscriptionManager) ConnectionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.connections)
}

// IsSubscribed checks if a connection is subscribed to a stream type
func (sm *SubscriptionManager) IsSubscribed(connID string, stream SubscriptionType) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	conn := sm.connections[connID]
	return conn != nil && conn.Streams[stream]
}
