package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/metrics"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

const (
	wsMaxMessageSize = 512 * 1024
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsWriteWait      = 10 * time.Second
	wsSendBuffer     = 256
)

// WebSocketServer handles WebSocket connections for commands and
// real-time subscriptions
type WebSocketServer struct {
	upgrader      websocket.Upgrader
	registry      *rpc_types.MethodRegistry
	services      *rpc_types.ServiceContainer
	subscriptions *rpc_types.SubscriptionManager
	config        config.ServerConfig
	metrics       *metrics.Metrics
	logger        *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	connections      map[string]*WebSocketConnection
	connectionsMutex sync.Mutex
}

// WebSocketConnection represents a single WebSocket connection
type WebSocketConnection struct {
	ID      string
	conn    *websocket.Conn
	sub     *rpc_types.Connection
	role    rpc_types.Role
	ip      string
	ctx     context.Context
	cancel  context.CancelFunc
	closeMu sync.Once
}

// NewWebSocketServer creates a WebSocket server sharing registry with
// the HTTP server. It installs a SubscriptionManager in services when
// none is set.
func NewWebSocketServer(registry *rpc_types.MethodRegistry, services *rpc_types.ServiceContainer, cfg config.ServerConfig, m *metrics.Metrics, logger *zap.Logger) *WebSocketServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if services.Subscriptions == nil {
		services.Subscriptions = rpc_types.NewSubscriptionManager()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ws := &WebSocketServer{
		registry:      registry,
		services:      services,
		subscriptions: services.Subscriptions,
		config:        cfg,
		metrics:       m,
		logger:        logger.Named("ws"),
		ctx:           ctx,
		cancel:        cancel,
		connections:   make(map[string]*WebSocketConnection),
	}
	ws.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.AllowsOrigin(origin)
		},
	}
	ws.subscriptions.OnDrop = func(connID string) {
		ws.logger.Warn("dropped message for slow subscriber", zap.String("conn", connID))
	}
	return ws
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	// The request context ends when ServeHTTP returns
	ctx, cancel := context.WithCancel(ws.ctx)
	wsConn := &WebSocketConnection{
		ID:     uuid.NewString(),
		conn:   conn,
		role:   rpc_types.RoleGuest,
		ip:     getClientIP(r),
		ctx:    ctx,
		cancel: cancel,
	}
	wsConn.sub = rpc_types.NewConnection(wsConn.ID, wsSendBuffer)
	if ws.config.Admin && isLoopbackAddr(r.RemoteAddr) {
		wsConn.role = rpc_types.RoleAdmin
	}

	ws.connectionsMutex.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.connectionsMutex.Unlock()
	ws.subscriptions.AddConnection(wsConn.sub)
	if ws.metrics != nil {
		ws.metrics.SubscriberConnected()
	}
	ws.logger.Debug("websocket connected", zap.String("conn", wsConn.ID), zap.String("ip", wsConn.ip))

	go ws.handleSend(wsConn)
	go ws.handleConnection(wsConn)
}

// handleConnection reads messages from a WebSocket connection until it
// fails or closes
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	_ = wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("websocket read failed", zap.String("conn", wsConn.ID), zap.Error(err))
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// handleSend writes queued messages and keepalive pings
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		ws.closeConnection(wsConn)
		wsConn.conn.Close()
	}()

	for {
		select {
		case <-wsConn.ctx.Done():
			_ = wsConn.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(wsWriteWait))
			return
		case message := <-wsConn.sub.SendChannel:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.logger.Debug("websocket send failed", zap.String("conn", wsConn.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes a single command. Parameters sit next to the
// command at the top level.
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, rpc_types.NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()), nil)
		return
	}

	var cmd rpc_types.WebSocketCommand
	if raw, ok := cmdMap["id"]; ok {
		_ = json.Unmarshal(raw, &cmd.ID)
	}
	if raw, ok := cmdMap["command"]; ok {
		_ = json.Unmarshal(raw, &cmd.Command)
	}
	if cmd.Command == "" {
		ws.sendError(wsConn, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand", "Missing command field"), cmd.ID)
		return
	}

	apiVersion := rpc_types.DefaultApiVersion
	if raw, ok := cmdMap["api_version"]; ok {
		_ = json.Unmarshal(raw, &apiVersion)
	}
	delete(cmdMap, "command")
	delete(cmdMap, "id")
	if len(cmdMap) > 0 {
		cmd.Params, _ = json.Marshal(cmdMap)
	}

	ctx := &rpc_types.RpcContext{
		Context:    wsConn.ctx,
		Role:       wsConn.role,
		ApiVersion: apiVersion,
		IsAdmin:    wsConn.role == rpc_types.RoleAdmin,
		ClientIP:   wsConn.ip,
		Services:   ws.services,
	}

	var (
		result interface{}
		rpcErr *rpc_types.RpcError
	)
	switch cmd.Command {
	case "subscribe":
		result, rpcErr = ws.handleSubscribe(wsConn, cmd)
	case "unsubscribe":
		result, rpcErr = ws.handleUnsubscribe(wsConn, cmd)
	default:
		handler, exists := ws.registry.Get(cmd.Command)
		if !exists {
			rpcErr = rpc_types.RpcErrorMethodNotFound(cmd.Command)
			break
		}
		result, rpcErr = callHandler(handler, cmd.Command, cmd.Params, ctx)
	}

	status := "success"
	if rpcErr != nil {
		status = rpcErr.ErrorString
	}
	if ws.metrics != nil {
		ws.metrics.ObserveRPC(cmd.Command, status)
	}

	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, cmd.ID)
		return
	}
	ws.sendResponse(wsConn, rpc_types.WebSocketResponse{
		Type:       "response",
		ID:         cmd.ID,
		Status:     "success",
		Result:     result,
		ApiVersion: apiVersion,
	})
}

func parseSubscription(params json.RawMessage) (rpc_types.SubscriptionRequest, *rpc_types.RpcError) {
	var request rpc_types.SubscriptionRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &request); err != nil {
			return request, rpc_types.RpcErrorInvalidParams("Invalid subscription parameters: " + err.Error())
		}
	}
	return request, nil
}

// handleSubscribe processes subscribe commands
func (ws *WebSocketServer) handleSubscribe(wsConn *WebSocketConnection, cmd rpc_types.WebSocketCommand) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseSubscription(cmd.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if len(request.Streams) == 0 && len(request.Accounts) == 0 {
		return nil, rpc_types.RpcErrorInvalidParams("Nothing to subscribe to")
	}
	if rpcErr := ws.subscriptions.HandleSubscribe(wsConn.ID, request); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{}, nil
}

// handleUnsubscribe processes unsubscribe commands
func (ws *WebSocketServer) handleUnsubscribe(wsConn *WebSocketConnection, cmd rpc_types.WebSocketCommand) (interface{}, *rpc_types.RpcError) {
	request, rpcErr := parseSubscription(cmd.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if rpcErr := ws.subscriptions.HandleUnsubscribe(wsConn.ID, request); rpcErr != nil {
		return nil, rpcErr
	}
	return map[string]interface{}{}, nil
}

// sendResponse queues a WebSocket response
func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response interface{}) {
	data, err := json.Marshal(response)
	if err != nil {
		ws.logger.Error("failed to marshal websocket response", zap.Error(err))
		return
	}

	select {
	case wsConn.sub.SendChannel <- data:
	case <-wsConn.ctx.Done():
	default:
		ws.logger.Warn("websocket send channel full, closing connection", zap.String("conn", wsConn.ID))
		ws.closeConnection(wsConn)
	}
}

// sendError sends an error response with flat error fields
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *rpc_types.RpcError, id interface{}) {
	response := map[string]interface{}{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}
	ws.sendResponse(wsConn, response)
}

// closeConnection tears a connection down. Safe to call more than once.
func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeMu.Do(func() {
		wsConn.cancel()
		ws.subscriptions.RemoveConnection(wsConn.ID)

		ws.connectionsMutex.Lock()
		delete(ws.connections, wsConn.ID)
		ws.connectionsMutex.Unlock()

		if ws.metrics != nil {
			ws.metrics.SubscriberDisconnected()
		}
		ws.logger.Debug("websocket disconnected", zap.String("conn", wsConn.ID))
	})
}

// ConnectionCount returns the number of open connections.
func (ws *WebSocketServer) ConnectionCount() int {
	ws.connectionsMutex.Lock()
	defer ws.connectionsMutex.Unlock()
	return len(ws.connections)
}

// Close sends a close frame to every connection and stops accepting
// commands on them.
func (ws *WebSocketServer) Close() {
	ws.cancel()
	ws.connectionsMutex.Lock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.connectionsMutex.Unlock()

	for _, c := range conns {
		ws.closeConnection(c)
	}
}
