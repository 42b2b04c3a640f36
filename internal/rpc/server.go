// Package rpc serves the bountyd JSON-RPC and WebSocket APIs.
package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/metrics"
	"github.com/LeJamon/goBountySplit/internal/rpc/rpc_types"
)

// maxRequestBody bounds a JSON-RPC request body.
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	services *rpc_types.ServiceContainer
	config   config.ServerConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewServer creates a new RPC server. m may be nil.
func NewServer(services *rpc_types.ServiceContainer, cfg config.ServerConfig, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		services: services,
		config:   cfg,
		metrics:  m,
		logger:   logger.Named("rpc"),
	}

	// Register all RPC methods
	registerAllMethods(server.registry)

	return server
}

// Registry returns the method registry.
func (s *Server) Registry() *rpc_types.MethodRegistry {
	return s.registry
}

// JsonRpcRequest is a JSON-RPC request.
// Format: {"method": "method_name", "params": [{...}]}
type JsonRpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" && s.config.AllowsOrigin(origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Vary", "Origin")
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest processes GET requests with query parameters
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		// Default to server_info for GET requests without command
		method = "server_info"
	}

	ctx := s.newContext(r)
	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, method, map[string]interface{}{"command": method}, result, rpcErr)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		s.writeResponse(w, "", nil, nil, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "invalidParams", "invalidParams",
			"Failed to read request body: "+err.Error()))
		return
	}

	var request JsonRpcRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, "", nil, nil, rpc_types.NewRpcError(rpc_types.RpcPARSE_ERROR, "jsonInvalid", "jsonInvalid",
			"Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, "", nil, nil, rpc_types.NewRpcError(rpc_types.RpcMISSING_COMMAND, "missingCommand", "missingCommand",
			"Missing method field"))
		return
	}

	// Params is an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := s.newContext(r)
	requestObj := map[string]interface{}{}
	if params != nil {
		if err := json.Unmarshal(params, &requestObj); err != nil {
			requestObj = map[string]interface{}{}
		}
		if ver, ok := requestObj["api_version"].(float64); ok {
			ctx.ApiVersion = int(ver)
		}
	}
	requestObj["command"] = request.Method

	result, rpcErr := s.executeMethod(request.Method, params, ctx)
	s.writeResponse(w, request.Method, requestObj, result, rpcErr)
}

func (s *Server) newContext(r *http.Request) *rpc_types.RpcContext {
	ctx := &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   getClientIP(r),
		Services:   s.services,
	}
	// Forwarding headers never grant admin
	if s.config.Admin && isLoopbackAddr(r.RemoteAddr) {
		ctx.Role = rpc_types.RoleAdmin
		ctx.IsAdmin = true
	}
	return ctx
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *rpc_types.RpcContext) (result interface{}, rpcErr *rpc_types.RpcError) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("rpc handler panicked", zap.String("method", method), zap.Any("panic", r))
			result, rpcErr = nil, rpc_types.RpcErrorInternal("Internal error")
		}
		status := "success"
		if rpcErr != nil {
			status = rpcErr.ErrorString
		}
		if s.metrics != nil {
			s.metrics.ObserveRPC(method, status)
		}
	}()

	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}
	return callHandler(handler, method, params, ctx)
}

// callHandler checks role and API version, then runs the handler. It is
// shared by the HTTP and WebSocket servers.
func callHandler(handler rpc_types.MethodHandler, method string, params json.RawMessage, ctx *rpc_types.RpcContext) (interface{}, *rpc_types.RpcError) {
	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.RpcErrorNoPermission(method)
	}

	supported := false
	for _, version := range handler.SupportedApiVersions() {
		if ctx.ApiVersion == version {
			supported = true
			break
		}
	}
	if !supported {
		return nil, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "invalid_API_version", "invalid_API_version",
			fmt.Sprintf("API version %d is not supported", ctx.ApiVersion))
	}

	return handler.Handle(ctx, params)
}

// writeResponse writes {"result": {...}}. Errors carry status "error"
// with the error fields and the echoed request.
func (s *Server) writeResponse(w http.ResponseWriter, method string, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	var body map[string]interface{}
	if rpcErr != nil {
		errResult := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			errResult["request"] = request
		}
		body = map[string]interface{}{"result": errResult}
	} else if m, ok := result.(map[string]interface{}); ok {
		m["status"] = "success"
		body = map[string]interface{}{"result": m}
	} else {
		body = map[string]interface{}{"result": map[string]interface{}{"status": "success", "data": result}}
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("failed to write rpc response", zap.String("method", method), zap.Error(err))
	}
}

// getClientIP returns the client IP, preferring forwarding headers.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
