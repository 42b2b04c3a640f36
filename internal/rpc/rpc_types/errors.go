package rpc_types

// RpcError represents an RPC error with code and message
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Type        string `json:"type"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes
const (
	// Universal errors
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	// General purpose errors
	RpcGENERAL           = 1
	RpcMISSING_COMMAND   = 2
	RpcCOMMAND_UNTRUSTED = 3
	RpcSHUT_DOWN         = 11

	// Transaction errors
	RpcTXN_NOT_FOUND = 24

	// Subscription errors
	RpcSTREAM_MALFORMED = 26

	RpcNOT_ENABLED   = 31
	RpcNOT_SUPPORTED = 32

	RpcINVALID_HASH = 44

	// Account and key errors
	RpcACT_MALFORMED    = 50
	RpcBAD_SEED         = 53
	RpcPUBLIC_MALFORMED = 62
	RpcMINT_MALFORMED   = 63

	// Object errors
	RpcOBJECT_NOT_FOUND = 92
)

// Standard error constructors
func NewRpcError(code int, error, errorType, message string) *RpcError {
	return &RpcError{
		Code:        code,
		ErrorString: error,
		Type:        errorType,
		Message:     message,
	}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", "internal", message)
}

func RpcErrorTxnNotFound(message string) *RpcError {
	return NewRpcError(RpcTXN_NOT_FOUND, "txnNotFound", "txnNotFound", message)
}

func RpcErrorShutDown(message string) *RpcError {
	return NewRpcError(RpcSHUT_DOWN, "shutDown", "shutDown", message)
}

func RpcErrorNotEnabled(feature string) *RpcError {
	return NewRpcError(RpcNOT_ENABLED, "notEnabled", "notEnabled", "Feature not enabled: "+feature)
}

func RpcErrorNotSupported(message string) *RpcError {
	return NewRpcError(RpcNOT_SUPPORTED, "notSupported", "notSupported", message)
}

func RpcErrorNoPermission(method string) *RpcError {
	return NewRpcError(RpcCOMMAND_UNTRUSTED, "noPermission", "noPermission",
		"You don't have permission for this command: "+method)
}

// RpcErrorObjectNotFound returns an error for a missing ledger entry
func RpcErrorObjectNotFound(message string) *RpcError {
	return NewRpcError(RpcOBJECT_NOT_FOUND, "entryNotFound", "entryNotFound", message)
}

// RpcErrorMissingField returns an error for missing required field
func RpcErrorMissingField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Missing field '"+field+"'.")
}

// RpcErrorInvalidField returns an error for invalid field value
func RpcErrorInvalidField(field string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", "invalidParams", "Invalid field '"+field+"'.")
}

func RpcErrorActMalformed(field string) *RpcError {
	return NewRpcError(RpcACT_MALFORMED, "actMalformed", "actMalformed", "Account malformed: '"+field+"'.")
}

func RpcErrorMintMalformed(field string) *RpcError {
	return NewRpcError(RpcMINT_MALFORMED, "mintMalformed", "mintMalformed", "Token mint malformed: '"+field+"'.")
}

func RpcErrorInvalidHash(field string) *RpcError {
	return NewRpcError(RpcINVALID_HASH, "invalidHash", "invalidHash", "Invalid hash: '"+field+"'.")
}

func RpcErrorBadSeed(message string) *RpcError {
	return NewRpcError(RpcBAD_SEED, "badSeed", "badSeed", message)
}
