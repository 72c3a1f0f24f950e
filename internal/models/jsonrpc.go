package models

import "encoding/json"

// JSONRPCVersion is the only protocol version accepted by the stdio and websocket transports.
const JSONRPCVersion = "2.0"

// JSONRPCRequest represents a JSON-RPC request object.
type JSONRPCRequest struct {
	// JSONRPC specifies the version of the JSON-RPC protocol, must be "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is a unique identifier established by the client.
	// It can be a string or a number. The server must reply with the same ID.
	ID interface{} `json:"id"`
	// Method is the command name, e.g. "read_text_file".
	Method string `json:"method"`
	// Params holds the command arguments. Parsing is deferred until the method is known.
	Params json.RawMessage `json:"params"`
}

// JSONRPCErrorData carries the context of a failed command.
type JSONRPCErrorData struct {
	// Path is the filesystem path involved in the error, if applicable.
	Path string `json:"path,omitempty"`
	// Operation is the command being performed when the error occurred.
	Operation string `json:"operation,omitempty"`
	// Timestamp records when the error occurred.
	Timestamp string `json:"timestamp,omitempty"`
	// Details provides any other specific details about the error.
	Details string `json:"details,omitempty"`
}

// JSONRPCError represents a JSON-RPC error object.
type JSONRPCError struct {
	// Code indicates the error type. IO failures all share one code.
	Code int `json:"code"`
	// Message is the descriptive text shown to the user.
	Message string `json:"message"`
	// Data contains additional information about the error. It may be omitted.
	Data *JSONRPCErrorData `json:"data,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response object.
type JSONRPCResponse struct {
	// JSONRPC specifies the version of the JSON-RPC protocol, must be "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is the identifier of the request to which this response is a reply.
	ID interface{} `json:"id"`
	// Result contains the command result. Commands without a result (write_text_file)
	// reply with an explicit null.
	Result interface{} `json:"result"`
	// Error contains an error object if the command failed.
	Error *JSONRPCError `json:"error,omitempty"`
}

// MarshalJSON omits result when Error is set.
func (r JSONRPCResponse) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(struct {
			JSONRPC string        `json:"jsonrpc"`
			ID      interface{}   `json:"id"`
			Error   *JSONRPCError `json:"error"`
		}{r.JSONRPC, r.ID, r.Error})
	}
	type plain JSONRPCResponse
	return json.Marshal(plain(r))
}
