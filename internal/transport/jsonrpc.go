package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"notepad-core/internal/errors"
	"notepad-core/internal/models"
)

// Dispatcher runs a named command. It is satisfied by *rpc.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, *models.ErrorDetail)
}

// processJSONRPC decodes one JSON-RPC 2.0 request frame, runs it and builds the reply.
func processJSONRPC(ctx context.Context, dispatcher Dispatcher, frame []byte) models.JSONRPCResponse {
	var req models.JSONRPCRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		errDetail := errors.NewParseError(fmt.Sprintf("Invalid JSON received: %v", err))
		return models.JSONRPCResponse{
			JSONRPC: models.JSONRPCVersion,
			ID:      nil,
			Error:   errors.ToJSONRPCError(errDetail),
		}
	}

	resp := models.JSONRPCResponse{
		JSONRPC: models.JSONRPCVersion,
		ID:      req.ID,
	}
	if req.JSONRPC != models.JSONRPCVersion {
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
		return resp
	}
	if req.Method == "" {
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Method not specified."))
		return resp
	}

	result, errDetail := dispatcher.Dispatch(ctx, req.Method, req.Params)
	if errDetail != nil {
		rpcErr := errors.ToJSONRPCError(errDetail)
		if rpcErr.Data != nil && rpcErr.Data.Operation == "" {
			rpcErr.Data.Operation = req.Method
		}
		resp.Error = rpcErr
		return resp
	}
	resp.Result = result
	return resp
}

// marshalResponse encodes resp, falling back to an internal error that keeps the request id.
func marshalResponse(resp models.JSONRPCResponse) []byte {
	data, err := json.Marshal(resp)
	if err == nil {
		return data
	}
	fallback := models.JSONRPCResponse{
		JSONRPC: models.JSONRPCVersion,
		ID:      resp.ID,
		Error:   errors.ToJSONRPCError(errors.NewInternalError("Server error: failed to marshal response.")),
	}
	data, _ = json.Marshal(fallback)
	return data
}
