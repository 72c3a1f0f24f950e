package errors

import (
	stdErrors "errors"
	"io/fs"
	"net/http"
	"time"

	"notepad-core/internal/models"
)

// JSON-RPC Error Codes (as per JSON-RPC 2.0 Specification)
const (
	CodeParseError     = -32700 // Invalid JSON was received by the server.
	CodeInvalidRequest = -32600 // The JSON sent is not a valid Request object.
	CodeMethodNotFound = -32601 // The method does not exist / is not available.
	CodeInvalidParams  = -32602 // Invalid method parameter(s).
	CodeInternalError  = -32603 // Internal JSON-RPC error.
)

// CodeIoError is shared by every filesystem fault. The host only displays the
// message, so not-found, permission, encoding and disk-full failures are not split.
const CodeIoError = -32001

// ErrInvalidUTF8 is the cause recorded when a file's bytes are not valid UTF-8 text.
var ErrInvalidUTF8 = stdErrors.New("stream did not contain valid UTF-8")

// IoError is the single error kind returned by the text file operations.
type IoError struct {
	// Op is the command that failed, e.g. "read_text_file".
	Op string
	// Path is the path the command was working on.
	Path string
	// Err is the underlying filesystem error.
	Err error
}

// NewIoError wraps err as an IoError. A nil err yields nil.
func NewIoError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Op: op, Path: path, Err: err}
}

// Error returns the descriptive message of the underlying filesystem error.
func (e *IoError) Error() string {
	return e.Err.Error()
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// IsIoError reports whether err is (or wraps) an IoError.
func IsIoError(err error) bool {
	var ioErr *IoError
	return stdErrors.As(err, &ioErr)
}

// --- Helper functions to create models.ErrorDetail ---

// NewErrorDetail creates a new ErrorDetail.
func NewErrorDetail(code int, message string, data map[string]string) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates an ErrorDetail for JSON parsing errors.
func NewParseError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeParseError, "Parse error", map[string]string{"details": details})
}

// NewInvalidRequestError creates an ErrorDetail for invalid JSON-RPC Request objects.
func NewInvalidRequestError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidRequest, "Invalid Request", map[string]string{"details": details})
}

// NewMethodNotFoundError creates an ErrorDetail when a command is not registered.
func NewMethodNotFoundError(methodName string) *models.ErrorDetail {
	return NewErrorDetail(CodeMethodNotFound, "Method not found", map[string]string{"operation": methodName})
}

// NewInvalidParamsError creates an ErrorDetail for arguments that could not be decoded.
func NewInvalidParamsError(methodName, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidParams, "Invalid params", map[string]string{
		"operation": methodName,
		"details":   details,
	})
}

// NewInternalError creates an ErrorDetail for unexpected server errors.
func NewInternalError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error", map[string]string{"details": details})
}

// FromError converts an error returned by the service layer into an ErrorDetail.
// IoErrors keep their descriptive message verbatim.
func FromError(err error) *models.ErrorDetail {
	if err == nil {
		return nil
	}
	var detail *models.ErrorDetail
	if stdErrors.As(err, &detail) {
		return detail
	}
	var ioErr *IoError
	if stdErrors.As(err, &ioErr) {
		data := map[string]string{
			"operation": ioErr.Op,
			"path":      ioErr.Path,
			"type":      ioErrorType(ioErr.Err),
		}
		return NewErrorDetail(CodeIoError, ioErr.Error(), data)
	}
	return NewInternalError(err.Error())
}

func ioErrorType(err error) string {
	switch {
	case stdErrors.Is(err, fs.ErrNotExist):
		return "not_found"
	case stdErrors.Is(err, fs.ErrPermission):
		return "permission_denied"
	case stdErrors.Is(err, fs.ErrExist):
		return "already_exists"
	case stdErrors.Is(err, ErrInvalidUTF8):
		return "invalid_encoding"
	default:
		return "io"
	}
}

// ToJSONRPCError converts an ErrorDetail to a models.JSONRPCError.
func ToJSONRPCError(errDetail *models.ErrorDetail) *models.JSONRPCError {
	if errDetail == nil {
		return nil
	}
	rpcErr := &models.JSONRPCError{
		Code:    errDetail.Code,
		Message: errDetail.Message,
	}
	if errDetail.Data != nil {
		rpcErr.Data = &models.JSONRPCErrorData{
			Path:      errDetail.Data["path"],
			Operation: errDetail.Data["operation"],
			Details:   errDetail.Data["details"],
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
	}
	return rpcErr
}

// MapErrorToHTTPStatus maps an ErrorDetail to an HTTP status code.
func MapErrorToHTTPStatus(errDetail *models.ErrorDetail) int {
	if errDetail == nil {
		return http.StatusInternalServerError
	}
	switch errDetail.Code {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeIoError:
		switch errDetail.Data["type"] {
		case "not_found":
			return http.StatusNotFound
		case "permission_denied":
			return http.StatusForbidden
		case "already_exists":
			return http.StatusConflict
		case "invalid_encoding":
			return http.StatusUnprocessableEntity
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
