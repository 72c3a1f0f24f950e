package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIoError_NilCause(t *testing.T) {
	assert.NoError(t, NewIoError("read_text_file", "/x", nil))
}

func TestIoError_MessageAndUnwrap(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, statErr)

	err := NewIoError("read_text_file", "/tmp/missing.md", statErr)
	assert.Equal(t, statErr.Error(), err.Error())
	assert.True(t, stdErrors.Is(err, fs.ErrNotExist))
	assert.True(t, IsIoError(err))
	assert.True(t, IsIoError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsIoError(statErr))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantType   string
		wantStatus int
	}{
		{"not found", NewIoError("read_text_file", "/a", fs.ErrNotExist), CodeIoError, "not_found", http.StatusNotFound},
		{"permission", NewIoError("write_text_file", "/b", fs.ErrPermission), CodeIoError, "permission_denied", http.StatusForbidden},
		{"already exists", NewIoError("rename_file", "/c", fs.ErrExist), CodeIoError, "already_exists", http.StatusConflict},
		{"encoding", NewIoError("read_text_file", "/c", ErrInvalidUTF8), CodeIoError, "invalid_encoding", http.StatusUnprocessableEntity},
		{"generic io", NewIoError("list_text_files", "/d", stdErrors.New("disk on fire")), CodeIoError, "io", http.StatusInternalServerError},
		{"plain error", stdErrors.New("boom"), CodeInternalError, "", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := FromError(tt.err)
			require.NotNil(t, detail)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.NotEmpty(t, detail.Message)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, detail.Data["type"])
			}
			assert.Equal(t, tt.wantStatus, MapErrorToHTTPStatus(detail))
		})
	}
}

func TestFromError_KeepsIoMessage(t *testing.T) {
	cause := stdErrors.New("open /nope: no such file or directory")
	detail := FromError(NewIoError("read_text_file", "/nope", cause))
	assert.Equal(t, cause.Error(), detail.Message)
	assert.Equal(t, "/nope", detail.Data["path"])
	assert.Equal(t, "read_text_file", detail.Data["operation"])
}

func TestFromError_PassesThroughDetail(t *testing.T) {
	detail := NewInvalidParamsError("greet", "bad json")
	assert.Same(t, detail, FromError(detail))
	assert.Nil(t, FromError(nil))
}

func TestToJSONRPCError(t *testing.T) {
	assert.Nil(t, ToJSONRPCError(nil))

	rpcErr := ToJSONRPCError(FromError(NewIoError("list_text_files", "/dir", fs.ErrNotExist)))
	require.NotNil(t, rpcErr)
	assert.Equal(t, CodeIoError, rpcErr.Code)
	require.NotNil(t, rpcErr.Data)
	assert.Equal(t, "/dir", rpcErr.Data.Path)
	assert.Equal(t, "list_text_files", rpcErr.Data.Operation)
	assert.NotEmpty(t, rpcErr.Data.Timestamp)
}

func TestMapErrorToHTTPStatus_ProtocolErrors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MapErrorToHTTPStatus(NewParseError("x")))
	assert.Equal(t, http.StatusBadRequest, MapErrorToHTTPStatus(NewInvalidRequestError("x")))
	assert.Equal(t, http.StatusBadRequest, MapErrorToHTTPStatus(NewInvalidParamsError("m", "x")))
	assert.Equal(t, http.StatusNotFound, MapErrorToHTTPStatus(NewMethodNotFoundError("m")))
	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTPStatus(NewInternalError("x")))
	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTPStatus(nil))
}
