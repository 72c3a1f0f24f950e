package transport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"notepad-core/internal/filesystem"
	"notepad-core/internal/models"
	"notepad-core/internal/rpc"
	"notepad-core/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRealDispatcher(t *testing.T) *rpc.Dispatcher {
	t.Helper()
	svc, err := service.NewDefaultTextFileService(filesystem.NewDefaultFileSystemAdapter(), nil)
	require.NoError(t, err)
	d, err := rpc.NewDispatcher(svc)
	require.NoError(t, err)
	return d
}

// dispatchFunc adapts a function to the Dispatcher interface.
type dispatchFunc func(ctx context.Context, method string, params json.RawMessage) (interface{}, *models.ErrorDetail)

func (f dispatchFunc) Dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, *models.ErrorDetail) {
	return f(ctx, method, params)
}
