package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"notepad-core/internal/errors"
	"notepad-core/internal/models"
	"notepad-core/internal/service"
)

// HandlerFunc runs one command with its raw JSON arguments.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Dispatcher maps command names to service calls. The HTTP, websocket and
// stdio transports all route through it, so every transport exposes the
// same commands with the same argument names.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	timeout  time.Duration
	logger   *zap.SugaredLogger
	recent   *service.RecentFilesService
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds every command by d.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.timeout = d
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(disp *Dispatcher) {
		if logger != nil {
			disp.logger = logger
		}
	}
}

// WithRecentFiles registers the recent-files commands.
func WithRecentFiles(recent *service.RecentFilesService) Option {
	return func(disp *Dispatcher) {
		if recent == nil {
			return
		}
		disp.recent = recent
		disp.handlers[service.OpLoadRecentFiles] = func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return recent.Load(ctx)
		}
		disp.handlers[service.OpTouchRecentFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var req models.TouchRecentFileRequest
			if err := decodeParams(service.OpTouchRecentFile, params, &req); err != nil {
				return nil, err
			}
			return recent.Touch(ctx, req.Path)
		}
		disp.handlers[service.OpRemoveRecentFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var req models.RemoveRecentFileRequest
			if err := decodeParams(service.OpRemoveRecentFile, params, &req); err != nil {
				return nil, err
			}
			return recent.Remove(ctx, req.ID)
		}
		disp.handlers[service.OpRenameRecentFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var req models.RenameFileRequest
			if err := decodeParams(service.OpRenameRecentFile, params, &req); err != nil {
				return nil, err
			}
			return recent.Rename(ctx, req.OldPath, req.NewPath)
		}
	}
}

// WithWorkDir registers the working directory commands.
func WithWorkDir(workDir *service.WorkDirService) Option {
	return func(disp *Dispatcher) {
		if workDir == nil {
			return
		}
		disp.handlers[service.OpGetWorkDir] = func(ctx context.Context, _ json.RawMessage) (interface{}, error) {
			return workDir.Get(ctx)
		}
		disp.handlers[service.OpSetWorkDir] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var req models.SetWorkDirRequest
			if err := decodeParams(service.OpSetWorkDir, params, &req); err != nil {
				return nil, err
			}
			return nil, workDir.Set(ctx, req.Dir)
		}
	}
}

// NewDispatcher creates a Dispatcher exposing the text file commands of svc.
func NewDispatcher(svc service.TextFileService, opts ...Option) (*Dispatcher, error) {
	if svc == nil {
		return nil, fmt.Errorf("text file service is required")
	}
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   zap.NewNop().Sugar(),
	}
	d.registerTextFileCommands(svc)
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

func (d *Dispatcher) registerTextFileCommands(svc service.TextFileService) {
	d.handlers[service.OpReadTextFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.ReadTextFileRequest
		if err := decodeParams(service.OpReadTextFile, params, &req); err != nil {
			return nil, err
		}
		return svc.ReadTextFile(ctx, req.Path)
	}
	d.handlers[service.OpWriteTextFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.WriteTextFileRequest
		if err := decodeParams(service.OpWriteTextFile, params, &req); err != nil {
			return nil, err
		}
		return nil, svc.WriteTextFile(ctx, req.Path, req.Content)
	}
	d.handlers[service.OpListTextFiles] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.ListTextFilesRequest
		if err := decodeParams(service.OpListTextFiles, params, &req); err != nil {
			return nil, err
		}
		return svc.ListTextFiles(ctx, req.DirPath)
	}
	d.handlers[service.OpDeleteFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.DeleteFileRequest
		if err := decodeParams(service.OpDeleteFile, params, &req); err != nil {
			return nil, err
		}
		return nil, svc.DeleteFile(ctx, req.Path)
	}
	d.handlers[service.OpFileExists] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.FileExistsRequest
		if err := decodeParams(service.OpFileExists, params, &req); err != nil {
			return nil, err
		}
		return svc.FileExists(ctx, req.Path)
	}
	d.handlers[service.OpRenameFile] = func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var req models.RenameFileRequest
		if err := decodeParams(service.OpRenameFile, params, &req); err != nil {
			return nil, err
		}
		if err := svc.RenameFile(ctx, req.OldPath, req.NewPath); err != nil {
			return nil, err
		}
		// The file has already moved, so recent-list failures are only logged.
		if d.recent != nil {
			if _, err := d.recent.Rename(ctx, req.OldPath, req.NewPath); err != nil {
				d.logger.Warnw("recent files not updated after rename", "from", req.OldPath, "to", req.NewPath, "error", err)
			}
		}
		return nil, nil
	}
	d.handlers[service.OpGreet] = func(_ context.Context, params json.RawMessage) (interface{}, error) {
		var req models.GreetRequest
		if err := decodeParams(service.OpGreet, params, &req); err != nil {
			return nil, err
		}
		return svc.Greet(req.Name), nil
	}
	d.handlers[service.OpGetStartupFile] = func(_ context.Context, _ json.RawMessage) (interface{}, error) {
		path, ok := svc.StartupFile()
		if !ok {
			return nil, nil
		}
		return path, nil
	}
}

// Methods returns the registered command names in sorted order.
func (d *Dispatcher) Methods() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs method with params. A nil result with a nil error is a
// successful command without a return value.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, *models.ErrorDetail) {
	handler, ok := d.handlers[method]
	if !ok {
		return nil, errors.NewMethodNotFoundError(method)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := handler(ctx, params)
	if err != nil {
		detail := errors.FromError(err)
		d.logger.Debugw("command failed", "method", method, "code", detail.Code, "error", detail.Message, "elapsed", time.Since(start))
		return nil, detail
	}
	d.logger.Debugw("command completed", "method", method, "elapsed", time.Since(start))
	return result, nil
}

// decodeParams unmarshals params into out. Absent or null params leave out
// at its zero value.
func decodeParams(method string, params json.RawMessage, out interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return errors.NewInvalidParamsError(method, err.Error())
	}
	return nil
}
