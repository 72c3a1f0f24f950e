package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// maxFrameSize bounds a single request line. Whole documents travel inside
// write_text_file frames.
const maxFrameSize = 64 * 1024 * 1024

// StdioHandler handles line-delimited JSON-RPC communication over standard input/output.
type StdioHandler struct {
	dispatcher Dispatcher
	logger     *zap.SugaredLogger
}

// NewStdioHandler creates a new StdioHandler.
func NewStdioHandler(dispatcher Dispatcher, logger *zap.SugaredLogger) *StdioHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &StdioHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start reads one request per line from input and writes one response per line
// to output until input is exhausted or ctx is done. Requests are handled in order.
func (h *StdioHandler) Start(ctx context.Context, input io.Reader, output io.Writer) error {
	h.logger.Info("Starting stdio JSON-RPC handler")

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next, ok := <-lines:
			if !ok {
				return h.finish(ctx, scanErr)
			}
			line = next
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		resp := processJSONRPC(ctx, h.dispatcher, line)
		if resp.Error != nil {
			h.logger.Debugw("request failed", "id", resp.ID, "code", resp.Error.Code, "error", resp.Error.Message)
		}
		if _, err := fmt.Fprintln(output, string(marshalResponse(resp))); err != nil {
			h.logger.Errorw("Error writing JSON-RPC response", "error", err)
			return err
		}
	}
}

func (h *StdioHandler) finish(ctx context.Context, scanErr <-chan error) error {
	select {
	case err := <-scanErr:
		if err != nil {
			h.logger.Errorw("Error reading from stdio", "error", err)
			return err
		}
	default:
		return ctx.Err()
	}
	h.logger.Info("Stdio JSON-RPC handler finished")
	return nil
}
