package transport

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notepad-core/internal/errors"
	"notepad-core/internal/models"
)

const (
	defaultReadTimeout      = 60 * time.Second
	defaultWriteTimeout     = 60 * time.Second
	defaultShutdownTimeout  = 5 * time.Second
	defaultMaxRequestSizeMB = 50

	// RequestIDHeader carries the per-request id assigned by the server.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	Addr string
	// AllowedOrigins lists the browser origins accepted by CORS and the websocket
	// handshake. "*" accepts any origin.
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// HTTPServer exposes the dispatcher as POST /invoke/:command and as JSON-RPC
// frames over GET /ws.
type HTTPServer struct {
	engine     *gin.Engine
	server     *http.Server
	upgrader   *websocket.Upgrader
	dispatcher Dispatcher
	logger     *zap.SugaredLogger
	maxReqSize int64

	// wsConns holds the open websocket sessions. Shutdown does not see
	// hijacked connections, so they are closed from an OnShutdown hook.
	wsMu    sync.Mutex
	wsConns map[*websocket.Conn]struct{}
}

// NewHTTPServer creates an HTTPServer with its routes registered.
func NewHTTPServer(opts HTTPOptions, dispatcher Dispatcher, logger *zap.SugaredLogger) *HTTPServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	originAllowed := originMatcher(opts.AllowedOrigins)
	s := &HTTPServer{
		engine: gin.New(),
		upgrader: &websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || originAllowed(origin)
			},
		},
		dispatcher: dispatcher,
		logger:     logger,
		maxReqSize: int64(defaultMaxRequestSizeMB) * 1024 * 1024,
		wsConns:    make(map[*websocket.Conn]struct{}),
	}
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	s.server.RegisterOnShutdown(s.closeWebSockets)

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestIDMiddleware())
	s.engine.Use(accessLogMiddleware(logger))
	s.engine.Use(cors.New(cors.Config{
		AllowOriginFunc: originAllowed,
		AllowMethods: []string{
			"POST",
			"GET",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			RequestIDHeader,
		},
		AllowCredentials: false,
		MaxAge:           300 * time.Second,
	}))
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	s.engine.GET("/health", s.handleHealthCheck)
	s.engine.POST("/invoke/:command", s.handleInvoke)
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler returns the root handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Serve listens until ctx is done, then shuts the server down gracefully.
// Open websocket sessions are closed with a going-away frame.
func (s *HTTPServer) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", s.server.Addr, err)
	}
	return s.serveListener(ctx, ln)
}

func (s *HTTPServer) serveListener(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server starting", "addr", ln.Addr().String(), "read_timeout", s.server.ReadTimeout, "write_timeout", s.server.WriteTimeout)
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stdErrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		s.logger.Infow("HTTP server shut down", "addr", s.server.Addr)
		return nil
	}
}

func (s *HTTPServer) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleInvoke runs the command named in the path with the JSON body as its arguments.
func (s *HTTPServer) handleInvoke(c *gin.Context) {
	command := c.Param("command")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxReqSize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stdErrors.As(err, &tooLarge) {
			writeErrorResponse(c, http.StatusRequestEntityTooLarge,
				errors.NewInvalidRequestError(fmt.Sprintf("Request body exceeds maximum size of %dMB.", defaultMaxRequestSizeMB)))
			return
		}
		writeErrorResponse(c, http.StatusBadRequest, errors.NewInvalidRequestError(fmt.Sprintf("Failed to read request body: %v", err)))
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 {
		contentType := c.GetHeader("Content-Type")
		if !strings.HasPrefix(contentType, "application/json") {
			writeErrorResponse(c, http.StatusUnsupportedMediaType,
				errors.NewInvalidRequestError("Invalid Content-Type header. Must be 'application/json' or 'application/json; charset=utf-8'."))
			return
		}
		if !json.Valid(body) {
			writeErrorResponse(c, http.StatusBadRequest, errors.NewParseError("Invalid JSON in request body."))
			return
		}
	}

	result, errDetail := s.dispatcher.Dispatch(c.Request.Context(), command, body)
	if errDetail != nil {
		writeErrorResponse(c, errors.MapErrorToHTTPStatus(errDetail), errDetail)
		return
	}
	c.JSON(http.StatusOK, models.InvokeResponse{Result: result})
}

func writeErrorResponse(c *gin.Context, status int, errDetail *models.ErrorDetail) {
	if errDetail == nil {
		errDetail = errors.NewInternalError("An unexpected error occurred and error details were lost.")
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: *errDetail})
}

// requestIDMiddleware keeps a caller supplied X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLogMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

// originMatcher builds the origin predicate shared by CORS and the websocket upgrader.
func originMatcher(allowed []string) func(string) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(string) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(origin string) bool {
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
