package transport

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handleWebSocket upgrades the connection and answers one JSON-RPC response per
// text frame received, in order, until the client disconnects.
func (s *HTTPServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.maxReqSize)
	s.trackWebSocket(conn, true)
	defer s.trackWebSocket(conn, false)

	session := uuid.NewString()
	log := s.logger.With("session", session)
	log.Infow("websocket connected", "remote", c.Request.RemoteAddr)

	ctx := c.Request.Context()
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnw("websocket read failed", "error", err)
			}
			break
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		resp := processJSONRPC(ctx, s.dispatcher, frame)
		if err := conn.WriteMessage(websocket.TextMessage, marshalResponse(resp)); err != nil {
			log.Warnw("websocket write failed", "error", err)
			break
		}
	}
	log.Infow("websocket disconnected")
}

func (s *HTTPServer) trackWebSocket(conn *websocket.Conn, open bool) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if open {
		s.wsConns[conn] = struct{}{}
		return
	}
	delete(s.wsConns, conn)
}

// closeWebSockets sends a going-away close frame to every open session and
// closes it. The read loops then exit on their own.
func (s *HTTPServer) closeWebSockets() {
	s.wsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.wsConns))
	for conn := range s.wsConns {
		conns = append(conns, conn)
	}
	s.wsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range conns {
		if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
			s.logger.Debugw("websocket close frame not sent", "error", err)
		}
		conn.Close()
	}
	if len(conns) > 0 {
		s.logger.Infow("websocket sessions closed", "count", len(conns))
	}
}
