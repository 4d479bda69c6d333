package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed between two reads before the connection is dropped.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Command is a request from the browser.
type Command struct {
	Type    string   `json:"type"`
	Page    int      `json:"page,omitempty"`
	Row     string   `json:"row,omitempty"`
	Hidden  *bool    `json:"hidden,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// Apply runs cmd against the grid and broadcasts the result.
func (s *Server) Apply(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case "page":
		if err := s.grid.SetPage(cmd.Page); err != nil {
			return err
		}
	case "select":
		if !s.grid.Select(cmd.Row) {
			return nil
		}
	case "hide":
		if cmd.Hidden == nil {
			return gerrors.NewContractError("INVALID_COMMAND", "hide needs a hidden flag")
		}
		s.grid.SetHiddenColumn(*cmd.Hidden, cmd.Columns...)
	case "reload":
		return s.Reload(ctx)
	default:
		return gerrors.NewContractError("INVALID_COMMAND", fmt.Sprintf("unknown command %q", cmd.Type))
	}
	s.broadcastGrid()
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	originHost, ok := s.checkOrigin(r)
	if !ok {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{originHost},
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade error")
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go client.writePump()
	go client.readPump()
}

// checkOrigin validates the request origin and returns its host.
func (s *Server) checkOrigin(r *http.Request) (string, bool) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return "", false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return "", false
	}

	if s.isAllowedOrigin(origin) {
		return originURL.Host, true
	}

	port := s.config.Server.Port
	allowedHosts := []string{
		fmt.Sprintf("%s:%d", s.config.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	}
	for _, allowed := range allowedHosts {
		if originURL.Host == allowed {
			return originURL.Host, true
		}
	}
	return "", false
}

func (s *Server) clientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (s *Server) runWebSocketHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case client := <-s.register:
			s.clientsMutex.Lock()
			s.clients[client.conn] = client
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Info(ctx, "Client connected", "total", count)

		case conn := <-s.unregister:
			s.clientsMutex.Lock()
			if client, ok := s.clients[conn]; ok {
				delete(s.clients, conn)
				close(client.send)
				s.logger.Info(ctx, "Client disconnected", "total", len(s.clients))
			}
			s.clientsMutex.Unlock()

		case message := <-s.broadcast:
			s.clientsMutex.Lock()
			for conn, client := range s.clients {
				select {
				case client.send <- message:
				default:
					// slow client
					delete(s.clients, conn)
					close(client.send)
					conn.Close(websocket.StatusPolicyViolation, "client too slow")
				}
			}
			s.clientsMutex.Unlock()
		}
	}
}

// readPump turns incoming messages into commands.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c.conn:
		case <-c.server.done:
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var cmd Command
		readCtx, readCancel := context.WithTimeout(ctx, pongWait)
		err := wsjson.Read(readCtx, c.conn, &cmd)
		readCancel()

		if err != nil {
			status := websocket.CloseStatus(err)
			if status == -1 && ctx.Err() == nil {
				c.server.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}

		if err := c.server.Apply(ctx, cmd); err != nil {
			if gerrors.IsRecoverable(err) {
				c.server.logger.Debug(ctx, "Command skipped", "type", cmd.Type, "error", err.Error())
			} else {
				c.server.logger.Warn(ctx, err, "Command failed",
					"type", cmd.Type, "error_type", string(gerrors.GetErrorType(err)))
			}
			c.reply(commandError(err))
		}
	}
}

// commandError is the reply sent to the client whose command failed.
func commandError(err error) UpdateMessage {
	return UpdateMessage{
		Type:      "error",
		Content:   err.Error(),
		Details:   gerrors.GetErrorContext(err),
		Timestamp: time.Now(),
	}
}

func (c *Client) reply(msg UpdateMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		c.server.logger.Debug(ctx, "Reply failed", "error", err.Error())
	}
}

// writePump pumps messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
