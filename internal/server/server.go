// Package server hosts one grid over HTTP. Browsers receive the rendered
// table and drive it through a WebSocket; every change is pushed back to all
// connected clients as fresh grid HTML.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/templgrid/internal/config"
	"github.com/conneroisu/templgrid/internal/editor"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/conneroisu/templgrid/internal/grid"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/conneroisu/templgrid/internal/model"
	"github.com/conneroisu/templgrid/internal/pagination"
	"github.com/conneroisu/templgrid/internal/watcher"
)

// loadTimeout bounds how long a load waits for cell editors to resolve.
const loadTimeout = 10 * time.Second

// Client represents a WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// Server serves a grid with live updates.
type Server struct {
	config     *config.Config
	logger     logging.Logger
	grid       *grid.Grid
	watcher    *watcher.Watcher
	httpServer *http.Server

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn
	done         chan struct{}

	runOnce      sync.Once
	shutdownOnce sync.Once
	serverMutex  sync.RWMutex
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string                 `json:"type"`
	Target    string                 `json:"target,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// New builds the grid described by cfg, fills it from the record file when
// one is configured and loads it.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	store := model.NewRecordStore()
	if cfg.Data.File != "" {
		loaded, err := model.LoadFile(cfg.Data.File)
		if err != nil {
			return nil, err
		}
		store = loaded
	}

	g, err := NewGrid(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:     cfg,
		logger:     logger.WithComponent("server"),
		grid:       g,
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
	if err := s.load(ctx, cfg.Grid.Options); err != nil {
		g.Destroy()
		return nil, err
	}

	if cfg.Data.File != "" && cfg.Data.Watch {
		w, err := watcher.New(cfg.Data.File, cfg.Data.Debounce, logger)
		if err != nil {
			g.Destroy()
			return nil, err
		}
		w.OnChange(func(ctx context.Context, _ []watcher.ChangeEvent) error {
			return s.Reload(ctx)
		})
		s.watcher = w
	}
	return s, nil
}

// NewGrid builds a grid from the grid section of cfg. Without configured
// columns the columns are taken from the keys of the first record.
func NewGrid(cfg *config.Config, store *model.RecordStore, logger logging.Logger) (*grid.Grid, error) {
	area, err := pagination.ParseArea(cfg.Grid.PaginationArea)
	if err != nil {
		return nil, gerrors.WrapConfig(err, "INVALID_AREA", "invalid pagination area")
	}

	gridCfg := grid.DefaultConfig(headerFor(cfg, store))
	gridCfg.Model = store
	gridCfg.RowsPerPage = cfg.Grid.RowsPerPage
	gridCfg.PaginationArea = area
	gridCfg.Selection = cfg.Grid.Selection
	gridCfg.Logger = logger
	return grid.New(gridCfg)
}

func headerFor(cfg *config.Config, store *model.RecordStore) []grid.HeaderEntry {
	header := make([]grid.HeaderEntry, 0, len(cfg.Grid.Columns))
	for _, col := range cfg.Grid.Columns {
		header = append(header, grid.HeaderEntry{Name: col.Name, Value: col.Value})
	}
	if len(header) > 0 {
		return header
	}

	first, ok := store.Get(0)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		header = append(header, grid.HeaderEntry{Name: name})
	}
	return header
}

// Grid returns the hosted grid.
func (s *Server) Grid() *grid.Grid { return s.grid }

// Handler returns the HTTP routes wrapped in the server middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/grid", s.handleGrid)
	mux.HandleFunc("/", s.handleIndex)
	return s.addMiddleware(mux)
}

// Run starts the WebSocket hub and the record watcher.
func (s *Server) Run(ctx context.Context) error {
	var err error
	s.runOnce.Do(func() {
		go s.runWebSocketHub(ctx)
		if s.watcher != nil {
			err = s.watcher.Start(ctx)
		}
	})
	return err
}

// Start runs the server until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Run(ctx); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Serving grid", "addr", "http://"+addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return gerrors.WrapIO(err, "LISTEN_FAILED", "server error")
	}
	return nil
}

// Reload re-reads the record file, attaches it to the grid and loads it
// with the current options. Connected clients receive the new grid.
func (s *Server) Reload(ctx context.Context) error {
	if s.config.Data.File != "" {
		store, err := model.LoadFile(s.config.Data.File)
		if err != nil {
			return err
		}
		s.grid.SetModel(store)
		s.logger.Info(ctx, "Records reloaded", "rows", store.Len())
	}
	if err := s.load(ctx, nil); err != nil {
		return err
	}
	s.broadcastGrid()
	return nil
}

func (s *Server) load(ctx context.Context, options map[string]editor.Descriptor) error {
	f, err := s.grid.Load(ctx, options)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	_, err = f.Wait(waitCtx)
	return err
}

func (s *Server) broadcastGrid() {
	s.broadcastMessage(UpdateMessage{
		Type:      "grid",
		Target:    s.grid.ID(),
		Content:   s.grid.HTML(),
		Timestamp: time.Now(),
	})
}

func (s *Server) broadcastMessage(msg UpdateMessage) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to marshal message")
		return
	}

	select {
	case s.broadcast <- jsonData:
	case <-s.done:
	}
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")
		close(s.done)

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Stopping watcher")
			}
		}

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}

		s.grid.Destroy()
	})
	return shutdownErr
}
