package ws

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"talky/contract"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/observability"
	"talky/sink"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Lifecycle is what the transport needs from the runtime.
type Lifecycle interface {
	Connect(ctx context.Context, username string, sink contract.EventSink) (domain.SessionID, error)
	Disconnect(ctx context.Context, id domain.SessionID)
	HandleMessage(ctx context.Context, id domain.SessionID, payload []byte) error
	Deliver(ctx context.Context, id domain.SessionID, e event.Event) error
	Stats() observability.ChatStats
}

type Options struct {
	AllowedOrigins       []string
	ConnectionBufferSize int
	DeliveryTimeout      time.Duration
	MaxMessageSize       int64
	ProtocolErrors       bool
}

// ChatServer upgrades HTTP requests to websocket sessions.
// Each session runs one reader (the calling goroutine) and one writer.
type ChatServer struct {
	log       *slog.Logger
	lifecycle Lifecycle
	upgrader  websocket.Upgrader
	opts      Options

	mu    sync.Mutex
	conns map[*connection]struct{}
}

func NewChatServer(log *slog.Logger, lifecycle Lifecycle, opts Options) *ChatServer {
	return &ChatServer{
		log:       log,
		lifecycle: lifecycle,
		upgrader:  makeUpgrader(opts.AllowedOrigins),
		opts:      opts,
		conns:     make(map[*connection]struct{}),
	}
}

func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}
	allowAll := len(originSet) == 0 || originSet["*"]

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// Handler exposes the websocket endpoint on / and /ws, and a health probe.
func (s *ChatServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.ServeWS)
	mux.HandleFunc("/ws", s.ServeWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	return mux
}

func (s *ChatServer) serveHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.lifecycle.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "sessions": stats.Sessions, "stats": stats})
}

// ServeWS runs one session until the transport closes.
// The username query parameter is accepted as is, empty included.
func (s *ChatServer) ServeWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := newConnection(s, conn)
	s.track(c)
	defer s.untrack(c)
	c.serve(r.Context(), username)
}

func (s *ChatServer) track(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *ChatServer) untrack(c *connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

// Shutdown asks every open session to close. http.Server.Shutdown does not
// see hijacked connections.
func (s *ChatServer) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.sink.Close()
	}
	s.log.Info("Websocket sessions closing", "count", len(s.conns))
}

type connection struct {
	server *ChatServer
	log    *slog.Logger
	conn   *websocket.Conn
	sink   *sink.SessionSink
	state  domain.SessionState
	id     domain.SessionID
}

func newConnection(server *ChatServer, conn *websocket.Conn) *connection {
	return &connection{
		server: server,
		log:    server.log,
		conn:   conn,
		sink:   sink.NewSessionSink(server.log, server.opts.ConnectionBufferSize, server.opts.DeliveryTimeout),
		state:  domain.Connecting,
	}
}

func (c *connection) transition(next domain.SessionState) {
	state, err := c.state.Transition(next)
	if err != nil {
		c.log.Error("Illegal session transition", "session_id", c.id, "from", c.state, "to", next)
		return
	}
	c.state = state
}

// serve owns the session from Connecting to Closed. A panic here only
// takes this session down.
func (c *connection) serve(parent context.Context, username string) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Session handler panicked", "session_id", c.id, "panic", r)
		}
		c.close(ctx)
		_ = c.conn.Close()
	}()

	id, err := c.server.lifecycle.Connect(ctx, username, c.sink)
	if err != nil {
		c.log.Error("Failed to register session", "username", username, "error", err)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "registration failed"),
			time.Now().Add(writeWait))
		return
	}
	c.id = id
	c.transition(domain.Active)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump(ctx)
	c.close(ctx)
	<-writerDone
}

// close removes the session from the registry before stopping its sink.
func (c *connection) close(ctx context.Context) {
	if c.state == domain.Closed {
		return
	}
	if c.state == domain.Active {
		c.server.lifecycle.Disconnect(ctx, c.id)
	}
	c.transition(domain.Closed)
	c.sink.Close()
}

// readPump processes frames in arrival order until the transport fails.
func (c *connection) readPump(ctx context.Context) {
	c.conn.SetReadLimit(c.server.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Websocket read error", "session_id", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := c.server.lifecycle.HandleMessage(ctx, c.id, payload); err != nil {
			c.reject(ctx, err)
		}
	}
}

// reject logs a dropped message, and tells the sender only when protocol errors are on.
func (c *connection) reject(ctx context.Context, err error) {
	switch {
	case goerrors.Is(err, errors.ErrRecipientNotFound):
		c.log.Debug("Private message dropped", "session_id", c.id, "error", err)
	case goerrors.Is(err, errors.ErrSummaryQueueFull):
		return
	default:
		c.log.Warn("Inbound message dropped", "session_id", c.id, "error", err)
	}

	if !c.server.opts.ProtocolErrors {
		return
	}
	if err := c.server.lifecycle.Deliver(ctx, c.id, event.NewError(err.Error(), time.Now().UTC())); err != nil {
		c.log.Debug("Protocol error not delivered", "session_id", c.id, "error", err)
	}
}

// writePump is the only goroutine writing frames on conn.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// Unblocks readPump when the write side fails first.
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case e := <-c.sink.Events():
			if err := c.write(e); err != nil {
				c.log.Debug("Websocket write failed", "session_id", c.id, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-c.sink.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *connection) write(e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Kind(), err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}
