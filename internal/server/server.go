// Package server implements the territory server: a websocket hub for live
// clients and a read-mostly HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"kitten-defense/internal/database"
	"kitten-defense/internal/game"
	"kitten-defense/internal/protocol"
	"kitten-defense/internal/sim"
)

// Version is reported to clients in the welcome message.
const Version = "0.1.0"

// Server is the territory server.
type Server struct {
	cfg      Config
	reg      *game.Registry
	roster   *sim.Roster
	loop     *sim.Loop
	db       *database.DB
	hub      *Hub
	handlers *Handlers
	logger   *log.Logger

	router   *gin.Engine
	upgrader websocket.Upgrader
	server   *http.Server
}

// Config holds server configuration.
type Config struct {
	Addr            string
	MatchID         string
	LayoutID        string
	TickRateHz      int
	ClientRateLimit float64 // Messages per second per client
	ClientBurst     int
}

// Deps are the collaborators the server exposes over the network.
type Deps struct {
	Registry *game.Registry
	Roster   *sim.Roster
	Loop     *sim.Loop    // Optional, reports the current tick
	DB       *database.DB // Optional, enables history and ledger endpoints
	Hub      *Hub         // Optional, created if nil
	Logger   *log.Logger
}

// New creates a new server.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Registry == nil || deps.Roster == nil {
		return nil, errors.New("server needs a registry and a roster")
	}
	if cfg.ClientRateLimit <= 0 {
		cfg.ClientRateLimit = 20
	}
	if cfg.ClientBurst <= 0 {
		cfg.ClientBurst = 40
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	hub := deps.Hub
	if hub == nil {
		hub = NewHub(logger)
	}

	s := &Server{
		cfg:    cfg,
		reg:    deps.Registry,
		roster: deps.Roster,
		loop:   deps.Loop,
		db:     deps.DB,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
	s.handlers = NewHandlers(s)
	hub.onConnect = s.sendWelcome
	hub.onMessage = s.handlers.Handle
	hub.onDisconnect = func(c *Client) { s.roster.Forget(c.ID) }

	s.router = s.setupRouter()
	return s, nil
}

// Handler returns the HTTP handler serving the API and the websocket.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start starts the hub and serves HTTP until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.router,
	}

	s.logger.Printf("Kitten Defense territory server")
	s.logger.Printf("  Address: http://localhost%s", s.cfg.Addr)
	s.logger.Printf("  Match: %s (layout %s)", s.cfg.MatchID, s.cfg.LayoutID)
	s.logger.Printf("  WebSocket: ws://localhost%s/ws", s.cfg.Addr)

	go s.hub.Run()

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down HTTP and the hub. The database is owned by
// the caller.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.hub.Stop()
	return err
}

// currentTick returns the loop's tick, or 0 without a loop.
func (s *Server) currentTick() uint64 {
	if s.loop == nil {
		return 0
	}
	return s.loop.Tick()
}

// handleWebSocket upgrades HTTP connections to WebSocket.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	limiter := rate.NewLimiter(rate.Limit(s.cfg.ClientRateLimit), s.cfg.ClientBurst)
	client := NewClient(s.hub, conn, limiter)
	s.hub.Register(client)

	// Start client goroutines
	go client.WritePump()
	go client.ReadPump()
}

// sendWelcome sends a welcome message to a new client.
func (s *Server) sendWelcome(client *Client) {
	cfg := s.reg.Config()
	payload := protocol.WelcomePayload{
		ServerVersion: Version,
		MatchID:       s.cfg.MatchID,
		LayoutID:      s.cfg.LayoutID,
		TickRateHz:    s.cfg.TickRateHz,
		CaptureTime:   cfg.CaptureTime,
		Radius:        cfg.InfluenceRadius,
	}
	msg, _ := protocol.NewMessage(protocol.TypeWelcome, payload)
	client.Send(msg)
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	logger *log.Logger

	// Registered clients
	clients map[*Client]bool

	// Register requests
	register chan *Client

	// Unregister requests
	unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once

	onConnect    func(*Client)
	onMessage    func(*Client, *protocol.Message)
	onDisconnect func(*Client)

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Printf("Client %s connected", client.ID)

			if h.onConnect != nil {
				h.onConnect(client)
			}

		case client := <-h.unregister:
			h.handleDisconnect(client)

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Dispatch handles a message on the calling goroutine. Each client's
// ReadPump calls it, so one client's messages are handled in arrival order.
func (h *Hub) Dispatch(client *Client, msg *protocol.Message) {
	if h.onMessage != nil {
		h.onMessage(client, msg)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleDisconnect handles a client disconnecting.
func (h *Hub) handleDisconnect(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	h.logger.Printf("Client %s disconnected", client.ID)
	if h.onDisconnect != nil {
		h.onDisconnect(client)
	}
	client.close()
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(msgType protocol.MessageType, payload interface{}) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		h.logger.Printf("Failed to build %s broadcast: %v", msgType, err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.Send(msg)
	}
}

// Client represents a connected WebSocket client.
type Client struct {
	ID string

	hub     *Hub
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan *protocol.Message
	closed bool
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 65536
)

// NewClient creates a new client.
func NewClient(hub *Hub, conn *websocket.Conn, limiter *rate.Limiter) *Client {
	return &Client{
		ID:      uuid.New().String(),
		hub:     hub,
		conn:    conn,
		limiter: limiter,
		send:    make(chan *protocol.Message, 256),
	}
}

// Send queues a message to be sent to the client.
func (c *Client) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Channel full, client too slow
		go c.hub.Unregister(c)
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump pumps messages from the WebSocket to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.logger.Printf("Invalid message from %s: %v", c.ID, err)
			c.sendError("", protocol.ErrCodeInvalidPayload, "malformed message")
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.sendError(msg.ID, protocol.ErrCodeRateLimited, "too many messages")
			continue
		}

		c.hub.Dispatch(c, &msg)
	}
}

func (c *Client) sendError(msgID string, code protocol.ErrorCode, message string) {
	msg, err := protocol.NewReply(msgID, protocol.TypeError, protocol.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.Send(msg)
}

// WritePump pumps messages from the hub to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.hub.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
