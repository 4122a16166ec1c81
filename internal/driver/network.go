package driver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"kitten-defense/internal/protocol"
)

// ErrNotConnected is returned when sending without a connection.
var ErrNotConnected = errors.New("not connected")

// Network handles WebSocket communication with the territory server.
type Network struct {
	conn     *websocket.Conn
	sendChan chan *protocol.Message
	done     chan struct{}
	mu       sync.Mutex
	logger   *log.Logger

	// Callbacks
	OnMessage    func(*protocol.Message)
	OnDisconnect func(error)

	connected bool
}

// NewNetwork creates a new network client.
func NewNetwork(logger *log.Logger) *Network {
	if logger == nil {
		logger = log.Default()
	}
	return &Network{
		sendChan: make(chan *protocol.Message, 64),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// WebSocketURL turns a server address into the websocket endpoint URL.
// Full ws:// or wss:// URLs are used as given.
func WebSocketURL(serverAddr string) string {
	if strings.HasPrefix(serverAddr, "ws://") || strings.HasPrefix(serverAddr, "wss://") {
		if strings.HasSuffix(serverAddr, "/ws") {
			return serverAddr
		}
		return strings.TrimSuffix(serverAddr, "/") + "/ws"
	}
	serverAddr = strings.TrimPrefix(serverAddr, "http://")
	if strings.HasPrefix(serverAddr, "https://") {
		return "wss://" + strings.TrimSuffix(strings.TrimPrefix(serverAddr, "https://"), "/") + "/ws"
	}
	return "ws://" + strings.TrimSuffix(serverAddr, "/") + "/ws"
}

// Connect establishes a connection to the server.
func (n *Network) Connect(ctx context.Context, serverAddr string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	url := WebSocketURL(serverAddr)
	n.logger.Printf("Connecting to %s", url)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return err
	}

	n.conn = conn
	n.connected = true
	n.done = make(chan struct{})

	go n.readPump(conn)
	go n.writePump(conn, n.done)

	return nil
}

// Disconnect closes the connection.
func (n *Network) Disconnect() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.connected {
		return
	}

	n.connected = false
	close(n.done)

	if n.conn != nil {
		n.conn.Close(websocket.StatusNormalClosure, "")
		n.conn = nil
	}
}

// IsConnected returns true if connected to the server.
func (n *Network) IsConnected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.connected
}

// Send queues a message to be sent to the server.
func (n *Network) Send(msg *protocol.Message) error {
	if !n.IsConnected() {
		return ErrNotConnected
	}
	select {
	case n.sendChan <- msg:
	default:
		n.logger.Println("Send channel full, dropping message")
	}
	return nil
}

// SendPayload creates and sends a message with the given type and payload.
func (n *Network) SendPayload(msgType protocol.MessageType, payload interface{}) error {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return n.Send(msg)
}

// readPump reads messages from the WebSocket.
func (n *Network) readPump(conn *websocket.Conn) {
	var readErr error
	defer func() {
		n.mu.Lock()
		wasConnected := n.connected
		n.connected = false
		if wasConnected {
			close(n.done)
			n.conn = nil
		}
		n.mu.Unlock()

		if wasConnected && n.OnDisconnect != nil {
			n.OnDisconnect(readErr)
		}
	}()

	conn.SetReadLimit(65536)

	for {
		// No read timeout, pings detect dead connections
		msgType, data, err := conn.Read(context.Background())
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				readErr = err
			}
			return
		}

		// Only process text messages
		if msgType != websocket.MessageText {
			continue
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			n.logger.Printf("Failed to unmarshal message: %v", err)
			continue
		}

		if n.OnMessage != nil {
			n.OnMessage(&msg)
		}
	}
}

// writePump writes messages to the WebSocket.
func (n *Network) writePump(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case msg := <-n.sendChan:
			data, err := json.Marshal(msg)
			if err != nil {
				n.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err = conn.Write(ctx, websocket.MessageText, data)
			cancel()

			if err != nil {
				n.logger.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := conn.Ping(ctx)
			cancel()

			if err != nil {
				return
			}
		}
	}
}
