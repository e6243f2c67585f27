// Package dashboard provides a real-time WebSocket view of the document.
//
// The server broadcasts epic and story changes, plus running statistics, to
// connected WebSocket clients whenever the document file changes on disk.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/mschirtzinger/jira/internal/db"
	"github.com/mschirtzinger/jira/internal/models"
)

// MessageType defines the type of dashboard message
type MessageType string

const (
	// MessageTypeEpicUpdate indicates an epic was created, updated, or deleted
	MessageTypeEpicUpdate MessageType = "epic_update"

	// MessageTypeStoryUpdate indicates a story was created, updated, or deleted
	MessageTypeStoryUpdate MessageType = "story_update"

	// MessageTypeStats indicates updated document statistics
	MessageTypeStats MessageType = "stats"

	// MessageTypeError indicates the document could not be read
	MessageTypeError MessageType = "error"
)

// Message represents a dashboard broadcast message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Reader is the document source the server and dashboard read from.
type Reader interface {
	ReadDB() (models.DBState, error)
}

// Server manages WebSocket connections and broadcasts dashboard messages
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server
	source   Reader

	// WebSocket client management
	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	// Message broadcasting
	broadcast chan Message

	// Lifecycle management
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger *log.Logger
}

// Config holds server configuration
type Config struct {
	// Host to bind (default: 127.0.0.1)
	Host string

	// Port to listen on (default: 8080, 0 picks a free port)
	Port int

	// Debounce is the quiet period before a file change is processed
	Debounce time.Duration

	// Logger for server activity (default: stderr logger)
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:     "127.0.0.1",
		Port:     8080,
		Debounce: 100 * time.Millisecond,
		Logger:   log.Default(),
	}
}

// NewServer creates a new dashboard WebSocket server. source may be nil, in
// which case /api/document is unavailable and the welcome message is empty.
func NewServer(config *Config, source Reader) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		source:    source,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start begins the HTTP server and WebSocket handler
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/document", s.handleDocument)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard server listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server. Calling it more than once is safe.
func (s *Server) Stop() error {
	var stopErr error
	s.stopOnce.Do(func() {
		s.logger.Println("Stopping dashboard server")

		s.cancel()

		s.clientsMu.Lock()
		for conn := range s.clients {
			_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
			delete(s.clients, conn)
		}
		s.clientsMu.Unlock()

		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("server shutdown error: %w", err)
				return
			}
		}

		s.wg.Wait()
		s.logger.Println("Dashboard server stopped")
	})
	return stopErr
}

// Broadcast sends a message to all connected clients
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
		return
	default:
		s.logger.Println("Warning: broadcast channel full, dropping message")
	}
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()

			// Send outside the read lock so a slow client cannot block
			// connects and disconnects.
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					s.logger.Printf("Failed to send to client: %v", err)
					s.removeClient(conn)
				}
			}
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	clientCount := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Printf("Client connected (total: %d)", clientCount)

	// New clients start from the current statistics.
	welcome := s.welcome()
	welcomeData, _ := json.Marshal(welcome)
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	_ = conn.Write(ctx, websocket.MessageText, welcomeData)
	cancel()

	go s.readLoop(conn)
}

func (s *Server) welcome() Message {
	msg := Message{Type: MessageTypeStats, Timestamp: time.Now()}
	if s.source == nil {
		return msg
	}
	doc, err := s.source.ReadDB()
	if err != nil {
		s.logger.Printf("Failed to read document for welcome: %v", err)
		return msg
	}
	if data, err := json.Marshal(ComputeStats(doc)); err == nil {
		msg.Data = data
	}
	return msg
}

// readLoop keeps the connection alive until the client goes away.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)

	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
		// Client messages are ignored
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		clientCount := len(s.clients)
		s.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("Client disconnected (total: %d)", clientCount)
	} else {
		s.clientsMu.Unlock()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	clientCount := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"clients": clientCount,
	})
}

// handleDocument serves the current document in its JSON file format.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		http.Error(w, "no document source", http.StatusNotFound)
		return
	}

	doc, err := s.source.ReadDB()
	if err != nil {
		s.logger.Printf("Failed to read document: %v", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	data, err := db.JSONCodec{}.Marshal(doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Jira Dashboard</title>
</head>
<body>
    <h1>Jira Dashboard Server</h1>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Current document: <a href="/api/document">/api/document</a></p>
    <p>Health check: <a href="/health">/health</a></p>
    <p>Connect a WebSocket client to receive real-time epic and story updates.</p>
</body>
</html>`, r.Host)
}

// GetAddr returns the server's listening address
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the current number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
