package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/oscbank/oscbank-go/pkg/oscbank"
)

const (
	// clientSendBuffer bounds the per-client outbound queue; full queues
	// drop frames rather than stall the dispatch loop.
	clientSendBuffer = 32

	// controlBuffer bounds the queue of decoded client commands awaiting
	// the host loop.
	controlBuffer = 16

	pingInterval  = 30 * time.Second
	writeDeadline = 10 * time.Second
	shutdownGrace = 5 * time.Second
)

// Config holds monitor server configuration.
type Config struct {
	Addr        string // listen address, e.g. ":8780"
	Name        string // friendly server name sent in the hello message
	Path        string // WebSocket route, default /stream
	Oscillators uint32 // bank size announced to clients
}

// Server broadcasts dispatch results to WebSocket monitor clients and feeds
// their control commands back to the host loop.
type Server struct {
	config   Config
	serverID string

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	clients   map[string]*client
	clientsMu sync.RWMutex

	controls chan Control

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// client is one connected monitor.
type client struct {
	id       string
	conn     *websocket.Conn
	sendChan chan interface{}
	done     chan struct{}

	mu   sync.Mutex
	half bool
}

// envelope is the JSON message wrapper shared with clients.
type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// helloPayload announces the server to a new client.
type helloPayload struct {
	ServerID    string `json:"server_id"`
	Name        string `json:"name"`
	Oscillators uint32 `json:"oscillators"`
}

// New creates a monitor server. Call Start to begin serving.
func New(config Config) *Server {
	if config.Path == "" {
		config.Path = "/stream"
	}
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Monitor sockets serve trusted local networks only.
				return true
			},
		},
		clients:  make(map[string]*client),
		controls: make(chan Control, controlBuffer),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(config.Path, s.handleWebSocket)
	return s
}

// Handler exposes the server's routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Controls delivers decoded freq/pause/resume commands to the host loop.
func (s *Server) Controls() <-chan Control { return s.controls }

// ClientCount reports the number of connected monitors.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Start runs the HTTP server and blocks until Stop is called or the
// listener fails.
func (s *Server) Start() error {
	log.Printf("Monitor server starting: %s (ID: %s)", s.config.Name, s.serverID)

	s.httpServer = &http.Server{
		Addr:    s.config.Addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	log.Printf("Monitor WebSocket listening on %s%s", s.config.Addr, s.config.Path)

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Monitor server shutting down...")
	case err := <-errChan:
		log.Printf("Monitor HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	s.closeClients()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("Monitor HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Monitor server stopped")

	if serverErr != nil {
		return fmt.Errorf("monitor HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop asks Start to shut down. Safe to call multiple times.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// closeClients force-closes every connection so reader loops unblock during
// shutdown.
func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

// Broadcast fans one dispatch result out to every connected monitor. The
// float32 frame is encoded once and shared; the binary16 variant is encoded
// only if some client asked for it. Slow clients drop frames instead of
// stalling the dispatch loop.
func (s *Server) Broadcast(u oscbank.Uniforms, samples []float32) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	if len(s.clients) == 0 {
		return
	}

	var full, half []byte
	for _, c := range s.clients {
		c.mu.Lock()
		wantHalf := c.half
		c.mu.Unlock()

		var frame []byte
		var err error
		if wantHalf {
			if half == nil {
				if half, err = EncodeFrame(FrameFloat16, u, samples); err != nil {
					log.Printf("Encoding binary16 frame: %v", err)
					continue
				}
			}
			frame = half
		} else {
			if full == nil {
				if full, err = EncodeFrame(FrameFloat32, u, samples); err != nil {
					log.Printf("Encoding frame: %v", err)
					continue
				}
			}
			frame = full
		}
		if err := s.send(c, frame); err != nil {
			log.Printf("Dropping frame for %s: %v", c.id, err)
		}
	}
}

// handleWebSocket upgrades a monitor connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	log.Printf("New monitor connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection registers a client, greets it, and reads its commands
// until the socket closes.
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting monitor connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	c := &client{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan interface{}, clientSendBuffer),
		done:     make(chan struct{}),
	}

	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		s.clientsMu.Unlock()
		close(c.done)
		log.Printf("Monitor disconnected: %s", c.id)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c)
	}()

	hello := envelope{
		Type: "server/hello",
		Payload: helloPayload{
			ServerID:    s.serverID,
			Name:        s.config.Name,
			Oscillators: s.config.Oscillators,
		},
	}
	if err := s.send(c, hello); err != nil {
		log.Printf("Error sending hello to %s: %v", c.id, err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Monitor read error: %v", err)
			}
			break
		}
		s.handleControl(c, data)
	}
}

// handleControl decodes one client command. Half-precision toggles apply to
// the requesting client; everything else is queued for the host loop.
func (s *Server) handleControl(c *client, data []byte) {
	var ctrl Control
	if err := json.Unmarshal(data, &ctrl); err != nil {
		log.Printf("Bad control from %s: %v", c.id, err)
		return
	}
	if ctrl.Action == ActionHalf {
		if args, ok := ctrl.Args.(HalfArgs); ok {
			c.mu.Lock()
			c.half = args.Enabled
			c.mu.Unlock()
		}
		return
	}
	select {
	case s.controls <- ctrl:
	default:
		log.Printf("Control queue full, dropping %q from %s", ctrl.Action, c.id)
	}
}

// clientWriter owns all writes on the connection: queued frames, JSON
// messages, and keepalive pings.
func (s *Server) clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.sendChan:
			switch v := msg.(type) {
			case []byte:
				c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := c.conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					log.Printf("Error writing frame to %s: %v", c.id, err)
					c.conn.Close()
					return
				}
			default:
				data, err := json.Marshal(v)
				if err != nil {
					log.Printf("Error marshaling message for %s: %v", c.id, err)
					continue
				}
				c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Printf("Error writing message to %s: %v", c.id, err)
					c.conn.Close()
					return
				}
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// send queues a message for the client's writer without blocking.
func (s *Server) send(c *client, msg interface{}) error {
	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}
