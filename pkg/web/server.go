// Package web serves the read-only monitoring dashboard: a small JSON API
// plus a WebSocket feed of decoded session events. There is no
// configuration-write surface here; operators change behavior through the
// config file and the blocklist, not through the dashboard.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hytera-adk/hylink-adk/pkg/config"
	"github.com/hytera-adk/hylink-adk/pkg/hyt"
	"github.com/hytera-adk/hylink-adk/pkg/logger"
	"github.com/hytera-adk/hylink-adk/pkg/sessions"
)

// maxEventLog bounds the in-memory recent-events ring kept for the
// dashboard's event list and for new WebSocket clients' initial snapshot.
const maxEventLog = 500

// EventLogEntry is a JSON-friendly projection of a sessions.Event.
type EventLogEntry struct {
	ID      int64     `json:"id"`
	Service string    `json:"service"`
	From    string    `json:"from"`
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"` // "hyt" or "rtp"
	Summary string    `json:"summary"`
}

// WebSocketMessage is the envelope broadcast to every connected client.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WebSocketHub fans broadcast messages out to every registered client,
// dropping clients whose write fails rather than blocking the broadcaster.
type WebSocketHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
	logger     *logger.Logger
}

func newWebSocketHub(log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		logger:     log,
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.mu.Lock()
			hub.clients[client] = true
			hub.mu.Unlock()

		case client := <-hub.unregister:
			hub.mu.Lock()
			if _, ok := hub.clients[client]; ok {
				delete(hub.clients, client)
				if err := client.Close(); err != nil {
					hub.logger.Warn("failed to close websocket client", logger.Error(err))
				}
			}
			hub.mu.Unlock()

		case message := <-hub.broadcast:
			hub.mu.RLock()
			for client := range hub.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					delete(hub.clients, client)
					if err := client.Close(); err != nil {
						hub.logger.Warn("failed to close websocket client", logger.Error(err))
					}
				}
			}
			hub.mu.RUnlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server is the dashboard HTTP server. It reads from a *sessions.Manager
// and never mutates session or blocklist state.
type Server struct {
	config  *config.Config
	logger  *logger.Logger
	manager *sessions.Manager

	httpServer *http.Server
	hub        *WebSocketHub

	mu        sync.RWMutex
	eventLog  []EventLogEntry
	nextID    int64
	startTime time.Time
	version   string
	buildTime string
	running   bool
}

// NewServer builds a dashboard server around manager. It does not start
// anything until Start is called.
func NewServer(cfg *config.Config, log *logger.Logger, manager *sessions.Manager, version, buildTime string) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		config:    cfg,
		logger:    log.WithComponent("web"),
		manager:   manager,
		hub:       newWebSocketHub(log.WithComponent("web.hub")),
		eventLog:  make([]EventLogEntry, 0, maxEventLog),
		startTime: time.Now(),
		version:   version,
		buildTime: buildTime,
	}
}

// Start runs the dashboard until ctx is canceled or the HTTP server fails.
// A disabled server returns nil immediately.
func (s *Server) Start(ctx context.Context) error {
	if !s.config.Web.Enabled {
		s.logger.Info("dashboard disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("web: dashboard already running")
	}
	s.running = true
	s.mu.Unlock()

	go s.hub.run()
	go s.processEvents(ctx)

	router := s.setupRoutes()
	addr := fmt.Sprintf("%s:%d", s.config.Web.Host, s.config.Web.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: router}

	s.logger.Info("starting dashboard", logger.String("address", addr))

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down dashboard")
		return s.Stop()
	}
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() *mux.Router {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.corsMiddleware)
	api.Use(s.jsonMiddleware)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleSessions).Methods(http.MethodGet)
	api.HandleFunc("/blocklist", s.handleBlocklist).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/ws", s.handleWebSocket)

	return router
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.manager.Snapshot()
	connected := 0
	for _, up := range snap {
		if up {
			connected++
		}
	}

	s.mu.RLock()
	eventCount := len(s.eventLog)
	s.mu.RUnlock()

	response := map[string]interface{}{
		"uptime":           int(time.Since(s.startTime).Seconds()),
		"version":          s.version,
		"buildTime":        s.buildTime,
		"configuredPorts":  len(snap),
		"connectedPorts":   connected,
		"blockedRadios":    s.manager.Blocklist().Count(),
		"recentEventCount": eventCount,
	}
	s.writeJSON(w, response)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{"sessions": s.manager.Snapshot()})
}

func (s *Server) handleBlocklist(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{"blocked": s.manager.Blocklist().GetBlocked()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	events := make([]EventLogEntry, len(s.eventLog))
	copy(events, s.eventLog)
	s.mu.RUnlock()
	s.writeJSON(w, map[string]interface{}{"events": events})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", logger.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", logger.Error(err))
		return
	}

	s.logger.Debug("new websocket connection", logger.String("remote", r.RemoteAddr))
	s.hub.register <- conn
	defer func() { s.hub.unregister <- conn }()

	s.sendInitialSnapshot(conn)

	// The dashboard is read-only from the client's side; the only reason
	// to keep reading is to notice when the peer closes the connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) sendInitialSnapshot(conn *websocket.Conn) {
	s.mu.RLock()
	events := make([]EventLogEntry, len(s.eventLog))
	copy(events, s.eventLog)
	s.mu.RUnlock()

	msg := WebSocketMessage{Type: "snapshot", Data: map[string]interface{}{
		"sessions": s.manager.Snapshot(),
		"events":   events,
	}}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal snapshot", logger.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("failed to send initial snapshot", logger.Error(err))
	}
}

// processEvents drains the session manager's event channel, appending to
// the bounded event log and broadcasting each one to WebSocket clients.
func (s *Server) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-s.manager.Events():
			if !ok {
				return
			}
			s.recordEvent(e)
		}
	}
}

func (s *Server) recordEvent(e sessions.Event) {
	entry := EventLogEntry{
		Service: e.Service,
		At:      e.At,
	}
	if e.From != nil {
		entry.From = e.From.String()
	}
	if e.HYT != nil {
		entry.Kind = "hyt"
		entry.Summary = summarizeHYT(*e.HYT)
	} else if e.RTP != nil {
		entry.Kind = "rtp"
		entry.Summary = fmt.Sprintf("rtp seq=%d ssrc=%d", e.RTP.Sequence, e.RTP.SSRC)
	}

	s.mu.Lock()
	s.nextID++
	entry.ID = s.nextID
	s.eventLog = append(s.eventLog, entry)
	if len(s.eventLog) > maxEventLog {
		s.eventLog = s.eventLog[len(s.eventLog)-maxEventLog:]
	}
	s.mu.Unlock()

	s.broadcast("event", entry)
}

func (s *Server) broadcast(messageType string, data interface{}) {
	msg := WebSocketMessage{Type: messageType, Data: data}
	jsonData, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to marshal websocket message", logger.Error(err))
		return
	}
	select {
	case s.hub.broadcast <- jsonData:
	default:
		s.logger.Warn("websocket broadcast channel full, dropping message", logger.String("message_type", messageType))
	}
}

func summarizeHYT(msg hyt.Message) string {
	switch m := msg.(type) {
	case *hyt.Syn:
		return fmt.Sprintf("syn seq=%d", m.Seq)
	case *hyt.SynAck:
		return fmt.Sprintf("syn-ack seq=%d", m.Seq)
	case *hyt.Heartbeat:
		return fmt.Sprintf("heartbeat seq=%d", m.Seq)
	case *hyt.Ack:
		return fmt.Sprintf("ack seq=%d", m.Seq)
	case *hyt.FromRadio:
		return fmt.Sprintf("from-radio seq=%d radio=%d", m.Seq, m.Header.RadioID)
	default:
		return "unknown"
	}
}
