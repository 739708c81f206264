package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adityavk/nsescreener/internal/universe"
	"github.com/adityavk/nsescreener/pkg/logger"
)

// ProgressEvent is one pipeline progress update pushed to dashboard
// clients
type ProgressEvent struct {
	Stage string    `json:"stage"`
	Done  int       `json:"done"`
	Total int       `json:"total"`
	At    time.Time `json:"at"`
}

// RefreshStream broadcasts universe refresh progress over websockets.
// It subscribes to the orchestrator once and fans events out to every
// connected client; a slow client is dropped rather than blocking the
// pipeline.
type RefreshStream struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan ProgressEvent
}

// NewRefreshStream creates a stream and wires it to the orchestrator
func NewRefreshStream(orch *universe.Orchestrator, log *logger.Logger) *RefreshStream {
	s := &RefreshStream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboard is served from a different origin in development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*websocket.Conn]chan ProgressEvent),
	}

	orch.OnProgress(func(stage string, done, total int) {
		s.broadcast(ProgressEvent{
			Stage: stage,
			Done:  done,
			Total: total,
			At:    time.Now(),
		})
	})

	return s
}

// Handle upgrades the connection and streams progress events until the
// client disconnects
func (s *RefreshStream) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	events := make(chan ProgressEvent, 16)

	s.mu.Lock()
	s.clients[conn] = events
	s.mu.Unlock()

	s.logger.WithField("remote", r.RemoteAddr).Debug("Refresh stream client connected")

	// Reader goroutine detects disconnects; clients never send data
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.remove(conn)
				return
			}
		}
	}()

	for event := range events {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			s.remove(conn)
			return
		}
	}
}

// broadcast sends an event to all connected clients
func (s *RefreshStream) broadcast(event ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn, events := range s.clients {
		select {
		case events <- event:
		default:
			// Client is not keeping up
			delete(s.clients, conn)
			close(events)
			conn.Close()
		}
	}
}

// remove drops one client and closes its connection
func (s *RefreshStream) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if events, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(events)
	}
	conn.Close()
}
