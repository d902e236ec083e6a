package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/draftarena/engine/internal/draft/events"
)

// ConnectionConfig tunes the WebSocket fan-out.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the settings used in production.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendQueueSize:   64,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

// ConnectionManager fans engine events out to per-draft WebSocket
// subscribers. It implements events.Sink: Publish enqueues onto an internal
// channel and never blocks the engine.
type ConnectionManager struct {
	config   ConnectionConfig
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[*connection]struct{}

	broadcastCh chan events.Event
}

type connection struct {
	userID  string
	draftID uuid.UUID
	conn    *websocket.Conn
	send    chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (c *connection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		subscribers: make(map[uuid.UUID]map[*connection]struct{}),
		broadcastCh: make(chan events.Event, 1024),
	}
}

var _ events.Sink = (*ConnectionManager)(nil)

// Publish implements events.Sink. Events are dropped rather than blocking
// when the broadcast queue is full.
func (cm *ConnectionManager) Publish(_ context.Context, event events.Event) {
	select {
	case cm.broadcastCh <- event:
	default:
		log.Warn().
			Str("draft_id", event.DraftID.String()).
			Str("event_type", string(event.Type)).
			Msg("broadcast queue full; dropping event")
	}
}

// Start processes broadcasts until the context ends.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("websocket connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("websocket connection manager shutting down")
			cm.closeAll()
			return
		case event := <-cm.broadcastCh:
			cm.broadcast(event)
		}
	}
}

// Subscribe upgrades the request and registers the client for the draft's
// events.
func (cm *ConnectionManager) Subscribe(w http.ResponseWriter, r *http.Request, userID string, draftID uuid.UUID) error {
	ws, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade connection: %w", err)
	}

	c := &connection{
		userID:  userID,
		draftID: draftID,
		conn:    ws,
		send:    make(chan []byte, cm.config.SendQueueSize),
		done:    make(chan struct{}),
	}

	cm.mu.Lock()
	if cm.subscribers[draftID] == nil {
		cm.subscribers[draftID] = make(map[*connection]struct{})
	}
	cm.subscribers[draftID][c] = struct{}{}
	cm.mu.Unlock()

	log.Info().
		Str("draft_id", draftID.String()).
		Str("user_id", userID).
		Msg("websocket subscriber connected")

	go cm.writePump(c)
	go cm.readPump(c)
	return nil
}

func (cm *ConnectionManager) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal broadcast event")
		return
	}

	cm.mu.RLock()
	conns := make([]*connection, 0, len(cm.subscribers[event.DraftID]))
	for c := range cm.subscribers[event.DraftID] {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		select {
		case c.send <- data:
		default:
			// Slow client; evict rather than stall the fan-out.
			log.Warn().
				Str("draft_id", c.draftID.String()).
				Str("user_id", c.userID).
				Msg("evicting slow websocket subscriber")
			cm.remove(c)
		}
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (cm *ConnectionManager) writePump(c *connection) {
	ticker := time.NewTicker(cm.config.PingInterval)
	defer func() {
		ticker.Stop()
		cm.remove(c)
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cm.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cm.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames; observers are read-only. Its real job
// is detecting the close handshake.
func (cm *ConnectionManager) readPump(c *connection) {
	defer cm.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (cm *ConnectionManager) remove(c *connection) {
	cm.mu.Lock()
	if conns, ok := cm.subscribers[c.draftID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(cm.subscribers, c.draftID)
		}
	}
	cm.mu.Unlock()
	c.shutdown()
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	var all []*connection
	for draftID, conns := range cm.subscribers {
		for c := range conns {
			all = append(all, c)
		}
		delete(cm.subscribers, draftID)
	}
	cm.mu.Unlock()

	for _, c := range all {
		c.shutdown()
	}
}
