// Package wsconn is the connection manager & wire router of spec §4.12:
// it maintains the playerId<->connection mapping, exposes send/broadcast/
// broadcastExcept, and runs the heartbeat that terminates sessions missing
// two consecutive pings. Grounded on gorilla/websocket usage the way
// leanlp-BTC-coinjoin's internal/api/websocket.go Hub does it (an upgrader,
// a registry guarded by a mutex, a goroutine per connection pumping reads
// to detect disconnects) adapted from a broadcast-only dashboard hub into
// a full per-connection request/response router keyed by player ID.
package wsconn

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/decred/slog"
)

// Upgrader is the shared gorilla/websocket upgrader used to accept new
// player connections. CheckOrigin is permissive by default since the
// coordinator is not a browser-hosted service; callers may replace it.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeTimeout     = 10 * time.Second
	pingInterval     = 45 * time.Second
	pongWait         = 2*pingInterval + 15*time.Second
	missedPingsLimit = 2
)

// Manager maintains playerId<->connection mappings for every live
// connection and runs each connection's heartbeat and read pump.
type Manager struct {
	mu    sync.RWMutex
	byID  map[string]*Conn
	log   slog.Logger

	// OnDisconnect is invoked (outside the manager's lock) whenever a
	// connection is removed, so a room can treat it as an immediate
	// forfeit per spec §4.10.
	OnDisconnect func(playerID string)

	// OnMessage is invoked for every inbound text frame, with the
	// sending player's ID.
	OnMessage func(playerID string, data []byte)
}

// NewManager constructs an empty connection manager.
func NewManager(log slog.Logger) *Manager {
	return &Manager{
		byID: make(map[string]*Conn),
		log:  log,
	}
}

// Conn wraps one player's live websocket connection.
type Conn struct {
	playerID string
	ws       *websocket.Conn
	writeMu  sync.Mutex

	missedPings int
	closed      bool
	closeMu     sync.Mutex
}

// Register upgrades an HTTP request to a websocket connection, assigns it
// to playerID (replacing any prior connection for the same player — a
// reconnect implicitly drops the stale socket), and starts its heartbeat
// and read pump.
func (m *Manager) Register(w http.ResponseWriter, r *http.Request, playerID string) (*Conn, error) {
	ws, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("wsconn: upgrade: %w", err)
	}

	c := &Conn{playerID: playerID, ws: ws}

	m.mu.Lock()
	if old, ok := m.byID[playerID]; ok {
		old.close()
	}
	m.byID[playerID] = c
	m.mu.Unlock()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		c.closeMu.Lock()
		c.missedPings = 0
		c.closeMu.Unlock()
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go m.readPump(c)
	go m.heartbeat(c)

	return c, nil
}

func (m *Manager) readPump(c *Conn) {
	defer m.remove(c)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.log.Warnf("wsconn: read error for %s: %v", c.playerID, err)
			}
			return
		}
		if m.OnMessage != nil {
			m.OnMessage(c.playerID, data)
		}
	}
}

func (m *Manager) heartbeat(c *Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.closeMu.Lock()
		if c.closed {
			c.closeMu.Unlock()
			return
		}
		c.missedPings++
		missed := c.missedPings
		c.closeMu.Unlock()

		if missed > missedPingsLimit {
			m.log.Infof("wsconn: %s missed %d pings, closing", c.playerID, missed)
			m.remove(c)
			return
		}

		c.writeMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := c.ws.WriteMessage(websocket.PingMessage, nil)
		c.writeMu.Unlock()
		if err != nil {
			m.remove(c)
			return
		}
	}
}

func (m *Manager) remove(c *Conn) {
	m.mu.Lock()
	current, ok := m.byID[c.playerID]
	if ok && current == c {
		delete(m.byID, c.playerID)
	}
	m.mu.Unlock()

	c.close()

	if ok && current == c && m.OnDisconnect != nil {
		m.OnDisconnect(c.playerID)
	}
}

func (c *Conn) close() {
	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		return
	}
	c.closed = true
	c.closeMu.Unlock()
	c.ws.Close()
}

// Send writes a single text frame to one player. Returns an error (not a
// panic) if the player has no live connection — the caller decides
// whether that is a protoerr.NotConnected condition.
func (m *Manager) Send(playerID string, data []byte) error {
	m.mu.RLock()
	c, ok := m.byID[playerID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("wsconn: no connection for player %s", playerID)
	}
	return c.write(data)
}

// Broadcast writes a text frame to every player in playerIDs, continuing
// past individual write failures (logged, not returned) so one dead
// connection cannot block delivery to the rest of the room.
func (m *Manager) Broadcast(playerIDs []string, data []byte) {
	for _, id := range playerIDs {
		if err := m.Send(id, data); err != nil {
			m.log.Debugf("wsconn: broadcast to %s: %v", id, err)
		}
	}
}

// BroadcastExcept is Broadcast, skipping exceptPlayerID.
func (m *Manager) BroadcastExcept(playerIDs []string, exceptPlayerID string, data []byte) {
	for _, id := range playerIDs {
		if id == exceptPlayerID {
			continue
		}
		if err := m.Send(id, data); err != nil {
			m.log.Debugf("wsconn: broadcast to %s: %v", id, err)
		}
	}
}

// IsConnected reports whether playerID currently has a live connection.
func (m *Manager) IsConnected(playerID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[playerID]
	return ok
}

func (c *Conn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
