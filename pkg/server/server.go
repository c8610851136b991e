// Package server is the coordinator's edge: it terminates player websocket
// connections (pkg/wsconn), decodes/encodes the JSON wire protocol
// (pkg/wire), gates every proof-carrying submission on Groth16 verification
// (pkg/proof) before it ever reaches a room, and dispatches into
// pkg/room's per-table state machine: one long-lived Server owning a
// registry of rooms, a logger, and a database, driven by a websocket
// message loop rather than RPC service methods.
package server

import (
	"net/http"
	"sort"
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/vctt94/pokerbisonrelay/pkg/logging"
	"github.com/vctt94/pokerbisonrelay/pkg/proof"
	"github.com/vctt94/pokerbisonrelay/pkg/protoerr"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/wire"
	"github.com/vctt94/pokerbisonrelay/pkg/wsconn"
)

// Config holds the coordinator's process-wide configuration, the fields
// cmd/pokersrv/main.go fills in from flags.
type Config struct {
	RoomDefaults room.Config
}

// Server is the coordinator: one connection manager, one proof verifier,
// one room registry, shared across every room the process hosts.
type Server struct {
	log        slog.Logger
	logBackend *logging.LogBackend
	cfg        Config

	verifier  *proof.Verifier
	conns     *wsconn.Manager
	db        Database
	collector *ResourceCollector

	mu         sync.Mutex
	rooms      map[string]*room.Room
	playerRoom map[string]string // playerID -> roomID, for routing disconnects

	saveWg sync.WaitGroup
}

// NewServer wires a coordinator together from its already-constructed
// dependencies (verifier, database, resource collector) rather than
// constructing them itself.
func NewServer(cfg Config, logBackend *logging.LogBackend, db Database, verifier *proof.Verifier, collector *ResourceCollector) *Server {
	log := logBackend.Logger("SERVER")
	s := &Server{
		log:        log,
		logBackend: logBackend,
		cfg:        cfg,
		verifier:   verifier,
		db:         db,
		collector:  collector,
		rooms:      make(map[string]*room.Room),
		playerRoom: make(map[string]string),
	}
	s.conns = wsconn.NewManager(logBackend.Logger("WSCONN"))
	s.conns.OnMessage = s.handleMessage
	s.conns.OnDisconnect = s.handleDisconnect
	return s
}

// ServeWS upgrades an incoming HTTP request to a websocket connection and
// registers it under a fresh (or client-supplied) player ID.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		playerID = uuid.NewString()
	}

	if _, err := s.conns.Register(w, r, playerID); err != nil {
		s.log.Warnf("server: register %s: %v", playerID, err)
		return
	}

	s.send(playerID, wire.TypeConnected, wire.ConnectedPayload{PlayerID: playerID})
}

// Close shuts down persistence, waiting for in-flight async saves.
func (s *Server) Close() error {
	s.saveWg.Wait()
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// send encodes and delivers a single wire message to one player, logging
// (not panicking) on encode/delivery failure so one dead connection never
// breaks the caller.
func (s *Server) send(playerID string, t wire.Type, payload interface{}) {
	data, err := wire.Encode(t, payload)
	if err != nil {
		s.log.Errorf("server: encode %s for %s: %v", t, playerID, err)
		return
	}
	if err := s.conns.Send(playerID, data); err != nil {
		s.log.Debugf("server: send %s to %s: %v", t, playerID, err)
	}
}

func (s *Server) sendError(playerID string, code protoerr.Code, message string) {
	s.send(playerID, wire.TypeError, wire.ErrorPayload{Code: string(code), Message: message})
}

// broadcast delivers a wire message to every playerID in the list.
func (s *Server) broadcast(playerIDs []string, t wire.Type, payload interface{}) {
	data, err := wire.Encode(t, payload)
	if err != nil {
		s.log.Errorf("server: encode %s for broadcast: %v", t, err)
		return
	}
	s.conns.Broadcast(playerIDs, data)
}

func (s *Server) broadcastExcept(playerIDs []string, exceptID string, t wire.Type, payload interface{}) {
	data, err := wire.Encode(t, payload)
	if err != nil {
		s.log.Errorf("server: encode %s for broadcast: %v", t, err)
		return
	}
	s.conns.BroadcastExcept(playerIDs, exceptID, data)
}

// seatedPlayerIDs returns r's currently connected seats' player IDs in
// seat order, the recipient list every Callbacks.Broadcast call needs.
func seatedPlayerIDs(r *room.Room) []string {
	seats := r.Seats()
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatIndex < seats[j].SeatIndex })
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat.Connected {
			out = append(out, seat.PlayerID)
		}
	}
	return out
}

// getOrCreateRoom returns the room with roomID, or — when roomID is empty
// or unknown — creates a fresh one using the server's configured defaults,
// the way a lobby mints a new table on demand. The room's callbacks close
// over a pointer cell filled in immediately after construction, so Room
// never needs a callback setter of its own.
func (s *Server) getOrCreateRoom(roomID string) *room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID != "" {
		if r, ok := s.rooms[roomID]; ok {
			return r
		}
	}

	cfg := s.cfg.RoomDefaults
	cfg.ID = roomID

	var r *room.Room
	cb := room.Callbacks{
		Send: func(playerID string, msg interface{}) {
			t, payload, ok := eventToWire(r, msg)
			if !ok {
				s.log.Warnf("server: no wire translation for %T", msg)
				return
			}
			s.send(playerID, t, payload)
		},
		Broadcast: func(msg interface{}) {
			t, payload, ok := eventToWire(r, msg)
			if !ok {
				s.log.Warnf("server: no wire translation for %T", msg)
				return
			}
			s.broadcast(seatedPlayerIDs(r), t, payload)
			s.persistRoomAsync(r, string(t))
		},
		BroadcastExcept: func(exceptID string, msg interface{}) {
			t, payload, ok := eventToWire(r, msg)
			if !ok {
				s.log.Warnf("server: no wire translation for %T", msg)
				return
			}
			s.broadcastExcept(seatedPlayerIDs(r), exceptID, t, payload)
			s.persistRoomAsync(r, string(t))
		},
	}
	r = room.New(cfg, s.logBackend.Logger("ROOM"), cb)

	s.rooms[r.ID()] = r
	return r
}

func (s *Server) roomForPlayer(playerID string) (*room.Room, bool) {
	s.mu.Lock()
	roomID, ok := s.playerRoom[playerID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	r, ok := s.rooms[roomID]
	s.mu.Unlock()
	return r, ok
}

func (s *Server) handleDisconnect(playerID string) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		return
	}
	r.Disconnect(playerID)
	s.persistRoomAsync(r, "disconnect")
}

// roomJoinedPayload builds the snapshot sent back to a player on successful
// join_room.
func roomJoinedPayload(r *room.Room, playerID string, seatIndex int) wire.RoomJoinedPayload {
	cfg := r.Config()
	seats := r.Seats()
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatIndex < seats[j].SeatIndex })

	players := make([]wire.RoomPlayer, 0, len(seats))
	for _, seat := range seats {
		players = append(players, wire.RoomPlayer{
			PlayerID:  seat.PlayerID,
			Name:      seat.Name,
			SeatIndex: seat.SeatIndex,
			IsReady:   seat.IsReady,
			Stack:     wire.NewInt(seat.Stack()),
		})
	}

	return wire.RoomJoinedPayload{
		RoomID:    r.ID(),
		PlayerID:  playerID,
		SeatIndex: seatIndex,
		Players:   players,
		Config: wire.RoomConfig{
			MaxPlayers: cfg.MaxPlayers,
			SmallBlind: wire.NewInt(cfg.SmallBlind),
			BigBlind:   wire.NewInt(cfg.BigBlind),
		},
	}
}

