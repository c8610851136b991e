package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/server/internal/db"
)

// Database is the persistence surface the coordinator depends on, kept as
// an interface so tests can stub it without a real SQLite file.
type Database interface {
	SaveRoom(room *db.RoomState, seats []*db.SeatState) error
	LoadRoom(roomID string) (*db.RoomState, []*db.SeatState, error)
	DeleteRoom(roomID string) error
	AllRoomIDs() ([]string, error)
	Close() error
}

// NewDatabase opens a SQLite-backed Database at dbPath, creating the parent
// directory if needed.
func NewDatabase(dbPath string) (Database, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("server: create database directory: %w", err)
		}
	}
	return db.NewDB(dbPath)
}

// roomStateFor builds the persistable snapshot of a room and its seats.
func roomStateFor(r *room.Room) (*db.RoomState, []*db.SeatState) {
	cfg := r.Config()
	seats := r.Seats()

	seatStates := make([]*db.SeatState, 0, len(seats))
	for _, s := range seats {
		seatStates = append(seatStates, &db.SeatState{
			PlayerID:  s.PlayerID,
			RoomID:    cfg.ID,
			SeatIndex: s.SeatIndex,
			Name:      s.Name,
			IsReady:   s.IsReady,
			Connected: s.Connected,
			Stack:     s.Stack(),
		})
	}

	return &db.RoomState{
		ID:            cfg.ID,
		HostID:        cfg.HostID,
		MinPlayers:    cfg.MinPlayers,
		MaxPlayers:    cfg.MaxPlayers,
		SmallBlind:    cfg.SmallBlind,
		BigBlind:      cfg.BigBlind,
		StartingChips: cfg.StartingChips,
		Phase:         r.Phase().String(),
	}, seatStates
}

// persistRoomAsync saves a room's current snapshot in the background,
// fire-and-forget, so a slow disk write never blocks a hand in progress.
func (s *Server) persistRoomAsync(r *room.Room, reason string) {
	if s.db == nil {
		return
	}
	s.saveWg.Add(1)
	go func() {
		defer s.saveWg.Done()
		state, seats := roomStateFor(r)
		if err := s.db.SaveRoom(state, seats); err != nil {
			s.log.Errorf("server: persist room %s (%s): %v", state.ID, reason, err)
		}
	}()
}
