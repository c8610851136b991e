// Package db persists room and seat state to SQLite so a restarted
// coordinator process can restore in-flight rooms without depending on any
// connected client. This covers process recovery of room bookkeeping, not
// player reconnection mid-hand.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RoomState is the persistent snapshot of one room's lobby and lifecycle
// state, saved after every state-changing event.
type RoomState struct {
	ID            string
	HostID        string
	MinPlayers    int
	MaxPlayers    int
	SmallBlind    int64
	BigBlind      int64
	StartingChips int64
	Phase         string
	Dealer        int
	CreatedAt     string
	LastAction    string
}

// SeatState is the persistent snapshot of one seated player at a room.
type SeatState struct {
	PlayerID  string
	RoomID    string
	SeatIndex int
	Name      string
	IsReady   bool
	Connected bool
	Stack     int64
	LastAction string
}

// DB is the SQLite-backed store.
type DB struct {
	*sql.DB
}

// NewDB opens (creating if needed) the SQLite database at path and ensures
// its schema exists.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", path, err)
	}
	if err := createTables(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn}, nil
}

func createTables(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			host_id TEXT NOT NULL,
			min_players INTEGER NOT NULL,
			max_players INTEGER NOT NULL,
			small_blind INTEGER NOT NULL,
			big_blind INTEGER NOT NULL,
			starting_chips INTEGER NOT NULL,
			phase TEXT NOT NULL DEFAULT 'WAITING',
			dealer INTEGER DEFAULT -1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_action TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("db: create rooms table: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS seats (
			player_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			seat_index INTEGER NOT NULL,
			name TEXT NOT NULL,
			is_ready BOOLEAN NOT NULL DEFAULT FALSE,
			connected BOOLEAN NOT NULL DEFAULT TRUE,
			stack INTEGER NOT NULL DEFAULT 0,
			last_action TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (room_id, player_id),
			FOREIGN KEY (room_id) REFERENCES rooms(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("db: create seats table: %w", err)
	}
	return nil
}

// SaveRoom atomically persists a room and the full set of its seats,
// replacing whatever was previously stored for that room.
func (db *DB) SaveRoom(room *RoomState, seats []*SeatState) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO rooms (
			id, host_id, min_players, max_players, small_blind, big_blind,
			starting_chips, phase, dealer, last_action
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		room.ID, room.HostID, room.MinPlayers, room.MaxPlayers,
		room.SmallBlind, room.BigBlind, room.StartingChips, room.Phase,
		room.Dealer, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("db: save room %s: %w", room.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM seats WHERE room_id = ?", room.ID); err != nil {
		return fmt.Errorf("db: clear seats for room %s: %w", room.ID, err)
	}

	for _, s := range seats {
		_, err := tx.Exec(`
			INSERT INTO seats (
				player_id, room_id, seat_index, name, is_ready, connected,
				stack, last_action
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			s.PlayerID, room.ID, s.SeatIndex, s.Name, s.IsReady, s.Connected,
			s.Stack, time.Now(),
		)
		if err != nil {
			return fmt.Errorf("db: save seat %s in room %s: %w", s.PlayerID, room.ID, err)
		}
	}

	return tx.Commit()
}

// LoadRoom loads a room's persisted state and its seats.
func (db *DB) LoadRoom(roomID string) (*RoomState, []*SeatState, error) {
	var rs RoomState
	err := db.QueryRow(`
		SELECT id, host_id, min_players, max_players, small_blind, big_blind,
		       starting_chips, phase, dealer, created_at, last_action
		FROM rooms WHERE id = ?
	`, roomID).Scan(
		&rs.ID, &rs.HostID, &rs.MinPlayers, &rs.MaxPlayers, &rs.SmallBlind,
		&rs.BigBlind, &rs.StartingChips, &rs.Phase, &rs.Dealer, &rs.CreatedAt,
		&rs.LastAction,
	)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("db: room %s not found", roomID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("db: load room %s: %w", roomID, err)
	}

	rows, err := db.Query(`
		SELECT player_id, seat_index, name, is_ready, connected, stack, last_action
		FROM seats WHERE room_id = ? ORDER BY seat_index
	`, roomID)
	if err != nil {
		return nil, nil, fmt.Errorf("db: load seats for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var seats []*SeatState
	for rows.Next() {
		s := &SeatState{RoomID: roomID}
		if err := rows.Scan(&s.PlayerID, &s.SeatIndex, &s.Name, &s.IsReady, &s.Connected, &s.Stack, &s.LastAction); err != nil {
			return nil, nil, fmt.Errorf("db: scan seat for room %s: %w", roomID, err)
		}
		seats = append(seats, s)
	}
	return &rs, seats, nil
}

// DeleteRoom removes a room and its seats (cascades).
func (db *DB) DeleteRoom(roomID string) error {
	_, err := db.Exec("DELETE FROM rooms WHERE id = ?", roomID)
	return err
}

// AllRoomIDs returns every persisted room's ID, for restart-time restore.
func (db *DB) AllRoomIDs() ([]string, error) {
	rows, err := db.Query("SELECT id FROM rooms")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
