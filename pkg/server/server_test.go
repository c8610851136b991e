package server

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerbisonrelay/pkg/logging"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/server/internal/db"
)

func testLogBackend(t *testing.T) *logging.LogBackend {
	t.Helper()
	backend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: "error", Writer: os.Stderr})
	require.NoError(t, err)
	return backend
}

// inMemoryDB is a fake Database for tests.
type inMemoryDB struct {
	mu    sync.Mutex
	rooms map[string]*db.RoomState
	seats map[string][]*db.SeatState
}

func newInMemoryDB() *inMemoryDB {
	return &inMemoryDB{rooms: make(map[string]*db.RoomState), seats: make(map[string][]*db.SeatState)}
}

func (m *inMemoryDB) SaveRoom(r *db.RoomState, seats []*db.SeatState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[r.ID] = r
	m.seats[r.ID] = seats
	return nil
}

func (m *inMemoryDB) LoadRoom(roomID string) (*db.RoomState, []*db.SeatState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[roomID], m.seats[roomID], nil
}

func (m *inMemoryDB) DeleteRoom(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	delete(m.seats, roomID)
	return nil
}

func (m *inMemoryDB) AllRoomIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *inMemoryDB) Close() error { return nil }

func testServer(t *testing.T) *Server {
	t.Helper()
	logBackend := testLogBackend(t)
	collector, err := NewResourceCollector(logBackend.Logger("RESOURCE"), 1, 1)
	require.NoError(t, err)
	return NewServer(Config{
		RoomDefaults: room.Config{
			MinPlayers:    2,
			MaxPlayers:    6,
			SmallBlind:    1,
			BigBlind:      2,
			StartingChips: 200,
		},
	}, logBackend, newInMemoryDB(), nil, collector)
}

func TestGetOrCreateRoomReusesExistingID(t *testing.T) {
	s := testServer(t)

	r1 := s.getOrCreateRoom("")
	require.NotEmpty(t, r1.ID())

	r2 := s.getOrCreateRoom(r1.ID())
	require.Same(t, r1, r2)
}

func TestGetOrCreateRoomMintsDistinctRooms(t *testing.T) {
	s := testServer(t)

	r1 := s.getOrCreateRoom("")
	r2 := s.getOrCreateRoom("")
	require.NotEqual(t, r1.ID(), r2.ID())
}

func TestSeatedPlayerIDsOrdersBySeatAndSkipsDisconnected(t *testing.T) {
	s := testServer(t)
	r := s.getOrCreateRoom("")

	_, err := r.Join("p2", "Bob", "", "")
	require.NoError(t, err)
	_, err = r.Join("p1", "Alice", "", "")
	require.NoError(t, err)

	r.Disconnect("p2")

	ids := seatedPlayerIDs(r)
	require.Equal(t, []string{"p1"}, ids)
}

func TestRoomJoinedPayloadReflectsConfig(t *testing.T) {
	s := testServer(t)
	r := s.getOrCreateRoom("")
	seat, err := r.Join("p1", "Alice", "x", "y")
	require.NoError(t, err)

	payload := roomJoinedPayload(r, "p1", seat.SeatIndex)
	require.Equal(t, r.ID(), payload.RoomID)
	require.Equal(t, "p1", payload.PlayerID)
	require.Len(t, payload.Players, 1)
	require.Equal(t, "Alice", payload.Players[0].Name)
	require.Equal(t, 6, payload.Config.MaxPlayers)
}
