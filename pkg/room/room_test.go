package room

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/decred/slog"
)

func testLogger() slog.Logger {
	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("test")
	log.SetLevel(slog.LevelError)
	return log
}

// eventRecorder captures every outbound callback a Room fires, so tests can
// assert on the sequence of events without standing up real transport.
type eventRecorder struct {
	mu        sync.Mutex
	broadcast []interface{}
	sent      map[string][]interface{}
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{sent: make(map[string][]interface{})}
}

func (r *eventRecorder) callbacks() Callbacks {
	return Callbacks{
		Send: func(playerID string, msg interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.sent[playerID] = append(r.sent[playerID], msg)
		},
		Broadcast: func(msg interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.broadcast = append(r.broadcast, msg)
		},
		BroadcastExcept: func(exceptPlayerID string, msg interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.broadcast = append(r.broadcast, msg)
		},
	}
}

func (r *eventRecorder) last() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.broadcast) == 0 {
		return nil
	}
	return r.broadcast[len(r.broadcast)-1]
}

func (r *eventRecorder) count(match func(interface{}) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.broadcast {
		if match(e) {
			n++
		}
	}
	return n
}

func (r *eventRecorder) sentTo(playerID string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.sent[playerID]...)
}

func newTestRoom(t *testing.T, maxPlayers int) (*Room, *eventRecorder) {
	t.Helper()
	rec := newEventRecorder()
	cfg := NewConfig(Config{
		MinPlayers:    2,
		MaxPlayers:    maxPlayers,
		SmallBlind:    5,
		BigBlind:      10,
		StartingChips: 1000,
		TurnTimeout:   50 * time.Millisecond,
		PhaseTimeout:  50 * time.Millisecond,
	})
	return New(cfg, testLogger(), rec.callbacks()), rec
}

func joinAll(t *testing.T, r *Room, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := r.Join(id, id, "x", "y"); err != nil {
			t.Fatalf("Join %s: %v", id, err)
		}
	}
}

func TestJoinSeatsPlayersInOrder(t *testing.T) {
	r, _ := newTestRoom(t, 3)
	ids := []string{"p1", "p2", "p3"}
	joinAll(t, r, ids...)

	for i, id := range ids {
		seat, ok := r.seats[id]
		if !ok {
			t.Fatalf("expected %s to be seated", id)
		}
		if seat.SeatIndex != i {
			t.Errorf("expected seat %d for %s, got %d", i, id, seat.SeatIndex)
		}
	}

	if _, err := r.Join("p4", "p4", "x", "y"); err != ErrRoomFull {
		t.Errorf("expected ErrRoomFull, got %v", err)
	}
	if _, err := r.Join("p1", "dup", "x", "y"); err != ErrAlreadyJoined {
		t.Errorf("expected ErrAlreadyJoined, got %v", err)
	}
}

func TestLeaveUnknownPlayer(t *testing.T) {
	r, _ := newTestRoom(t, 2)
	if err := r.Leave("ghost"); err != ErrNotInRoom {
		t.Errorf("expected ErrNotInRoom, got %v", err)
	}
}

func TestLeaveFreesSeatForRejoin(t *testing.T) {
	r, _ := newTestRoom(t, 2)
	joinAll(t, r, "p1", "p2")

	if err := r.Leave("p1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	seat, err := r.Join("p3", "P3", "x", "y")
	if err != nil {
		t.Fatalf("Join after leave: %v", err)
	}
	if seat.SeatIndex != 0 {
		t.Errorf("expected freed seat 0 reused, got %d", seat.SeatIndex)
	}
}

func TestSetReadyUnknownPlayer(t *testing.T) {
	r, _ := newTestRoom(t, 2)
	if err := r.SetReady("ghost", true); err != ErrNotInRoom {
		t.Errorf("expected ErrNotInRoom, got %v", err)
	}
}

func TestSetReadyStartsHandOnceMinPlayersReady(t *testing.T) {
	r, rec := newTestRoom(t, 2)
	joinAll(t, r, "p1", "p2")

	if err := r.SetReady("p1", true); err != nil {
		t.Fatalf("SetReady p1: %v", err)
	}
	if r.Phase() != PhaseWaiting {
		t.Fatalf("expected still WAITING with only one ready player, got %s", r.Phase())
	}

	if err := r.SetReady("p2", true); err != nil {
		t.Fatalf("SetReady p2: %v", err)
	}
	if r.Phase() != PhaseShuffle {
		t.Fatalf("expected SHUFFLE once both ready, got %s", r.Phase())
	}
	if n := rec.count(func(e interface{}) bool { _, ok := e.(GameStartedEvent); return ok }); n != 1 {
		t.Errorf("expected exactly one GameStartedEvent, got %d", n)
	}
}

func TestDisconnectBeforeHandIsHarmless(t *testing.T) {
	r, _ := newTestRoom(t, 2)
	joinAll(t, r, "p1", "p2")
	r.Disconnect("p1")

	seat := r.seats["p1"]
	if seat.Connected {
		t.Error("expected seat marked disconnected")
	}
	if r.Phase() != PhaseWaiting {
		t.Errorf("expected room to stay WAITING, got %s", r.Phase())
	}
}

func TestPhaseStringCoversEveryPhase(t *testing.T) {
	phases := []Phase{
		PhaseWaiting, PhaseShuffle, PhaseDealing, PhaseUnmaskingHole,
		PhaseBetting, PhaseUnmaskingCommunity, PhaseShowdown, PhaseSettling,
	}
	for _, p := range phases {
		if p.String() == "UNKNOWN" {
			t.Errorf("phase %d missing from String()", p)
		}
	}
	if Phase(99).String() != "UNKNOWN" {
		t.Error("expected an out-of-range phase to stringify as UNKNOWN")
	}
}
