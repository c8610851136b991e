// Package room implements the Room entity and hand state machine: a stable
// room identifier, a player registry (seat, id, name, public key, ready,
// liveness), the room's configuration, the current game-state tuple
// (delegated to pkg/poker.Game), and the Waiting -> Shuffle -> Dealing ->
// Unmasking(hole) -> Betting(street) -> ... -> Showdown -> Settling ->
// Waiting lifecycle, including turn and phase timers and end-of-hand
// reset.
//
// Room owns orchestration, not cryptography: every Apply* method assumes
// its proof argument has already been checked by pkg/proof.Verifier at the
// coordinator's edge (pkg/server's dispatch.go gates submit_shuffle,
// submit_unmask, submit_action, and submit_hand_reveal on Verifier.Verify
// before ever calling into Room). Room itself only enforces turn order,
// phase sequencing, and the unmask fan-out/queue rules.
//
// The seat registry (map[string]*poker.Player + seat index), ready-check
// gating of StartHand, and the postBlinds/initializeCurrentPlayer/
// maybeAdvancePhase/handleShowdown orchestration shape deal via the
// mental-poker shuffle/unmask phases (pkg/unmask, pkg/mentalcard) instead
// of a direct RNG deck draw. The next hand does not start on its own after
// showdown: it starts when every connected seat signals ready again.
package room

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/statemachine"
	"github.com/vctt94/pokerbisonrelay/pkg/unmask"
)

// Phase is the room-level hand lifecycle phase, a superset of poker.Phase:
// it additionally tracks the shuffle and unmask sub-phases that happen
// around the betting engine's own phase transitions.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseShuffle
	PhaseDealing
	PhaseUnmaskingHole
	PhaseBetting
	PhaseUnmaskingCommunity
	PhaseShowdown
	PhaseSettling
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "WAITING"
	case PhaseShuffle:
		return "SHUFFLE"
	case PhaseDealing:
		return "DEALING"
	case PhaseUnmaskingHole:
		return "UNMASKING_HOLE"
	case PhaseBetting:
		return "BETTING"
	case PhaseUnmaskingCommunity:
		return "UNMASKING_COMMUNITY"
	case PhaseShowdown:
		return "SHOWDOWN"
	case PhaseSettling:
		return "SETTLING"
	default:
		return "UNKNOWN"
	}
}

// Default turn/phase timers, overridable per room via Config.
const (
	DefaultTurnTimeout  = 60 * time.Second
	DefaultPhaseTimeout = 30 * time.Second
)

// Config holds a room's immutable configuration.
type Config struct {
	ID            string
	HostID        string
	MinPlayers    int
	MaxPlayers    int
	SmallBlind    int64
	BigBlind      int64
	StartingChips int64
	TurnTimeout   time.Duration
	PhaseTimeout  time.Duration
}

// NewConfig fills in spec-default timers and a fresh room ID if ID is
// empty, the way leanlp-BTC-coinjoin mints session identifiers with
// google/uuid.
func NewConfig(cfg Config) Config {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.TurnTimeout == 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.PhaseTimeout == 0 {
		cfg.PhaseTimeout = DefaultPhaseTimeout
	}
	return cfg
}

// Seat is one registered player's lobby-level record: seat index, id,
// name, public key, ready state, and liveness.
type Seat struct {
	PlayerID   string
	Name       string
	PubKeyX    string
	PubKeyY    string
	SeatIndex  int
	IsReady    bool
	Connected  bool
	player     *poker.Player
}

// Callbacks are the room's outbound hooks — wiring to pkg/wsconn and
// pkg/wire lives in pkg/server; Room only calls these function values so
// it has no transport dependency of its own.
type Callbacks struct {
	// Send delivers a message to one player.
	Send func(playerID string, msg interface{})
	// Broadcast delivers a message to every seated player.
	Broadcast func(msg interface{})
	// BroadcastExcept delivers to every seated player except one.
	BroadcastExcept func(exceptPlayerID string, msg interface{})
}

// Room is one table's full lifecycle: lobby, shuffle/deal/unmask phases,
// betting (delegated to poker.Game), showdown, and settling back to
// waiting for the next hand.
type Room struct {
	mu sync.Mutex

	config Config
	log    slog.Logger
	cb     Callbacks

	seats    map[string]*Seat
	seatByIx []*Seat // index by seat index, nil where empty

	phase Phase
	game  *poker.Game

	deck        [mentalcard.NumCards]mentalcard.Card
	unmask      *unmask.Coordinator
	dealer      int
	handSeats   []string // player IDs in seat order, fixed for the hand
	holeIndices map[string][2]int

	shuffleQueue     []string // remaining players who still must re-mask the deck
	pendingCommunity []int    // community card indices awaiting full unmask for the current street
	showdownPending  []string // active players who still must reveal their hole cards at showdown

	turnTimer  *time.Timer
	phaseTimer *time.Timer

	stateMachine *statemachine.StateMachine[Room]
}

// RoomStateFn is a room lifecycle state function, Rob Pike's pattern as
// used throughout this module (pkg/poker.GameStateFn, pkg/poker.PlayerStateFn).
type RoomStateFn = statemachine.StateFn[Room]

// New constructs an empty, waiting room.
func New(cfg Config, log slog.Logger, cb Callbacks) *Room {
	cfg = NewConfig(cfg)
	r := &Room{
		config:      cfg,
		log:         log,
		cb:          cb,
		seats:       make(map[string]*Seat),
		seatByIx:    make([]*Seat, cfg.MaxPlayers),
		phase:       PhaseWaiting,
		holeIndices: make(map[string][2]int),
	}
	r.stateMachine = statemachine.NewStateMachine(r, stateWaiting)
	return r
}

// ID returns the room's stable identifier.
func (r *Room) ID() string {
	return r.config.ID
}

// Config returns a copy of the room's configuration.
func (r *Room) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config
}

// Phase returns the room's current lifecycle phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Stack returns a seat's current in-hand chip balance.
func (s *Seat) Stack() int64 {
	if s.player == nil {
		return 0
	}
	return s.player.Balance
}

// Seats returns every occupied seat in seat-index order, for the
// coordinator edge to build a room_joined/player-list snapshot without
// reaching into Room internals.
func (r *Room) Seats() []Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Seat, 0, len(r.seats))
	for _, s := range r.seatByIx {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out
}

// CurrentDeck returns the deck's current masked state, for the
// coordinator edge to relay alongside a shuffle_turn request.
func (r *Room) CurrentDeck() [mentalcard.NumCards]mentalcard.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deck
}

// CardAt returns the current masked (or unmasked) state of one deck
// position, for the coordinator edge to relay alongside unmask events.
func (r *Room) CardAt(index int) mentalcard.Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deck[index]
}

// Pot returns the current hand's pot total, or 0 between hands, for the
// coordinator edge to populate a reveal_hand_request.
func (r *Room) Pot() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.game == nil {
		return 0
	}
	return r.game.GetPot()
}

var (
	// ErrRoomFull mirrors protoerr.RoomFull at the orchestration layer;
	// pkg/server maps it to that wire error code.
	ErrRoomFull = fmt.Errorf("room: full")
	// ErrAlreadyJoined mirrors protoerr.InvalidMessage for a duplicate join.
	ErrAlreadyJoined = fmt.Errorf("room: player already joined")
	// ErrNotInRoom mirrors protoerr.NotInRoom.
	ErrNotInRoom = fmt.Errorf("room: player not in room")
	// ErrGameInProgress has a wire code in pkg/server, but no Room method
	// returns it: Join reports a full room as ErrRoomFull in every phase.
	ErrGameInProgress = fmt.Errorf("room: cannot join mid-hand")
)

// Join seats a new player. Joining mid-hand is allowed only into an empty
// seat; the new player waits at the table until the next hand.
func (r *Room) Join(playerID, name, pubKeyX, pubKeyY string) (*Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seats[playerID]; ok {
		return nil, ErrAlreadyJoined
	}
	if len(r.seats) >= r.config.MaxPlayers {
		return nil, ErrRoomFull
	}

	idx := r.firstEmptySeatLocked()
	p := poker.NewPlayer(playerID, name, r.config.StartingChips)
	p.TableSeat = idx

	seat := &Seat{
		PlayerID:  playerID,
		Name:      name,
		PubKeyX:   pubKeyX,
		PubKeyY:   pubKeyY,
		SeatIndex: idx,
		Connected: true,
		player:    p,
	}
	r.seats[playerID] = seat
	r.seatByIx[idx] = seat

	if r.cb.BroadcastExcept != nil {
		r.cb.BroadcastExcept(playerID, PlayerJoinedEvent{PlayerID: playerID, Name: name, SeatIndex: idx})
	}
	return seat, nil
}

func (r *Room) firstEmptySeatLocked() int {
	for i, s := range r.seatByIx {
		if s == nil {
			return i
		}
	}
	return len(r.seats)
}

// Leave removes a player from the room entirely (spec's leave_room, not a
// mid-hand disconnect — see Disconnect for that).
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seat, ok := r.seats[playerID]
	if !ok {
		return ErrNotInRoom
	}
	delete(r.seats, playerID)
	r.seatByIx[seat.SeatIndex] = nil

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(PlayerLeftEvent{PlayerID: playerID})
	}
	return nil
}

// Disconnect marks a seat's liveness false and forfeits the player's
// current hand (if one is in progress) while retaining their chip stack.
// Nothing in Room marks the seat connected again, and allReadyLocked and
// seatedPlayerIDsLocked skip disconnected seats, so later hands are dealt
// without it.
func (r *Room) Disconnect(playerID string) {
	r.mu.Lock()
	seat, ok := r.seats[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}
	seat.Connected = false
	seat.IsReady = false

	if r.phase == PhaseWaiting || r.game == nil || seat.player.HasFolded {
		r.mu.Unlock()
		return
	}
	seat.player.HasFolded = true
	seat.player.SetGameState("FOLDED")
	r.cancelTurnTimerLocked()
	phase := r.phase
	r.mu.Unlock()

	if phase == PhaseBetting {
		r.maybeAdvanceAfterAction()
	}
}

// SetReady records a player's readiness. When every seated player (at
// least MinPlayers) is ready and the room is Waiting, the hand begins.
func (r *Room) SetReady(playerID string, isReady bool) error {
	r.mu.Lock()
	seat, ok := r.seats[playerID]
	if !ok {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	seat.IsReady = isReady

	if r.cb.Broadcast != nil {
		r.cb.Broadcast(PlayerReadyEvent{PlayerID: playerID, IsReady: isReady})
	}

	shouldStart := r.phase == PhaseWaiting && r.allReadyLocked()
	r.mu.Unlock()

	if shouldStart {
		r.StartHand()
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	ready := 0
	for _, s := range r.seats {
		if !s.Connected {
			continue
		}
		if !s.IsReady {
			return false
		}
		ready++
	}
	return ready >= r.config.MinPlayers
}

// seatedPlayerIDsLocked returns connected seats in seat-index order,
// ready or not; StartHand filters them by readiness.
func (r *Room) seatedPlayerIDsLocked() []string {
	type entry struct {
		idx int
		id  string
	}
	var entries []entry
	for id, s := range r.seats {
		if s.Connected {
			entries = append(entries, entry{idx: s.SeatIndex, id: id})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}
