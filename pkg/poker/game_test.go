package poker

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/decred/slog"
)

func createTestLogger() slog.Logger {
	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("test")
	log.SetLevel(slog.LevelError)
	return log
}

func newTestGame(t *testing.T, numPlayers int, startingChips, smallBlind, bigBlind int64) (*Game, []*Player) {
	t.Helper()
	cfg := GameConfig{
		NumPlayers:    numPlayers,
		StartingChips: startingChips,
		SmallBlind:    smallBlind,
		BigBlind:      bigBlind,
		Log:           createTestLogger(),
	}
	game, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	players := make([]*Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		players[i] = NewPlayer(
			[]string{"p1", "p2", "p3", "p4"}[i],
			[]string{"Player 1", "Player 2", "Player 3", "Player 4"}[i],
			startingChips,
		)
		players[i].stateMachine.SetState(playerStateInGame)
	}
	game.SetPlayers(players)
	return game, players
}

func TestNewGameRejectsInvalidPlayerCount(t *testing.T) {
	if _, err := NewGame(GameConfig{NumPlayers: 1, Log: createTestLogger()}); err == nil {
		t.Error("expected error for numPlayers below minimum")
	}
	if _, err := NewGame(GameConfig{NumPlayers: 11, Log: createTestLogger()}); err == nil {
		t.Error("expected error for numPlayers above maximum")
	}
}

func TestSetPlayers(t *testing.T) {
	game, players := newTestGame(t, 2, 1000, 5, 10)
	if len(game.GetPlayers()) != 2 {
		t.Fatalf("expected 2 players, got %d", len(game.GetPlayers()))
	}
	for i, p := range players {
		if p.Balance != 1000 {
			t.Errorf("player %d: expected balance 1000, got %d", i, p.Balance)
		}
	}
}

func TestPostBlindsHeadsUp(t *testing.T) {
	game, players := newTestGame(t, 2, 1000, 5, 10)
	game.dealer = 0

	if err := game.postBlinds(); err != nil {
		t.Fatalf("postBlinds: %v", err)
	}

	// Heads-up: dealer posts small blind, other player posts big blind.
	if players[0].HasBet != 5 {
		t.Errorf("expected dealer (SB) bet 5, got %d", players[0].HasBet)
	}
	if players[1].HasBet != 10 {
		t.Errorf("expected BB bet 10, got %d", players[1].HasBet)
	}
	if game.currentBet != 10 {
		t.Errorf("expected currentBet 10, got %d", game.currentBet)
	}
	if game.currentPlayer != 0 {
		t.Errorf("expected SB (dealer) to act first heads-up, got seat %d", game.currentPlayer)
	}
}

func TestHandlePlayerFoldAdvancesTurn(t *testing.T) {
	game, players := newTestGame(t, 3, 1000, 5, 10)
	game.dealer = 0
	if err := game.postBlinds(); err != nil {
		t.Fatalf("postBlinds: %v", err)
	}
	game.initializeCurrentPlayer()
	actor := game.currentPlayerID()

	if err := game.HandlePlayerFold(actor); err != nil {
		t.Fatalf("HandlePlayerFold: %v", err)
	}

	var folded *Player
	for _, p := range players {
		if p.ID == actor {
			folded = p
		}
	}
	if !folded.HasFolded {
		t.Error("expected player to be marked folded")
	}
	if game.currentPlayerID() == actor {
		t.Error("expected turn to advance past the folded player")
	}
}

func TestHandlePlayerCallAllInForLess(t *testing.T) {
	game, players := newTestGame(t, 2, 0, 10, 20)
	game.dealer = 0
	players[0].Balance = 5
	players[1].Balance = 1000
	game.currentBet = 20
	players[0].HasBet = 10
	players[1].HasBet = 20
	game.currentPlayer = 0

	if err := game.handlePlayerCall("p1"); err != nil {
		t.Fatalf("handlePlayerCall: %v", err)
	}

	if players[0].Balance != 0 {
		t.Errorf("expected short stack balance 0, got %d", players[0].Balance)
	}
	if players[0].HasBet != 15 {
		t.Errorf("expected short stack HasBet 15 (10+5 all-in), got %d", players[0].HasBet)
	}
	if game.currentBet != 20 {
		t.Errorf("expected table currentBet to remain 20, got %d", game.currentBet)
	}
}

func TestHandlePlayerBetTracksLastRaiseSize(t *testing.T) {
	game, players := newTestGame(t, 2, 1000, 5, 10)
	game.dealer = 0
	if err := game.postBlinds(); err != nil {
		t.Fatalf("postBlinds: %v", err)
	}
	game.initializeCurrentPlayer()
	actor := game.currentPlayerID()

	if err := game.HandlePlayerBet(actor, 30); err != nil {
		t.Fatalf("HandlePlayerBet: %v", err)
	}

	if game.currentBet != 30 {
		t.Errorf("expected currentBet 30, got %d", game.currentBet)
	}
	if game.lastRaiseSize != 20 {
		t.Errorf("expected lastRaiseSize 20 (raise from 10 to 30), got %d", game.lastRaiseSize)
	}
	_ = players
}

func TestValidActionsCheckVsCall(t *testing.T) {
	game, players := newTestGame(t, 2, 1000, 5, 10)
	game.dealer = 0
	if err := game.postBlinds(); err != nil {
		t.Fatalf("postBlinds: %v", err)
	}
	game.initializeCurrentPlayer()
	actor := game.currentPlayerID()

	actions := game.ValidActions(actor)
	foundFold, foundCall, foundCheck := false, false, false
	for _, a := range actions {
		switch a.Action {
		case ActionFold:
			foundFold = true
		case ActionCall:
			foundCall = true
		case ActionCheck:
			foundCheck = true
		}
	}
	if !foundFold {
		t.Error("expected fold to always be legal")
	}
	if game.currentBet > players[game.indexOf(actor)].HasBet {
		if !foundCall {
			t.Error("expected call to be legal when behind the current bet")
		}
		if foundCheck {
			t.Error("check should not be legal when behind the current bet")
		}
	}
}

func TestHandleShowdownSingleActivePlayerWinsUncontested(t *testing.T) {
	game, players := newTestGame(t, 2, 0, 5, 10)
	game.AddToPotForPlayer(0, 50)
	game.AddToPotForPlayer(1, 50)
	players[1].HasFolded = true

	result := game.HandleShowdown()
	if len(result.Winners) != 1 {
		t.Fatalf("expected 1 winner, got %d", len(result.Winners))
	}
	if result.Winners[0].PlayerID != players[0].ID {
		t.Errorf("expected %s to win, got %s", players[0].ID, result.Winners[0].PlayerID)
	}
	if players[0].Balance != 100 {
		t.Errorf("expected winner balance 100, got %d", players[0].Balance)
	}
}

func TestHandleShowdownEvaluatesHands(t *testing.T) {
	game, players := newTestGame(t, 2, 0, 5, 10)
	game.AddToPotForPlayer(0, 50)
	game.AddToPotForPlayer(1, 50)

	players[0].Hand = []Card{{Suit: Hearts, Value: 14}, {Suit: Spades, Value: 14}} // pair of aces
	players[1].Hand = []Card{{Suit: Hearts, Value: 13}, {Suit: Spades, Value: 12}} // king-queen high
	game.communityCards = []Card{
		{Suit: Clubs, Value: 2}, {Suit: Diamonds, Value: 5}, {Suit: Hearts, Value: 7},
		{Suit: Spades, Value: 9}, {Suit: Clubs, Value: 11},
	}

	result := game.HandleShowdown()
	if players[0].Balance != 100 {
		t.Errorf("expected pair of aces to win the 100 pot, got %d", players[0].Balance)
	}
	if players[1].Balance != 0 {
		t.Errorf("expected high-card hand to win nothing, got %d", players[1].Balance)
	}
	if len(result.Winners) != 1 || result.Winners[0].PlayerID != players[0].ID {
		t.Errorf("expected single winner %s, got %+v", players[0].ID, result.Winners)
	}
}

func TestAutoStartOnNewHandStarted(t *testing.T) {
	game, _ := newTestGame(t, 2, 1000, 10, 20)
	game.config.AutoStartDelay = 10 * time.Millisecond

	var mu sync.Mutex
	started, callbackCalled := false, false
	wg := sync.WaitGroup{}
	wg.Add(1)

	game.SetAutoStartCallbacks(&AutoStartCallbacks{
		MinPlayers: func() int { return 2 },
		StartNewHand: func() error {
			mu.Lock()
			started = true
			mu.Unlock()
			return nil
		},
	})
	game.SetOnNewHandStartedCallback(func() {
		mu.Lock()
		callbackCalled = true
		mu.Unlock()
		wg.Done()
	})

	game.ScheduleAutoStart()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for OnNewHandStarted callback")
	}

	mu.Lock()
	defer mu.Unlock()
	if !started {
		t.Error("expected StartNewHand to be called")
	}
	if !callbackCalled {
		t.Error("expected OnNewHandStarted to be called")
	}
}
