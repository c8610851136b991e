package poker

import "testing"

// These tests guard the state machine's fold-status handling: earlier
// revisions of this pattern reset HasFolded to false whenever a state
// function ran again, even after a fold had been recorded.

func TestPlayerStateMachine_FoldRegression(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)

	if got := player.GetGameState(); got != "AT_TABLE" {
		t.Fatalf("new player state = %s, want AT_TABLE", got)
	}

	player.HasFolded = true
	player.stateMachine.Dispatch(nil)

	if got := player.GetGameState(); got != "FOLDED" {
		t.Errorf("player state = %s, want FOLDED", got)
	}
	if !player.HasFolded {
		t.Error("HasFolded should remain true after dispatch")
	}
}

func TestPlayerStateMachine_FoldStateTransition(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.stateMachine.SetState(playerStateInGame)

	if got := player.GetGameState(); got != "IN_GAME" {
		t.Fatalf("player state = %s, want IN_GAME", got)
	}

	player.HasFolded = true
	player.stateMachine.Dispatch(nil)

	if got := player.GetGameState(); got != "FOLDED" {
		t.Errorf("player state = %s, want FOLDED", got)
	}
}

func TestPlayerStateMachine_FoldStatePersistence(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.HasFolded = true
	player.stateMachine.Dispatch(nil)

	for i := 0; i < 5; i++ {
		player.stateMachine.Dispatch(nil)
		if got := player.GetGameState(); got != "FOLDED" {
			t.Errorf("dispatch %d: player state = %s, want FOLDED", i+1, got)
		}
	}
}

func TestPlayerStateMachine_UnfoldTransition(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.HasFolded = true
	player.stateMachine.Dispatch(nil)
	if got := player.GetGameState(); got != "FOLDED" {
		t.Fatalf("player state = %s, want FOLDED", got)
	}

	player.HasFolded = false
	player.stateMachine.Dispatch(nil)

	if got := player.GetGameState(); got != "IN_GAME" {
		t.Errorf("player state = %s, want IN_GAME", got)
	}
}

func TestPlayerStateMachine_AllInStaysAllInWithoutFold(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.Balance = 0
	player.HasBet = 100
	player.stateMachine.SetState(playerStateInGame)
	player.stateMachine.Dispatch(nil) // transitions to ALL_IN (balance 0, bet > 0)

	if got := player.GetGameState(); got != "ALL_IN" {
		t.Fatalf("player state = %s, want ALL_IN", got)
	}

	// With HasFolded unset the player stays ALL_IN; the state machine
	// leaves ALL_IN only when HasFolded is set (to FOLDED) or the balance
	// becomes positive (to IN_GAME).
	if got := player.GetGameState(); got != "ALL_IN" {
		t.Errorf("player state = %s, want to remain ALL_IN", got)
	}
}

func TestResetForNewHand_ClearsFoldState(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.HasFolded = true
	player.stateMachine.Dispatch(nil)
	if got := player.GetGameState(); got != "FOLDED" {
		t.Fatalf("player state = %s, want FOLDED", got)
	}

	player.ResetForNewHand(1000)

	if player.HasFolded {
		t.Error("HasFolded should be cleared after ResetForNewHand")
	}
	if got := player.GetGameState(); got != "IN_GAME" {
		t.Errorf("player state = %s, want IN_GAME", got)
	}
}

func TestIsActiveInGame(t *testing.T) {
	player := NewPlayer("test-player", "Test Player", 1000)
	player.stateMachine.SetState(playerStateInGame)
	if !player.IsActiveInGame() {
		t.Error("player in IN_GAME state should be active in game")
	}

	player.HasFolded = true
	player.stateMachine.Dispatch(nil)
	if player.IsActiveInGame() {
		t.Error("folded player should not be active in game")
	}
}
