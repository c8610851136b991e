package poker

import (
	"fmt"
	"testing"
)

func makeTestPlayers(n int, balance int64) []*Player {
	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(fmt.Sprintf("player_%d", i), fmt.Sprintf("Player %d", i), balance)
	}
	return players
}

func TestPotManagerBasic(t *testing.T) {
	pm := NewPotManager()
	players := makeTestPlayers(3, 1000)
	_ = players

	if pm.GetTotalPot() != 0 {
		t.Errorf("expected initial pot 0, got %d", pm.GetTotalPot())
	}

	pm.AddBet(0, 10)
	pm.AddBet(1, 10)
	pm.AddBet(2, 10)

	if pm.GetTotalPot() != 30 {
		t.Errorf("expected total pot 30, got %d", pm.GetTotalPot())
	}
	if pm.GetCurrentBet(0) != 10 {
		t.Errorf("expected player 0 current bet 10, got %d", pm.GetCurrentBet(0))
	}

	pm.ResetCurrentBets()
	if pm.GetCurrentBet(0) != 0 {
		t.Errorf("expected player 0 current bet 0 after reset, got %d", pm.GetCurrentBet(0))
	}
	if pm.GetTotalBet(0) != 10 {
		t.Errorf("expected player 0 total bet to remain 10, got %d", pm.GetTotalBet(0))
	}

	pm.AddBet(0, 20)
	pm.AddBet(1, 20)
	pm.AddBet(2, 20)
	if pm.GetTotalPot() != 90 {
		t.Errorf("expected total pot 90, got %d", pm.GetTotalPot())
	}
}

func TestReturnUncalledBet(t *testing.T) {
	pm := NewPotManager()
	players := makeTestPlayers(3, 100)

	pm.AddBet(0, 20)
	pm.AddBet(1, 20)
	pm.AddBet(2, 50)
	players[0].Balance -= 20
	players[1].Balance -= 20
	players[2].Balance -= 50

	pm.ReturnUncalledBet(players)

	// Player 2's 50 exceeds the next-highest bet of 20 by 30; that excess
	// comes back uncalled.
	if players[2].Balance != 80 {
		t.Errorf("expected player 2 balance 80 after uncalled-bet return, got %d", players[2].Balance)
	}
	if pm.GetTotalPot() != 60 {
		t.Errorf("expected pot 60 after returning the uncalled 30, got %d", pm.GetTotalPot())
	}
}

func TestCreateSidePotsAllIn(t *testing.T) {
	pm := NewPotManager()
	players := makeTestPlayers(3, 0)

	// Player 0 is short-stacked and all-in for 30; players 1 and 2 each put
	// in 100.
	pm.AddBet(0, 30)
	pm.AddBet(1, 100)
	pm.AddBet(2, 100)
	players[0].IsAllIn = true

	pm.CreateSidePots(players)

	if len(pm.Pots) != 2 {
		t.Fatalf("expected 2 pots (main + side), got %d", len(pm.Pots))
	}

	main := pm.Pots[0]
	if main.Amount != 90 {
		t.Errorf("expected main pot 90 (30*3), got %d", main.Amount)
	}
	for i := 0; i < 3; i++ {
		if !main.IsEligible(i) {
			t.Errorf("expected player %d eligible for main pot", i)
		}
	}

	side := pm.Pots[1]
	if side.Amount != 140 {
		t.Errorf("expected side pot 140 ((100-30)*2), got %d", side.Amount)
	}
	if side.IsEligible(0) {
		t.Error("short-stacked all-in player should not be eligible for the side pot")
	}
	if !side.IsEligible(1) || !side.IsEligible(2) {
		t.Error("players 1 and 2 should be eligible for the side pot")
	}
}

func TestDistributePotsSingleWinner(t *testing.T) {
	pm := NewPotManager()
	players := makeTestPlayers(2, 0)
	pm.AddBet(0, 50)
	pm.AddBet(1, 50)

	hv0, _ := EvaluateHand(
		[]Card{{Suit: Hearts, Value: 14}, {Suit: Hearts, Value: 13}},
		[]Card{{Suit: Hearts, Value: 12}, {Suit: Hearts, Value: 11}, {Suit: Hearts, Value: 10}, {Suit: Clubs, Value: 2}, {Suit: Diamonds, Value: 3}},
	)
	hv1, _ := EvaluateHand(
		[]Card{{Suit: Clubs, Value: 9}, {Suit: Clubs, Value: 8}},
		[]Card{{Suit: Hearts, Value: 12}, {Suit: Hearts, Value: 11}, {Suit: Hearts, Value: 10}, {Suit: Clubs, Value: 2}, {Suit: Diamonds, Value: 3}},
	)
	players[0].HandValue = &hv0
	players[1].HandValue = &hv1

	pm.DistributePots(players, 0)

	if players[0].Balance != 100 {
		t.Errorf("expected winner balance 100, got %d", players[0].Balance)
	}
	if players[1].Balance != 0 {
		t.Errorf("expected loser balance 0, got %d", players[1].Balance)
	}
}

func TestDistributePotsOddChipGoesClockwiseFromDealer(t *testing.T) {
	pm := NewPotManager()
	players := makeTestPlayers(4, 0)
	for i := range players {
		pm.AddBet(i, 25) // pot = 101 would be odd; use 25*4+1 below instead
	}
	// Force an odd pot: add one extra chip directly.
	pm.Pots[0].Amount++

	hv, _ := EvaluateHand(
		[]Card{{Suit: Hearts, Value: 14}, {Suit: Hearts, Value: 13}},
		[]Card{{Suit: Hearts, Value: 12}, {Suit: Hearts, Value: 11}, {Suit: Hearts, Value: 10}, {Suit: Clubs, Value: 2}, {Suit: Diamonds, Value: 3}},
	)
	// All four players tie with the identical hand.
	for _, p := range players {
		hvCopy := hv
		p.HandValue = &hvCopy
	}

	dealer := 1
	pm.DistributePots(players, dealer)

	// Pot is 101: 25 each + remainder 1 to the first winner clockwise from
	// the dealer, i.e. seat (dealer+1)%4 == 2.
	for i, p := range players {
		want := int64(25)
		if i == 2 {
			want = 26
		}
		if p.Balance != want {
			t.Errorf("seat %d: expected balance %d, got %d", i, want, p.Balance)
		}
	}
}

func TestFirstClockwiseFrom(t *testing.T) {
	if got := firstClockwiseFrom(0, []int{1, 2, 3}, 4); got != 1 {
		t.Errorf("expected seat 1 first clockwise from dealer 0, got %d", got)
	}
	if got := firstClockwiseFrom(2, []int{0, 1}, 4); got != 0 {
		t.Errorf("expected seat 0 (wraps around) first clockwise from dealer 2, got %d", got)
	}
	if got := firstClockwiseFrom(3, []int{0, 1, 2}, 4); got != 0 {
		t.Errorf("expected seat 0 first clockwise from dealer 3, got %d", got)
	}
}
