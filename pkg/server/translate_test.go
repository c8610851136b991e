package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/wire"
)

func TestStreetFromPhaseTranslatesEveryBettingPhase(t *testing.T) {
	cases := map[poker.Phase]wire.Street{
		poker.PhasePreFlop:  wire.StreetPreflop,
		poker.PhaseFlop:     wire.StreetFlop,
		poker.PhaseTurn:     wire.StreetTurn,
		poker.PhaseRiver:    wire.StreetRiver,
		poker.PhaseShowdown: wire.StreetShowdown,
	}
	for phase, want := range cases {
		require.Equal(t, want, streetFromPhase(phase))
	}
}

func TestEventToWirePlayerJoined(t *testing.T) {
	s := testServer(t)
	r := s.getOrCreateRoom("")

	ev := room.PlayerJoinedEvent{PlayerID: "p1", Name: "Alice", SeatIndex: 0}
	typ, payload, ok := eventToWire(r, ev)
	require.True(t, ok)
	require.Equal(t, wire.TypePlayerJoined, typ)
	require.Equal(t, wire.PlayerJoinedPayload{PlayerID: "p1", Name: "Alice", SeatIndex: 0}, payload)
}

func TestEventToWireActionResultPreservesAmounts(t *testing.T) {
	s := testServer(t)
	r := s.getOrCreateRoom("")

	ev := room.ActionResultEvent{PlayerID: "p1", ActionType: poker.ActionBet, Amount: 50, NewPot: 75, PlayerStack: 150}
	typ, payload, ok := eventToWire(r, ev)
	require.True(t, ok)
	require.Equal(t, wire.TypeActionResult, typ)

	ar, isAR := payload.(wire.ActionResultPayload)
	require.True(t, isAR)
	require.Equal(t, wire.Action(poker.ActionBet), ar.ActionType)
	require.Equal(t, wire.NewInt(50), ar.Amount)
	require.Equal(t, wire.NewInt(75), ar.NewPot)
}

func TestEventToWireUnknownTypeFails(t *testing.T) {
	s := testServer(t)
	r := s.getOrCreateRoom("")

	_, _, ok := eventToWire(r, struct{ Foo string }{Foo: "bar"})
	require.False(t, ok)
}

func TestShowdownPayloadHandlesNilResult(t *testing.T) {
	require.Equal(t, wire.ShowdownPayload{}, showdownPayload(nil))
}

func TestShowdownPayloadMapsWinners(t *testing.T) {
	result := &poker.ShowdownResult{
		TotalPot: 100,
		Winners: []poker.Winner{
			{PlayerID: "p1", HandRank: poker.Flush, Winnings: 100},
		},
	}
	payload := showdownPayload(result)
	require.Len(t, payload.Winners, 1)
	require.Equal(t, "p1", payload.Winners[0].PlayerID)
	require.Equal(t, wire.NewInt(100), payload.Winners[0].Amount)
	require.Equal(t, payload.Winners, payload.PotDistribution)
}
