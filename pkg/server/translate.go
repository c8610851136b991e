package server

import (
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/wire"
)

// streetFromPhase converts a poker.Phase to its wire.Street codepoint; the
// two enums are not wire-compatible (poker.Phase has a dealing phase before
// PhasePreFlop that the wire protocol has no slot for), unlike
// poker.ActionType, which wire.Action mirrors directly.
func streetFromPhase(p poker.Phase) wire.Street {
	switch p {
	case poker.PhasePreFlop:
		return wire.StreetPreflop
	case poker.PhaseFlop:
		return wire.StreetFlop
	case poker.PhaseTurn:
		return wire.StreetTurn
	case poker.PhaseRiver:
		return wire.StreetRiver
	case poker.PhaseShowdown:
		return wire.StreetShowdown
	default:
		return wire.StreetPreflop
	}
}

func legalActionsToWire(legal []poker.LegalAction) []wire.Action {
	out := make([]wire.Action, 0, len(legal))
	for _, a := range legal {
		out = append(out, wire.Action(a.Action))
	}
	return out
}

func minMaxForAction(legal []poker.LegalAction, action poker.ActionType) (min, max int64) {
	for _, a := range legal {
		if a.Action == action {
			return a.MinAmount, a.MaxAmount
		}
	}
	return 0, 0
}

// eventToWire translates one of pkg/room's event payload types (events.go)
// into the wire.Type/payload pair the coordinator sends over the
// websocket. Room stays free of any JSON/transport dependency; this
// boundary is the only place the two vocabularies meet.
func eventToWire(r *room.Room, msg interface{}) (wire.Type, interface{}, bool) {
	switch ev := msg.(type) {
	case room.PlayerJoinedEvent:
		return wire.TypePlayerJoined, wire.PlayerJoinedPayload{
			PlayerID: ev.PlayerID, Name: ev.Name, SeatIndex: ev.SeatIndex,
		}, true

	case room.PlayerLeftEvent:
		return wire.TypePlayerLeft, wire.PlayerLeftPayload{PlayerID: ev.PlayerID}, true

	case room.PlayerReadyEvent:
		return wire.TypePlayerReady, wire.PlayerReadyPayload{
			PlayerID: ev.PlayerID, IsReady: ev.IsReady,
		}, true

	case room.GameStartedEvent:
		seats := r.Seats()
		players := make([]wire.RoomPlayer, 0, len(seats))
		for _, s := range seats {
			players = append(players, wire.RoomPlayer{
				PlayerID: s.PlayerID, Name: s.Name, SeatIndex: s.SeatIndex,
				IsReady: s.IsReady, Stack: wire.NewInt(s.Stack()),
			})
		}
		return wire.TypeGameStarted, wire.GameStartedPayload{
			GameState: wire.GameStateSummary{
				Dealer:  ev.Dealer,
				Pot:     wire.NewInt(r.Pot()),
				Street:  wire.StreetPreflop,
				Players: players,
			},
		}, true

	case room.ShuffleTurnEvent:
		deck := r.CurrentDeck()
		var tuples [52]wire.CardTuple
		for i, c := range deck {
			tuples[i] = wire.CardTupleFromMentalCard(c)
		}
		return wire.TypeShuffleTurn, wire.ShuffleTurnPayload{
			PlayerID: ev.PlayerID, SeatIndex: ev.SeatIndex, CurrentDeck: tuples,
		}, true

	case room.ShuffleCompleteEvent:
		return wire.TypeShuffleComplete, wire.ShuffleCompletePayload{
			PlayerID: ev.PlayerID, DeckCommitment: ev.DeckCommitment,
		}, true

	case room.CardsDealtEvent:
		return wire.TypeCardsDealt, wire.CardsDealtPayload{YourCards: ev.YourCards}, true

	case room.UnmaskRequestEvent:
		return wire.TypeUnmaskRequest, wire.UnmaskRequestPayload{
			CardIndex: ev.CardIndex, ForPlayerID: ev.ForPlayerID,
			Card: wire.CardTupleFromMentalCard(r.CardAt(ev.CardIndex)),
		}, true

	case room.CardPartiallyUnmaskedEvent:
		return wire.TypeCardPartiallyUnmasked, wire.CardPartiallyUnmaskedPayload{
			CardIndex: ev.CardIndex, ByPlayerID: ev.ByPlayerID,
			RemainingUnmasks: ev.RemainingUnmasks,
		}, true

	case room.CardFullyUnmaskedEvent:
		return wire.TypeCardFullyUnmasked, wire.CardFullyUnmaskedPayload{
			CardIndex: ev.CardIndex, IsCommunity: ev.IsCommunity,
			Card: wire.CardTupleFromMentalCard(r.CardAt(ev.CardIndex)),
		}, true

	case room.PlayerTurnEvent:
		minBet, _ := minMaxForAction(ev.ValidActions, poker.ActionBet)
		minRaise, _ := minMaxForAction(ev.ValidActions, poker.ActionRaise)
		return wire.TypePlayerTurn, wire.PlayerTurnPayload{
			PlayerID: ev.PlayerID, SeatIndex: ev.SeatIndex,
			ValidActions: legalActionsToWire(ev.ValidActions),
			MinBet:       wire.NewInt(minBet),
			MinRaise:     wire.NewInt(minRaise),
			AmountToCall: wire.NewInt(ev.AmountToCall),
			TimeoutMs:    ev.TimeoutMs,
		}, true

	case room.ActionResultEvent:
		return wire.TypeActionResult, wire.ActionResultPayload{
			PlayerID: ev.PlayerID, ActionType: wire.Action(ev.ActionType),
			Amount: wire.NewInt(ev.Amount), NewPot: wire.NewInt(ev.NewPot),
			PlayerStack: wire.NewInt(ev.PlayerStack),
		}, true

	case room.StreetAdvancedEvent:
		return wire.TypeStreetAdvanced, wire.StreetAdvancedPayload{
			Street: streetFromPhase(ev.Street), CommunityCardIndices: ev.CommunityCardIndices,
		}, true

	case room.RevealHandRequestEvent:
		seats := r.Seats()
		opponents := make([]wire.Opponent, 0, len(seats))
		for _, s := range seats {
			if s.PlayerID == ev.PlayerID {
				continue
			}
			opponents = append(opponents, wire.Opponent{PlayerID: s.PlayerID, Stack: wire.NewInt(s.Stack())})
		}
		return wire.TypeRevealHandRequest, wire.RevealHandRequestPayload{
			Pot: wire.NewInt(r.Pot()), Opponents: opponents,
		}, true

	case room.ShowdownEvent:
		return wire.TypeShowdown, showdownPayload(ev.Result), true

	case room.GameEndedEvent:
		stacks := make([]wire.FinalStack, 0, len(ev.FinalStacks))
		for id, stack := range ev.FinalStacks {
			stacks = append(stacks, wire.FinalStack{PlayerID: id, Stack: wire.NewInt(stack)})
		}
		return wire.TypeGameEnded, wire.GameEndedPayload{Reason: ev.Reason, FinalStacks: stacks}, true

	default:
		return "", nil, false
	}
}

func showdownPayload(result *poker.ShowdownResult) wire.ShowdownPayload {
	if result == nil {
		return wire.ShowdownPayload{}
	}
	players := make([]wire.ShowdownPlayer, 0, len(result.Winners))
	winners := make([]wire.ShowdownWinner, 0, len(result.Winners))
	for _, w := range result.Winners {
		players = append(players, wire.ShowdownPlayer{
			PlayerID: w.PlayerID, HandRank: int(w.HandRank),
		})
		winners = append(winners, wire.ShowdownWinner{PlayerID: w.PlayerID, Amount: wire.NewInt(w.Winnings)})
	}
	return wire.ShowdownPayload{Players: players, Winners: winners, PotDistribution: winners}
}
