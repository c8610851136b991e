package room

import "github.com/vctt94/pokerbisonrelay/pkg/poker"

// Event payload types the room hands to its Callbacks. These are plain
// data the pkg/server layer translates into pkg/wire messages — Room has
// no wire/JSON dependency of its own.

type PlayerJoinedEvent struct {
	PlayerID  string
	Name      string
	SeatIndex int
}

type PlayerLeftEvent struct {
	PlayerID string
}

type PlayerReadyEvent struct {
	PlayerID string
	IsReady  bool
}

type GameStartedEvent struct {
	Dealer  int
	Players []string
}

// ShuffleTurnEvent signals it is PlayerID's turn to re-mask the deck.
// The current deck's masked card values are fetched separately via
// Room.CurrentDeck(), since pkg/server owns converting them to wire
// CardTuples.
type ShuffleTurnEvent struct {
	PlayerID  string
	SeatIndex int
}

type ShuffleCompleteEvent struct {
	PlayerID       string
	DeckCommitment string
}

type CardsDealtEvent struct {
	PlayerID  string
	YourCards []int
}

type UnmaskRequestEvent struct {
	CardIndex   int
	ForPlayerID string
}

type CardPartiallyUnmaskedEvent struct {
	CardIndex        int
	ByPlayerID       string
	RemainingUnmasks int
}

type CardFullyUnmaskedEvent struct {
	CardIndex   int
	IsCommunity bool
}

type PlayerTurnEvent struct {
	PlayerID     string
	SeatIndex    int
	ValidActions []poker.LegalAction
	AmountToCall int64
	TimeoutMs    int
}

type ActionResultEvent struct {
	PlayerID    string
	ActionType  poker.ActionType
	Amount      int64
	NewPot      int64
	PlayerStack int64
}

type StreetAdvancedEvent struct {
	Street               poker.Phase
	CommunityCardIndices []int
}

type RevealHandRequestEvent struct {
	PlayerID    string
	CardIndices []int
}

type ShowdownEvent struct {
	Result *poker.ShowdownResult
}

type GameEndedEvent struct {
	Reason      string
	FinalStacks map[string]int64
}
