package poker

import "fmt"

// The 52-card deck itself is never shuffled locally: its order is fixed by
// the mental-poker shuffle/mask protocol (pkg/mentalcard), which the betting
// engine treats as an opaque source of 0..51 card indices. What this file
// provides instead is the *canonical assignment* of those indices to roles
// (whose hole cards, which community card) for a table of N players, so the
// betting engine and the wire protocol agree on "index 7" meaning the same
// thing without either side needing to see a value. Values are filled in
// later, as they're unmasked, via Game.SetHoleCard/SetCommunityCard.

// MaxCommunityCards is the number of board cards in a completed hand.
const MaxCommunityCards = 5

// HoleCardIndices returns the two canonical deck indices dealt to the
// player in the given deal position (0-indexed; pkg/room passes each
// player's index in the hand's seat order), for a hand with numPlayers
// players. Dealing round-robins one card at a time, matching how a
// physical dealer deals, so an index below numPlayers came from the first
// pass and one at or above it from the second: seat dealPos's first card
// is dealPos, its second is numPlayers+dealPos.
func HoleCardIndices(dealPos, numPlayers int) ([2]int, error) {
	if numPlayers < 2 || numPlayers > 10 {
		return [2]int{}, fmt.Errorf("poker: numPlayers %d out of range", numPlayers)
	}
	if dealPos < 0 || dealPos >= numPlayers {
		return [2]int{}, fmt.Errorf("poker: dealPos %d out of range for %d players", dealPos, numPlayers)
	}
	return [2]int{dealPos, numPlayers + dealPos}, nil
}

// CommunityCardIndices returns the five canonical deck indices reserved for
// the board in a hand with numPlayers players: the 2N hole-card indices are
// followed immediately by the five board indices.
func CommunityCardIndices(numPlayers int) ([MaxCommunityCards]int, error) {
	if numPlayers < 2 || numPlayers > 10 {
		return [MaxCommunityCards]int{}, fmt.Errorf("poker: numPlayers %d out of range", numPlayers)
	}
	var out [MaxCommunityCards]int
	base := 2 * numPlayers
	for i := range out {
		out[i] = base + i
	}
	return out, nil
}

// DeckState is the serializable snapshot of which canonical indices have
// resolved to which cards, used to restore a Game from persisted state
// after a process restart (spec's supplemented crash-recovery behavior,
// grounded on the teacher's GameStateSnapshot/DeckState persistence).
type DeckState struct {
	ResolvedCards map[int]Card `json:"resolved_cards"`
}
