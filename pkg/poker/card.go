package poker

import (
	"encoding/json"
	"fmt"
)

// Suit and Value describe a resolved (fully unmasked) card for display and
// hand description purposes. The canonical card identity the protocol
// actually operates on is its deck index 0..51 (see CardIndex below); Suit
// and Value are derived from that index once a card has been revealed.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Value is a card rank, 2..14 (Ace high).
type Value int

func (v Value) String() string {
	switch v {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return fmt.Sprintf("%d", int(v))
	}
}

// Card is a resolved playing card.
type Card struct {
	Suit  Suit
	Value Value
}

func (c Card) String() string {
	return c.Value.String() + c.Suit.String()
}

// cardJSON is the wire shape for a resolved card (spec §6): an explicit
// suit/rank pair rather than the raw deck index, so a client that never
// learns the index-to-identity mapping for someone else's hole cards can
// still render any card it has legitimately been shown.
type cardJSON struct {
	Suit  string `json:"suit"`
	Value int    `json:"value"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.Suit.String(), Value: int(c.Value)})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	switch cj.Suit {
	case "♠":
		c.Suit = Spades
	case "♥":
		c.Suit = Hearts
	case "♦":
		c.Suit = Diamonds
	case "♣":
		c.Suit = Clubs
	default:
		return fmt.Errorf("poker: invalid suit %q", cj.Suit)
	}
	if cj.Value < 2 || cj.Value > 14 {
		return fmt.Errorf("poker: invalid card value %d", cj.Value)
	}
	c.Value = Value(cj.Value)
	return nil
}

// CardFromIndex decodes a canonical 0..51 deck index into its resolved
// card, using the same suit-major ordering mentalcard.CardValuePoint
// assumes (index = suit*13 + (rank-2)).
func CardFromIndex(index int) (Card, error) {
	if index < 0 || index > 51 {
		return Card{}, fmt.Errorf("poker: card index %d out of range", index)
	}
	return Card{
		Suit:  Suit(index / 13),
		Value: Value(index%13 + 2),
	}, nil
}

// IndexFromCard is the inverse of CardFromIndex.
func IndexFromCard(c Card) int {
	return int(c.Suit)*13 + (int(c.Value) - 2)
}
