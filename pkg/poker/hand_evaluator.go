package poker

import (
	"fmt"
	"sort"

	chehsunliu "github.com/chehsunliu/poker"
)

// HandRank classifies a 5-card hand's category, independent of kickers.
type HandRank int

const (
	HighCard HandRank = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

func (r HandRank) String() string {
	switch r {
	case Pair:
		return "pair"
	case TwoPair:
		return "two pair"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	case RoyalFlush:
		return "royal flush"
	default:
		return "high card"
	}
}

// HandValue is a complete evaluation of a player's best 5-card hand.
type HandValue struct {
	Rank            HandRank
	RankValue       int // chehsunliu's raw rank value; lower is better
	BestHand        []Card
	HandDescription string
}

func suitChar(s Suit) byte {
	return [4]byte{'s', 'h', 'd', 'c'}[s]
}

func valueChar(v Value) byte {
	switch v {
	case 10:
		return 'T'
	case 11:
		return 'J'
	case 12:
		return 'Q'
	case 13:
		return 'K'
	case 14:
		return 'A'
	default:
		return byte('0' + v)
	}
}

func convertCardToChehsunliu(card Card) (chehsunliu.Card, error) {
	if card.Value < 2 || card.Value > 14 {
		return 0, fmt.Errorf("poker: invalid card value %d", card.Value)
	}
	if card.Suit < Spades || card.Suit > Clubs {
		return 0, fmt.Errorf("poker: invalid card suit %d", card.Suit)
	}
	cs := string([]byte{valueChar(card.Value), suitChar(card.Suit)})
	return chehsunliu.NewCard(cs), nil
}

func convertRankClassToHandRank(rankClass int32) HandRank {
	switch rankClass {
	case 1:
		return StraightFlush
	case 2:
		return FourOfAKind
	case 3:
		return FullHouse
	case 4:
		return Flush
	case 5:
		return Straight
	case 6:
		return ThreeOfAKind
	case 7:
		return TwoPair
	case 8:
		return Pair
	default:
		return HighCard
	}
}

// EvaluateHand evaluates a player's best 5-card hand from their hole cards
// and the community cards.
func EvaluateHand(holeCards []Card, communityCards []Card) (HandValue, error) {
	allCards := append(append([]Card{}, holeCards...), communityCards...)

	chehsunliuCards := make([]chehsunliu.Card, 0, len(allCards))
	for _, card := range allCards {
		converted, err := convertCardToChehsunliu(card)
		if err != nil {
			return HandValue{}, fmt.Errorf("poker: convert card: %w", err)
		}
		chehsunliuCards = append(chehsunliuCards, converted)
	}

	rank := chehsunliu.Evaluate(chehsunliuCards)
	rankClass := chehsunliu.RankClass(rank)

	bestCards, err := getBestFiveCards(allCards)
	if err != nil {
		return HandValue{}, fmt.Errorf("poker: get best five cards: %w", err)
	}

	handRank := convertRankClassToHandRank(rankClass)
	return HandValue{
		Rank:            handRank,
		RankValue:       int(rank),
		BestHand:        bestCards,
		HandDescription: chehsunliu.RankString(rank),
	}, nil
}

func getBestFiveCards(cards []Card) ([]Card, error) {
	if len(cards) <= 5 {
		return cards, nil
	}

	chehsunliuCards := make([]chehsunliu.Card, 0, len(cards))
	for _, card := range cards {
		converted, err := convertCardToChehsunliu(card)
		if err != nil {
			return nil, fmt.Errorf("poker: convert card: %w", err)
		}
		chehsunliuCards = append(chehsunliuCards, converted)
	}
	bestRank := chehsunliu.Evaluate(chehsunliuCards)

	var bestCards []Card
	for _, combo := range generateCombinations(cards, 5) {
		comboChehsunliu := make([]chehsunliu.Card, 0, 5)
		for _, card := range combo {
			converted, err := convertCardToChehsunliu(card)
			if err != nil {
				return nil, fmt.Errorf("poker: convert card in combination: %w", err)
			}
			comboChehsunliu = append(comboChehsunliu, converted)
		}
		if chehsunliu.Evaluate(comboChehsunliu) == bestRank {
			bestCards = combo
			break
		}
	}

	if len(bestCards) == 0 {
		sorted := make([]Card, len(cards))
		copy(sorted, cards)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
		bestCards = sorted[:5]
	}
	return bestCards, nil
}

func generateCombinations(cards []Card, k int) [][]Card {
	var combinations [][]Card
	if k > len(cards) || k <= 0 {
		return combinations
	}
	if k == len(cards) {
		return [][]Card{cards}
	}

	var generate func(start int, current []Card)
	generate = func(start int, current []Card) {
		if len(current) == k {
			combination := make([]Card, k)
			copy(combination, current)
			combinations = append(combinations, combination)
			return
		}
		for i := start; i <= len(cards)-(k-len(current)); i++ {
			generate(i+1, append(current, cards[i]))
		}
	}
	generate(0, []Card{})
	return combinations
}

// GetHandDescription returns a human-readable description of a hand.
func GetHandDescription(handValue HandValue) string {
	return handValue.HandDescription
}

// CompareHands returns -1 if handA is worse than handB, 0 on a tie, 1 if
// handA is better. chehsunliu's raw rank value is lower-is-better; this
// inverts that so callers get the conventional ordering.
func CompareHands(handA, handB HandValue) int {
	switch {
	case handA.RankValue > handB.RankValue:
		return -1
	case handA.RankValue < handB.RankValue:
		return 1
	default:
		return 0
	}
}
