package mentalcard

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vctt94/pokerbisonrelay/pkg/curve"
)

// NumCards is the size of a standard deck.
const NumCards = 52

// ErrNotFullyUnmasked is returned by ValueIndex when the card still
// carries a nonzero joint public key — it has not been unmasked by every
// contributing player yet, so its plaintext value is not determinable.
var ErrNotFullyUnmasked = errors.New("mentalcard: card is not fully unmasked")

// ErrValueNotFound is returned by ValueIndex if a fully unmasked card's
// message point does not correspond to any of the 52 canonical card
// values — evidence of a malformed or maliciously substituted card.
var ErrValueNotFound = errors.New("mentalcard: unmasked value matches no canonical card")

// ValueIndex recovers the canonical card index (0..51) of a fully
// unmasked card by brute-force comparison against CardValuePoint(i) for
// each i — the natural complement of CardValuePoint now that a card's
// plaintext point must be turned back into a concrete rank/suit for the
// betting engine. 52 comparisons is cheap enough to do per reveal; the
// set is not precomputed since it is only ever walked once per card.
func ValueIndex(c Card) (int, error) {
	if !IsFullyUnmasked(c) {
		return 0, ErrNotFullyUnmasked
	}
	for i := 0; i < NumCards; i++ {
		if curve.Equal(c.Msg, CardValuePoint(i)) {
			return i, nil
		}
	}
	return 0, ErrValueNotFound
}

// CommitDeck computes the permutation-invariant multiset commitment over
// all 52 cards: D = Π (cardCommitment(card_i) + 1) mod p. Because it is a
// product over per-card commitments, a shuffle proof can show the output
// deck commitment equals the input one without revealing the permutation.
func CommitDeck(cards [NumCards]Card) (fr.Element, error) {
	var product fr.Element
	product.SetOne()

	var one fr.Element
	one.SetOne()

	for _, c := range cards {
		commitment, err := Commitment(c)
		if err != nil {
			return fr.Element{}, err
		}
		var term fr.Element
		term.Add(&commitment, &one)
		product.Mul(&product, &term)
	}
	return product, nil
}

// NewUnmaskedDeck builds the canonical 52-card deck where card i carries
// the value point for index i and has not yet been masked by anyone.
func NewUnmaskedDeck() [NumCards]Card {
	var deck [NumCards]Card
	for i := 0; i < NumCards; i++ {
		deck[i] = NewUnmaskedCard(CardValuePoint(i))
	}
	return deck
}
