// Package mentalcard implements the ElGamal-on-BabyJubJub card operations
// that let N mutually distrustful peers collaboratively mask, re-mask, and
// partially unmask a deck without any single party learning a card's value
// before it is fully unmasked by every contributing player.
package mentalcard

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vctt94/pokerbisonrelay/pkg/curve"
	"github.com/vctt94/pokerbisonrelay/pkg/poseidon"
)

// Errors returned by the card operations, per spec §4.3.
var (
	ErrPkAtInfinityUnexpected = errors.New("mentalcard: pk at infinity unexpected")
	ErrNoParticipants         = errors.New("mentalcard: no participants have masked this card")
	ErrAlreadyUnmasked        = errors.New("mentalcard: card already fully unmasked")
)

// Card is the ElGamal ciphertext triple described in spec §3: an ephemeral
// public key accumulating masking nonces, the masked message point, and the
// joint public key of every player currently contributing a mask layer.
type Card struct {
	Epk curve.Point
	Msg curve.Point
	Pk  curve.Point
}

// NewUnmaskedCard wraps a raw card-value point with identity Epk/Pk, the
// state every card starts in before any player has masked it.
func NewUnmaskedCard(value curve.Point) Card {
	return Card{
		Epk: curve.Identity(),
		Msg: value,
		Pk:  curve.Identity(),
	}
}

// CardValuePoint maps a canonical card index (0..51) to its curve point,
// deterministically, the way the circuits must (an offset multiple of the
// generator keeps the mapping a simple, injective, circuit-friendly
// function of the index).
func CardValuePoint(index int) curve.Point {
	k := big.NewInt(int64(index) + 1)
	return curve.ScalarMulVarTime(curve.Generator(), k)
}

// AddPlayerToMask adds a player's long-term key contribution to a card's
// joint public key, re-masking the message if the card has already begun
// accumulating ephemeral nonces. Per spec §4.3, this only fails if pk is
// already identity on a card that has been masked (a malformed-card
// invariant violation, which cannot occur for a well-formed card).
func AddPlayerToMask(c Card, s *big.Int) (Card, error) {
	if !c.Epk.IsInfinity && c.Pk.IsInfinity {
		return Card{}, ErrPkAtInfinityUnexpected
	}

	out := c
	sG := curve.ScalarMul(curve.Generator(), s)
	out.Pk = curve.Add(c.Pk, sG)

	if !c.Epk.IsInfinity {
		sEpk := curve.ScalarMul(c.Epk, s)
		out.Msg = curve.Add(c.Msg, sEpk)
	}
	return out, nil
}

// Mask adds an ephemeral masking nonce rho, requiring the card already has
// a non-identity joint public key (i.e. at least one player has been added
// via AddPlayerToMask).
func Mask(c Card, rho *big.Int) (Card, error) {
	if c.Pk.IsInfinity {
		return Card{}, ErrNoParticipants
	}
	out := c
	rhoG := curve.ScalarMul(curve.Generator(), rho)
	out.Epk = curve.Add(c.Epk, rhoG)
	rhoPk := curve.ScalarMul(c.Pk, rho)
	out.Msg = curve.Add(c.Msg, rhoPk)
	return out, nil
}

// AddAndMask is the sequential composition of AddPlayerToMask then Mask,
// used by the shuffle/reshuffle circuits for every output card.
func AddAndMask(c Card, s, rho *big.Int) (Card, error) {
	added, err := AddPlayerToMask(c, s)
	if err != nil {
		return Card{}, err
	}
	return Mask(added, rho)
}

// PartialUnmask removes one player's contribution from a card's ciphertext.
// Applying PartialUnmask for every player who ever masked the card, in any
// order, recovers the original card value with Pk == identity (spec §8,
// property 1).
func PartialUnmask(c Card, s *big.Int) (Card, error) {
	if c.Pk.IsInfinity {
		return Card{}, ErrAlreadyUnmasked
	}
	sEpk := curve.ScalarMul(c.Epk, s)
	sG := curve.ScalarMul(curve.Generator(), s)

	out := Card{Epk: c.Epk}
	out.Msg = curve.Add(c.Msg, curve.Negate(sEpk))
	out.Pk = curve.Add(c.Pk, curve.Negate(sG))
	return out, nil
}

// IsFullyUnmasked reports whether a card has had every masking layer
// removed (Pk back at identity).
func IsFullyUnmasked(c Card) bool {
	return c.Pk.IsInfinity
}

// pointFieldElements canonicalizes a point's coordinates for hashing: an
// identity-valued point hashes as (0, 0), not its literal affine (0, 1),
// per spec §3's single required canonicalization.
func pointFieldElements(p curve.Point) (fr.Element, fr.Element) {
	if p.IsInfinity {
		return fr.Element{}, fr.Element{}
	}
	return p.X, p.Y
}

// Commitment computes H(epk.x, epk.y, msg.x, msg.y, pk.x, pk.y), the
// per-card commitment of spec §3.
func Commitment(c Card) (fr.Element, error) {
	ex, ey := pointFieldElements(c.Epk)
	mx, my := pointFieldElements(c.Msg)
	px, py := pointFieldElements(c.Pk)
	return poseidon.Hash(ex, ey, mx, my, px, py)
}
