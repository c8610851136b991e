// Package wire defines the JSON message schema of spec §6: every message
// is a JSON object with a "type" discriminator, decimal-string big
// integers, and curve points as coordinate-string pairs, matching the
// teacher's own preference for a handful of small, explicit message
// structs (pkg/server/events.go) over a single catch-all envelope type.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/vctt94/pokerbisonrelay/pkg/curve"
	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
)

// Type is the wire message discriminator.
type Type string

// Client -> Server message types (spec §6).
const (
	TypeJoinRoom         Type = "join_room"
	TypeLeaveRoom        Type = "leave_room"
	TypeReady            Type = "ready"
	TypeSubmitShuffle    Type = "submit_shuffle"
	TypeSubmitUnmask     Type = "submit_unmask"
	TypeSubmitAction     Type = "submit_action"
	TypeSubmitHandReveal Type = "submit_hand_reveal"
)

// Server -> Client message types (spec §6).
const (
	TypeConnected              Type = "connected"
	TypeRoomJoined             Type = "room_joined"
	TypePlayerJoined           Type = "player_joined"
	TypePlayerLeft             Type = "player_left"
	TypePlayerReady            Type = "player_ready"
	TypeGameStarted            Type = "game_started"
	TypeShuffleTurn            Type = "shuffle_turn"
	TypeShuffleComplete        Type = "shuffle_complete"
	TypeCardsDealt             Type = "cards_dealt"
	TypeUnmaskRequest          Type = "unmask_request"
	TypeCardPartiallyUnmasked  Type = "card_partially_unmasked"
	TypeCardFullyUnmasked      Type = "card_fully_unmasked"
	TypePlayerTurn             Type = "player_turn"
	TypeActionResult           Type = "action_result"
	TypeStreetAdvanced         Type = "street_advanced"
	TypeRevealHandRequest      Type = "reveal_hand_request"
	TypeHandRevealed           Type = "hand_revealed"
	TypeShowdown               Type = "showdown"
	TypeGameEnded              Type = "game_ended"
	TypeError                  Type = "error"
)

// CommunitySentinel is the forPlayerId value of an unmask_request for a
// community card, per spec §6.
const CommunitySentinel = "community"

// Envelope is the outer shape of every wire message: a type tag plus the
// type-specific payload, deferred as raw JSON until the type is known.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals data into an Envelope and then the given payload
// pointer, the common two-step pattern every handler uses.
func Decode(data []byte, payload interface{}) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("wire: decode envelope: %w", err)
	}
	if payload != nil && len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return env.Type, fmt.Errorf("wire: decode %s payload: %w", env.Type, err)
		}
	}
	return env.Type, nil
}

// Encode wraps a typed payload into an Envelope and marshals it.
func Encode(t Type, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}

// Int is a big-integer-safe decimal string per spec §6.
type Int string

// NewInt formats an int64 as a wire Int.
func NewInt(v int64) Int {
	return Int(fmt.Sprintf("%d", v))
}

// Point is a curve point as a pair of decimal-string coordinates.
type Point struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// PointFromCurve converts a curve.Point to its wire form, using the
// point's actual affine coordinates. Identity is (0, 1), the curve's real
// neutral element (curve.Identity) — not the (0, 0) canonicalization
// pkg/mentalcard uses internally for its commitment hash, which would not
// round-trip through curve.NewPoint's on-curve check.
func PointFromCurve(p curve.Point) Point {
	return Point{X: p.X.String(), Y: p.Y.String()}
}

// ToCurve converts a wire Point back to a curve.Point.
func (p Point) ToCurve() (curve.Point, error) {
	var x, y fr.Element
	if _, err := x.SetString(p.X); err != nil {
		return curve.Point{}, fmt.Errorf("wire: point.x %q: %w", p.X, err)
	}
	if _, err := y.SetString(p.Y); err != nil {
		return curve.Point{}, fmt.Errorf("wire: point.y %q: %w", p.Y, err)
	}
	return curve.NewPoint(x, y)
}

// CardTuple is the 6-tuple of coordinate strings spec §6 uses for a masked
// card: (epk.x, epk.y, msg.x, msg.y, pk.x, pk.y).
type CardTuple [6]string

// CardTupleFromMentalCard converts a mentalcard.Card to its wire form.
func CardTupleFromMentalCard(c mentalcard.Card) CardTuple {
	epk := PointFromCurve(c.Epk)
	msg := PointFromCurve(c.Msg)
	pk := PointFromCurve(c.Pk)
	return CardTuple{epk.X, epk.Y, msg.X, msg.Y, pk.X, pk.Y}
}

// ToMentalCard converts a wire CardTuple back to a mentalcard.Card.
func (c CardTuple) ToMentalCard() (mentalcard.Card, error) {
	epk, err := Point{X: c[0], Y: c[1]}.ToCurve()
	if err != nil {
		return mentalcard.Card{}, fmt.Errorf("wire: card epk: %w", err)
	}
	msg, err := Point{X: c[2], Y: c[3]}.ToCurve()
	if err != nil {
		return mentalcard.Card{}, fmt.Errorf("wire: card msg: %w", err)
	}
	pk, err := Point{X: c[4], Y: c[5]}.ToCurve()
	if err != nil {
		return mentalcard.Card{}, fmt.Errorf("wire: card pk: %w", err)
	}
	return mentalcard.Card{Epk: epk, Msg: msg, Pk: pk}, nil
}
