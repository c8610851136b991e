package server

import (
	"context"
	"errors"
	"strconv"

	"github.com/vctt94/pokerbisonrelay/pkg/mentalcard"
	"github.com/vctt94/pokerbisonrelay/pkg/poker"
	"github.com/vctt94/pokerbisonrelay/pkg/proof"
	"github.com/vctt94/pokerbisonrelay/pkg/protoerr"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/wire"
)

// handleMessage is the websocket connection manager's OnMessage hook: every
// inbound frame from a player lands here, gets decoded against the wire
// schema, and is routed by its type.
func (s *Server) handleMessage(playerID string, data []byte) {
	t, err := wire.Decode(data, nil)
	if err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	switch t {
	case wire.TypeJoinRoom:
		s.handleJoinRoom(playerID, data)
	case wire.TypeLeaveRoom:
		s.handleLeaveRoom(playerID)
	case wire.TypeReady:
		s.handleReady(playerID, data)
	case wire.TypeSubmitShuffle:
		s.handleSubmitShuffle(playerID, data)
	case wire.TypeSubmitUnmask:
		s.handleSubmitUnmask(playerID, data)
	case wire.TypeSubmitAction:
		s.handleSubmitAction(playerID, data)
	case wire.TypeSubmitHandReveal:
		s.handleSubmitHandReveal(playerID, data)
	default:
		s.sendError(playerID, protoerr.InvalidMessage, "unknown message type: "+string(t))
	}
}

func (s *Server) handleJoinRoom(playerID string, data []byte) {
	var p wire.JoinRoomPayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	r := s.getOrCreateRoom(p.RoomID)
	seat, err := r.Join(playerID, p.PlayerName, p.PublicKeyX, p.PublicKeyY)
	if err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}

	s.mu.Lock()
	s.playerRoom[playerID] = r.ID()
	s.mu.Unlock()

	s.send(playerID, wire.TypeRoomJoined, roomJoinedPayload(r, playerID, seat.SeatIndex))
	s.persistRoomAsync(r, "join")
}

func (s *Server) handleLeaveRoom(playerID string) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	if err := r.Leave(playerID); err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}

	s.mu.Lock()
	delete(s.playerRoom, playerID)
	s.mu.Unlock()

	s.persistRoomAsync(r, "leave")
}

func (s *Server) handleReady(playerID string, data []byte) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	var p wire.ReadyPayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}
	if err := r.SetReady(playerID, p.IsReady); err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}
	s.persistRoomAsync(r, "ready")
}

// verify runs the bounded Groth16 verification pool against a submission's
// attached proof, the mandatory gate every proof-carrying Apply* call goes
// through: a failing or malformed proof never reaches pkg/room. The
// coordinator never trusts a client-asserted state transition without
// checking its proof first.
func (s *Server) verify(playerID string, circuit proof.CircuitType, proofBlob, publicSignals []byte) bool {
	if s.verifier == nil {
		return true
	}
	if err := s.verifier.Verify(context.Background(), circuit, proofBlob, publicSignals); err != nil {
		s.sendError(playerID, protoerr.InvalidProof, err.Error())
		return false
	}
	return true
}

func (s *Server) handleSubmitShuffle(playerID string, data []byte) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	var p wire.SubmitShufflePayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if !s.verify(playerID, proof.Shuffle, p.Proof, p.PublicSignals) {
		return
	}

	var shuffled [mentalcard.NumCards]mentalcard.Card
	for i, tuple := range p.ShuffledDeck {
		card, err := tuple.ToMentalCard()
		if err != nil {
			s.sendError(playerID, protoerr.InvalidMessage, err.Error())
			return
		}
		shuffled[i] = card
	}

	if err := r.ApplyShuffle(playerID, shuffled, p.DeckCommitment); err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}
	s.persistRoomAsync(r, "shuffle")
}

func (s *Server) handleSubmitUnmask(playerID string, data []byte) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	var p wire.SubmitUnmaskPayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if !s.verify(playerID, proof.Unmask, p.Proof, p.PublicSignals) {
		return
	}

	card, err := p.UnmaskedCard.ToMentalCard()
	if err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if err := r.ApplyUnmask(p.CardIndex, playerID, card); err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}
	s.persistRoomAsync(r, "unmask")
}

func (s *Server) handleSubmitAction(playerID string, data []byte) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	var p wire.SubmitActionPayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if !s.verify(playerID, proof.GameAction, p.Proof, p.PublicSignals) {
		return
	}

	amount, err := intToInt64(p.Amount)
	if err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if err := r.ApplyAction(playerID, poker.ActionType(p.ActionType), amount); err != nil {
		s.sendError(playerID, roomErrCode(err), err.Error())
		return
	}
	s.persistRoomAsync(r, "action")
}

func (s *Server) handleSubmitHandReveal(playerID string, data []byte) {
	r, ok := s.roomForPlayer(playerID)
	if !ok {
		s.sendError(playerID, protoerr.NotInRoom, "not in a room")
		return
	}
	var p wire.SubmitHandRevealPayload
	if _, err := wire.Decode(data, &p); err != nil {
		s.sendError(playerID, protoerr.InvalidMessage, err.Error())
		return
	}

	if !s.verify(playerID, proof.HandEval, p.Proof, p.PublicSignals) {
		return
	}

	for _, idx := range p.CardIndices {
		card := r.CardAt(idx)
		if err := r.ApplyHandReveal(playerID, idx, card); err != nil {
			s.sendError(playerID, roomErrCode(err), err.Error())
			return
		}
	}
	s.send(playerID, wire.TypeHandRevealed, wire.HandRevealedPayload{
		PlayerID: playerID, HandRank: p.HandRank, HandDescription: p.HandDescription,
		CardIndices: p.CardIndices[:],
	})
	s.persistRoomAsync(r, "hand_reveal")
}

// intToInt64 parses a wire.Int, the decimal-string big integer wire
// messages use for amounts.
func intToInt64(v wire.Int) (int64, error) {
	return strconv.ParseInt(string(v), 10, 64)
}

// roomErrCode maps a pkg/room error to the wire protoerr.Code it should be
// reported as, so a rejected transition always carries a meaningful code
// back to the client instead of a bare message.
func roomErrCode(err error) protoerr.Code {
	switch {
	case errors.Is(err, room.ErrRoomFull):
		return protoerr.RoomFull
	case errors.Is(err, room.ErrAlreadyJoined):
		return protoerr.InvalidMessage
	case errors.Is(err, room.ErrNotInRoom):
		return protoerr.NotInRoom
	case errors.Is(err, room.ErrGameInProgress):
		return protoerr.InvalidState
	case errors.Is(err, room.ErrNotYourShuffleTurn):
		return protoerr.NotYourTurn
	case errors.Is(err, room.ErrUnmaskCardNotRegistered):
		return protoerr.InvalidCard
	case errors.Is(err, room.ErrNotYourTurn):
		return protoerr.NotYourTurn
	case errors.Is(err, room.ErrNotActiveAtShowdown):
		return protoerr.InvalidState
	default:
		return protoerr.InvalidAction
	}
}
