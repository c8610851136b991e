package server

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerbisonrelay/pkg/proof"
	"github.com/vctt94/pokerbisonrelay/pkg/protoerr"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/wire"
)

func TestRoomErrCodeMapsEverySentinel(t *testing.T) {
	cases := []struct {
		err  error
		want protoerr.Code
	}{
		{room.ErrRoomFull, protoerr.RoomFull},
		{room.ErrAlreadyJoined, protoerr.InvalidMessage},
		{room.ErrNotInRoom, protoerr.NotInRoom},
		{room.ErrGameInProgress, protoerr.InvalidState},
		{room.ErrNotYourShuffleTurn, protoerr.NotYourTurn},
		{room.ErrUnmaskCardNotRegistered, protoerr.InvalidCard},
		{room.ErrNotYourTurn, protoerr.NotYourTurn},
		{room.ErrNotActiveAtShowdown, protoerr.InvalidState},
	}
	for _, c := range cases {
		require.Equal(t, c.want, roomErrCode(c.err))
	}
}

func TestRoomErrCodeDefaultsToInvalidAction(t *testing.T) {
	require.Equal(t, protoerr.InvalidAction, roomErrCode(require.AnError))
}

func TestVerifyRejectsWhenKeyNotLoaded(t *testing.T) {
	s := testServer(t)
	s.verifier = proof.NewVerifier(testLogBackend(t).Logger("VERIFIER"), 1)

	ok := s.verify("p1", proof.Shuffle, []byte("proof"), []byte("signals"))
	require.False(t, ok, "verification must fail before any shuffle/unmask/action/reveal is applied when no key is loaded")
}

func TestVerifyPassesWhenVerifierUnset(t *testing.T) {
	s := testServer(t)
	s.verifier = nil

	ok := s.verify("p1", proof.Shuffle, nil, nil)
	require.True(t, ok)
}

func TestIntToInt64RoundTripsWireAmounts(t *testing.T) {
	n, err := intToInt64(wire.NewInt(42))
	require.NoError(t, err)
	require.Equal(t, int64(42), n)

	_, err = intToInt64(wire.Int("not-a-number"))
	require.Error(t, err)
}
