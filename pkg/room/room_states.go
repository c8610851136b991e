package room

import "github.com/vctt94/pokerbisonrelay/pkg/statemachine"

// Room's own Rob Pike state functions track lifecycle transitions for
// observability (the callback hook), the same shape as poker.Game's and
// poker.Player's state machines; unlike Game's, Room's actual phase
// transitions are driven by the explicit orchestration in room_hand.go
// (shuffle completion, unmask completion, betting-round advancement),
// which calls SetState alongside setting the phase field directly so the
// two never drift.

func stateWaiting(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("WAITING", statemachine.StateEntered)
	}
	return stateWaiting
}

func stateShuffle(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("SHUFFLE", statemachine.StateEntered)
	}
	return stateShuffle
}

func stateDealing(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("DEALING", statemachine.StateEntered)
	}
	return stateDealing
}

func stateUnmaskingHole(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("UNMASKING_HOLE", statemachine.StateEntered)
	}
	return stateUnmaskingHole
}

func stateBetting(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("BETTING", statemachine.StateEntered)
	}
	return stateBetting
}

func stateUnmaskingCommunity(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("UNMASKING_COMMUNITY", statemachine.StateEntered)
	}
	return stateUnmaskingCommunity
}

func stateShowdown(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("SHOWDOWN", statemachine.StateEntered)
	}
	return stateShowdown
}

func stateSettling(entity *Room, callback func(stateName string, event statemachine.StateEvent)) RoomStateFn {
	if callback != nil {
		callback("SETTLING", statemachine.StateEntered)
	}
	return stateWaiting
}
