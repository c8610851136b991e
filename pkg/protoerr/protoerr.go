// Package protoerr defines the closed set of wire error codes the
// coordinator may send back to a client in an `error` message (spec §7),
// mirroring the way the teacher's pkg/server/handlers.go maps internal
// failures onto a fixed set of gRPC codes.Code values — here onto a fixed
// set of string codes instead, since the wire protocol is JSON.
package protoerr

// Code is a wire-level error code. The zero value is never sent.
type Code string

// Protocol-level errors: reply to the sender, no state change.
const (
	InvalidMessage Code = "INVALID_MESSAGE"
	NotConnected   Code = "NOT_CONNECTED"
	NotInRoom      Code = "NOT_IN_ROOM"
	RoomNotFound   Code = "ROOM_NOT_FOUND"
	RoomFull       Code = "ROOM_FULL"
)

// Turn-level errors: reply to the sender, no state change.
const (
	NotYourTurn     Code = "NOT_YOUR_TURN"
	InvalidState    Code = "INVALID_STATE"
	InvalidAction   Code = "INVALID_ACTION"
	InvalidCard     Code = "INVALID_CARD"
	AlreadyUnmasked Code = "ALREADY_UNMASKED"
	InvalidUnmask   Code = "INVALID_UNMASK"
)

// Cryptographic errors: reply to the sender, never apply the transition.
const (
	InvalidProof       Code = "INVALID_PROOF"
	CommitmentMismatch Code = "COMMITMENT_MISMATCH"
)

// Busy signals the per-room verification-queue backpressure limit was hit
// (spec §5: "additional submissions are rejected with BUSY").
const Busy Code = "BUSY"

// Error is a protoerr.Code carrying a human-readable message, implementing
// the standard error interface so internal code can return it like any
// other error and have the coordinator's edge translate it directly into
// a wire `error` message without re-classifying it.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New constructs an *Error for the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}
