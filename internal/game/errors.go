package game

import "errors"

// Sentinel errors returned by room operations. Handlers match them with
// errors.Is to pick the right wire result code.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadySeated       = errors.New("account already seated in room")
	ErrSeatNotFound        = errors.New("account has no seat in room")
	ErrWrongPhase          = errors.New("operation not allowed in current phase")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrNotOwner            = errors.New("only the room owner may do this")
	ErrInsufficientPlayers = errors.New("not enough ready players")
	ErrCardsNotHeld        = errors.New("cards not in hand")
	ErrIllegalHandType     = errors.New("cards do not form a playable hand")
	ErrHandDoesNotBeat     = errors.New("hand does not beat the previous play")
	ErrMustLead            = errors.New("cannot pass when leading a trick")
	ErrRoomClosed          = errors.New("room has been closed")
)
