package domain

import "errors"

// Ошибки пользовательского уровня. Все они нефатальны: действие отклоняется,
// состояние матча не меняется, клиенту уходит читаемое сообщение.
var (
	ErrNotEnoughPlayers = errors.New("not enough players to start the race")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomGone         = errors.New("room is no longer available")
	ErrNotHost          = errors.New("only the host can do that")
	ErrWrongStatus      = errors.New("action not allowed in current match status")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotInRoom        = errors.New("player is not in a room")
)
