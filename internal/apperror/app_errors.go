package apperror

import "errors"

var (
	ErrLobbyFull          = errors.New("lobby is already full")
	ErrNoSuchLobby        = errors.New("no such lobby")
	ErrAlreadyInLobby     = errors.New("player is already in a lobby")
	ErrConnectionNotFound = errors.New("connection not found")
)
