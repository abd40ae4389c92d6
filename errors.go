package main

import (
	"errors"
)

// Join failures surfaced to clients as join_error messages. The text is
// user-facing; keep it presentable.
var (
	errNameRequired  = errors.New("a display name is required")
	errBadRoomCode   = errors.New("room codes are exactly six characters")
	errRoomNotFound  = errors.New("that room does not exist")
	errRoomLocked    = errors.New("that room is locked; no new players may join")
	errAlreadyInRoom = errors.New("this connection has already joined a room")
)

// Command failures surfaced as error messages.
var (
	errNotInRoom = errors.New("join a room first")
	errNotHost   = errors.New("only the host can do that")
	errNoPlayers = errors.New("there are no players in this room")
)
