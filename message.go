package main

import (
	"time"
)

// GameStatus is the lifecycle phase of a room.
type GameStatus string

const (
	StatusLobby   GameStatus = "lobby"
	StatusPlaying GameStatus = "playing"
	StatusEnded   GameStatus = "ended"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "join_room", "start_game", "end_game", "lock_room", "kick", "chat", "get_game_state"
	Username string `json:"username,omitempty"` // join_room
	RoomCode string `json:"roomCode,omitempty"` // join_room; empty means "create a new room"
	Text     string `json:"text,omitempty"`     // chat
	TargetID string `json:"targetId,omitempty"` // kick
	Lock     *bool  `json:"lock,omitempty"`     // lock_room
}

// ConnectedMessage is sent once, immediately after the upgrade, so the
// client learns its session identifier.
type ConnectedMessage struct {
	Type      string `json:"type"` // "connected"
	SessionID string `json:"sessionId"`
}

// JoinErrorMessage is sent to a single client whose join_room was rejected.
type JoinErrorMessage struct {
	Type    string `json:"type"` // "join_error"
	Message string `json:"message"`
}

// ErrorMessage is sent to a single client whose command was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// PlayerJoinedMessage is broadcast to the room, including the new player.
type PlayerJoinedMessage struct {
	Type     string `json:"type"` // "player_joined"
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	RoomCode string `json:"roomCode"`
}

// PlayerLeftMessage is broadcast to the room after a roster removal.
type PlayerLeftMessage struct {
	Type     string `json:"type"` // "player_left"
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
}

// PlayerInfo is the roster entry inside a state snapshot.
type PlayerInfo struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

// GameStateMessage is the authoritative snapshot of a room. It doubles as
// the join acknowledgment: a client only treats itself as "in the lobby"
// once it has received one of these carrying the server-assigned room code.
type GameStateMessage struct {
	Type     string       `json:"type"` // "game_state"
	RoomCode string       `json:"roomCode"`
	Status   GameStatus   `json:"gameStatus"`
	HostID   string       `json:"hostId,omitempty"`
	Players  []PlayerInfo `json:"players"`
}

// GameStartedMessage is broadcast when the host starts the game.
type GameStartedMessage struct {
	Type     string `json:"type"` // "game_started"
	RoomCode string `json:"roomCode"`
}

// GameEndedMessage is broadcast when the host ends the game.
type GameEndedMessage struct {
	Type     string `json:"type"` // "game_ended"
	RoomCode string `json:"roomCode"`
}

// RoomStateMessage informs clients about lock/unlock changes.
type RoomStateMessage struct {
	Type   string `json:"type"` // "room_state"
	Locked bool   `json:"locked"`
}

// KickedMessage is sent to a player removed by the host.
type KickedMessage struct {
	Type    string `json:"type"` // "kicked"
	Message string `json:"message"`
}

// ChatMessage is broadcast to the room.
type ChatMessage struct {
	Type string `json:"type"` // "chat"
	From string `json:"from"`
	Text string `json:"text"`
}
