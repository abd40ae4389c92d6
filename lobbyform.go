package main

import (
	"strings"
)

// FormMode is the screen the lobby form is on.
type FormMode string

const (
	ModeSelect FormMode = "select"
	ModeHost   FormMode = "host"
	ModeJoin   FormMode = "join"
)

// LobbyForm models the client-side join flow: collect a display name,
// optionally a room code, and emit a join request when valid. It never
// transitions into the lobby on its own; the server's game_state
// acknowledgment is the only way in.
type LobbyForm struct {
	displayName string
	roomCode    string
	mode        FormMode
	connected   bool
	pending     bool

	joinedRoom string
	status     GameStatus
}

func NewLobbyForm() *LobbyForm {
	return &LobbyForm{
		mode:   ModeSelect,
		status: StatusLobby,
	}
}

// SetConnected records transport state. Losing the connection abandons any
// in-flight join; the session it belonged to is gone.
func (f *LobbyForm) SetConnected(ok bool) {
	f.connected = ok
	if !ok {
		f.pending = false
	}
}

func (f *LobbyForm) SetDisplayName(name string) {
	f.displayName = name
}

// SetRoomCode normalizes input as it is typed: upper-cased, truncated to
// the room code length.
func (f *LobbyForm) SetRoomCode(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) > roomCodeLength {
		code = code[:roomCodeLength]
	}
	f.roomCode = code
}

// SetMode switches screens. Returning to the selector discards any
// previously entered room code.
func (f *LobbyForm) SetMode(mode FormMode) {
	if mode == ModeSelect {
		f.roomCode = ""
	}
	f.mode = mode
}

func (f *LobbyForm) Mode() FormMode     { return f.mode }
func (f *LobbyForm) RoomCode() string   { return f.roomCode }
func (f *LobbyForm) Connected() bool    { return f.connected }
func (f *LobbyForm) Pending() bool      { return f.pending }
func (f *LobbyForm) JoinedRoom() string { return f.joinedRoom }
func (f *LobbyForm) Status() GameStatus { return f.status }

// InLobby reports whether the server has acknowledged a join.
func (f *LobbyForm) InLobby() bool {
	return f.joinedRoom != ""
}

// Submit invokes emit with the trimmed display name and, in join mode, the
// normalized room code. It reports whether the emission fired. It never
// fires while disconnected, while a join is in flight, with an empty name,
// or in join mode with an empty code.
func (f *LobbyForm) Submit(emit func(displayName, roomCode string)) bool {
	name := strings.TrimSpace(f.displayName)

	if !f.connected || f.pending || name == "" {
		return false
	}
	if f.mode == ModeJoin && f.roomCode == "" {
		return false
	}

	code := ""
	if f.mode == ModeJoin {
		code = f.roomCode
	}

	f.pending = true
	emit(name, code)
	return true
}

// ApplyState ingests an authoritative snapshot, completing any in-flight
// join with the server-assigned room code.
func (f *LobbyForm) ApplyState(msg GameStateMessage) {
	f.pending = false
	f.joinedRoom = msg.RoomCode
	f.status = msg.Status
}

// ApplyJoinError completes an in-flight join unsuccessfully.
func (f *LobbyForm) ApplyJoinError() {
	f.pending = false
}
