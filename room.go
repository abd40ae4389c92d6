package main

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Player is one roster entry. The roster preserves join order, and the
// player at the head of it is the host.
type Player struct {
	ID        string
	Username  string
	SessionID string
	JoinedAt  time.Time
}

type Room struct {
	mgr    *RoomManager
	code   string
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*Client]bool
	players []*Player
	status  GameStatus
	locked  bool
	closed  bool

	createdAt  time.Time
	lastActive time.Time
}

func newRoom(mgr *RoomManager, code string, logger *zap.Logger) *Room {
	now := time.Now()
	return &Room{
		mgr:        mgr,
		code:       code,
		logger:     logger.With(zap.String("room_code", code)),
		clients:    make(map[*Client]bool),
		status:     StatusLobby,
		createdAt:  now,
		lastActive: now,
	}
}

// join admits a client to the roster. The new player sees a player_joined
// broadcast followed by the authoritative game_state snapshot; receipt of
// that snapshot is the client's cue to enter the lobby.
func (r *Room) join(c *Client, username string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errRoomNotFound
	}
	if r.locked {
		return nil, errRoomLocked
	}

	r.lastActive = time.Now()

	player := &Player{
		ID:        uuid.NewString(),
		Username:  username,
		SessionID: c.sessionID,
		JoinedAt:  r.lastActive,
	}
	r.players = append(r.players, player)
	r.clients[c] = true

	r.broadcastLocked(PlayerJoinedMessage{
		Type:     "player_joined",
		PlayerID: player.ID,
		Username: player.Username,
		RoomCode: r.code,
	})
	r.sendLocked(c, r.snapshotLocked())

	r.logger.Info("player joined",
		zap.String("player_id", player.ID),
		zap.String("username", player.Username),
		zap.String("session_id", c.sessionID))

	return player, nil
}

// leave drops the client and its roster entry, if either is still present.
// Safe to call more than once per client; only the first call does work.
func (r *Room) leave(c *Client) {
	r.mu.Lock()

	if _, ok := r.clients[c]; ok {
		delete(r.clients, c)
		c.closeSend()
	}

	r.lastActive = time.Now()
	removed := r.removePlayerBySessionLocked(c.sessionID)
	empty := len(r.players) == 0

	r.mu.Unlock()

	if removed != nil {
		r.logger.Info("player left",
			zap.String("player_id", removed.ID),
			zap.String("username", removed.Username))
	}
	if empty {
		r.mgr.removeRoom(r)
	}
}

// removePlayerBySessionLocked removes the roster entry owned by sessionID
// and broadcasts player_left to whoever remains.
func (r *Room) removePlayerBySessionLocked(sessionID string) *Player {
	for i, p := range r.players {
		if p.SessionID != sessionID {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		r.broadcastLocked(PlayerLeftMessage{
			Type:     "player_left",
			PlayerID: p.ID,
			Username: p.Username,
		})
		return p
	}
	return nil
}

func (r *Room) hostLocked() *Player {
	if len(r.players) == 0 {
		return nil
	}
	return r.players[0]
}

func (r *Room) isHostLocked(c *Client) bool {
	host := r.hostLocked()
	return host != nil && host.SessionID == c.sessionID
}

// handleCommand processes host-only commands: start_game, end_game,
// lock_room, kick.
func (r *Room) handleCommand(c *Client, msg ClientMessage) {
	r.mu.Lock()

	r.lastActive = time.Now()

	if !r.isHostLocked(c) {
		r.sendLocked(c, ErrorMessage{Type: "error", Message: errNotHost.Error()})
		r.mu.Unlock()
		return
	}

	empty := false

	switch msg.Type {
	case "start_game":
		switch {
		case len(r.players) == 0:
			r.sendLocked(c, ErrorMessage{Type: "error", Message: errNoPlayers.Error()})
		case r.status != StatusLobby:
			r.sendLocked(c, ErrorMessage{Type: "error", Message: "the game has already started"})
		default:
			r.status = StatusPlaying
			r.broadcastLocked(GameStartedMessage{Type: "game_started", RoomCode: r.code})
			r.broadcastLocked(r.snapshotLocked())
			r.logger.Info("game started", zap.Int("players", len(r.players)))
		}

	case "end_game":
		if r.status != StatusPlaying {
			r.sendLocked(c, ErrorMessage{Type: "error", Message: "the game is not running"})
		} else {
			r.status = StatusEnded
			r.broadcastLocked(GameEndedMessage{Type: "game_ended", RoomCode: r.code})
			r.broadcastLocked(r.snapshotLocked())
			r.logger.Info("game ended")
		}

	case "lock_room":
		r.locked = msg.Lock != nil && *msg.Lock
		r.broadcastLocked(RoomStateMessage{Type: "room_state", Locked: r.locked})
		r.logger.Info("room lock changed", zap.Bool("locked", r.locked))

	case "kick":
		empty = r.kickLocked(c, msg.TargetID)
	}

	r.mu.Unlock()

	if empty {
		r.mgr.removeRoom(r)
	}
}

// kickLocked removes the player with the given ID. Reports whether the
// roster is now empty.
func (r *Room) kickLocked(c *Client, targetID string) bool {
	var target *Player
	for i, p := range r.players {
		if p.ID == targetID {
			target = p
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	if target == nil {
		r.sendLocked(c, ErrorMessage{Type: "error", Message: "no such player"})
		return false
	}

	for client := range r.clients {
		if client.sessionID != target.SessionID {
			continue
		}
		client.trySend(KickedMessage{
			Type:    "kicked",
			Message: "You have been removed by the host.",
		})
		delete(r.clients, client)
		client.closeSend()
		break
	}

	r.broadcastLocked(PlayerLeftMessage{
		Type:     "player_left",
		PlayerID: target.ID,
		Username: target.Username,
	})

	r.logger.Info("player kicked",
		zap.String("player_id", target.ID),
		zap.String("username", target.Username))

	return len(r.players) == 0
}

// chat relays a message to everyone in the room under the sender's name.
func (r *Room) chat(c *Client, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActive = time.Now()

	var from *Player
	for _, p := range r.players {
		if p.SessionID == c.sessionID {
			from = p
			break
		}
	}
	if from == nil {
		return
	}

	r.broadcastLocked(ChatMessage{Type: "chat", From: from.Username, Text: text})
}

// sendState replies to a state refresh request.
func (r *Room) sendState(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sendLocked(c, r.snapshotLocked())
}

func (r *Room) snapshotLocked() GameStateMessage {
	players := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerInfo{
			ID:       p.ID,
			Username: p.Username,
			JoinedAt: p.JoinedAt,
		})
	}

	hostID := ""
	if host := r.hostLocked(); host != nil {
		hostID = host.ID
	}

	return GameStateMessage{
		Type:     "game_state",
		RoomCode: r.code,
		Status:   r.status,
		HostID:   hostID,
		Players:  players,
	}
}

func (r *Room) broadcastLocked(msg any) {
	for client := range r.clients {
		if !client.trySend(msg) {
			delete(r.clients, client)
			client.closeSend()
		}
	}
}

func (r *Room) sendLocked(c *Client, msg any) {
	if !r.clients[c] {
		return
	}
	if !c.trySend(msg) {
		delete(r.clients, c)
		c.closeSend()
	}
}

// closeAll disconnects every client of this room (used by the reaper).
func (r *Room) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for c := range r.clients {
		c.closeSend()
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(r.clients, c)
	}
	r.players = nil
}

func (r *Room) playerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func (r *Room) idleSince() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}
