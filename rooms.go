package main

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	roomCodeLength = 6

	// Upper-case alphanumerics, minus the characters people misread
	// off a friend's screen (I/O/0/1).
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// RoomManager owns the registry of live rooms, keyed by room code.
type RoomManager struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	idleTimeout time.Duration
	logger      *zap.Logger
}

func newRoomManager(idleTimeout time.Duration, logger *zap.Logger) *RoomManager {
	m := &RoomManager{
		rooms:       make(map[string]*Room),
		idleTimeout: idleTimeout,
		logger:      logger,
	}
	if idleTimeout > 0 {
		go m.reaperLoop()
	}
	return m
}

// Join validates a join request and admits the client, creating a new room
// when the code is the empty-string sentinel.
func (m *RoomManager) Join(c *Client, username, roomCode string) (*Room, *Player, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, errNameRequired
	}

	roomCode = strings.ToUpper(strings.TrimSpace(roomCode))

	var room *Room
	created := false

	m.mu.Lock()
	if roomCode == "" {
		code := m.newRoomCodeLocked()
		room = newRoom(m, code, m.logger)
		m.rooms[code] = room
		created = true
	} else {
		if len(roomCode) != roomCodeLength {
			m.mu.Unlock()
			return nil, nil, errBadRoomCode
		}
		var ok bool
		room, ok = m.rooms[roomCode]
		if !ok {
			m.mu.Unlock()
			return nil, nil, errRoomNotFound
		}
	}
	m.mu.Unlock()

	player, err := room.join(c, username)
	if err != nil {
		if created {
			m.removeRoom(room)
		}
		return nil, nil, err
	}

	if created {
		m.logger.Info("room created",
			zap.String("room_code", room.code),
			zap.String("host", player.Username))
	}

	return room, player, nil
}

// newRoomCodeLocked generates a crypto-random room code and ensures it
// doesn't collide with a live room.
func (m *RoomManager) newRoomCodeLocked() string {
	for {
		buf := make([]byte, roomCodeLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, roomCodeLength)
		for i := range out {
			out[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
		}
		code := string(out)

		if _, exists := m.rooms[code]; !exists {
			return code
		}
	}
}

// removeRoom deletes the room from the registry if it is still the
// registered instance for its code.
func (m *RoomManager) removeRoom(r *Room) {
	m.mu.Lock()
	current, ok := m.rooms[r.code]
	if ok && current == r {
		delete(m.rooms, r.code)
		m.mu.Unlock()
		m.logger.Info("room removed", zap.String("room_code", r.code))
		return
	}
	m.mu.Unlock()
}

// Exists reports whether a room with this code is live.
func (m *RoomManager) Exists(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[strings.ToUpper(code)]
	return ok
}

// Counts returns the number of live rooms and seated players, for the
// health endpoint.
func (m *RoomManager) Counts() (rooms, players int) {
	m.mu.Lock()
	snapshot := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		snapshot = append(snapshot, r)
	}
	m.mu.Unlock()

	for _, r := range snapshot {
		players += r.playerCount()
	}
	return len(snapshot), players
}

// reaperLoop periodically ends rooms that have been idle longer than
// idleTimeout, disconnecting any remaining clients.
func (m *RoomManager) reaperLoop() {
	ticker := time.NewTicker(m.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-m.idleTimeout)

		m.mu.Lock()
		for code, room := range m.rooms {
			if room.idleSince().Before(cutoff) {
				delete(m.rooms, code)
				go room.closeAll()
				m.logger.Info("room reaped", zap.String("room_code", code))
			}
		}
		m.mu.Unlock()
	}
}
