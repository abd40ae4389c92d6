package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seatPlayers joins n clients into one room and clears their queues.
func seatPlayers(t *testing.T, m *RoomManager, names ...string) (*Room, []*Client, []*Player) {
	t.Helper()

	var (
		room    *Room
		clients []*Client
		players []*Player
	)

	for i, name := range names {
		c := newFakeClient("session-" + name)
		code := ""
		if room != nil {
			code = room.code
		}
		joined, player, err := m.Join(c, name, code)
		require.NoError(t, err)
		if i == 0 {
			room = joined
		}
		c.room = joined
		clients = append(clients, c)
		players = append(players, player)
	}

	for _, c := range clients {
		drain(c)
	}

	return room, clients, players
}

func TestFirstPlayerIsHost(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann", "Bob")

	room.sendState(clients[1])
	state := lastState(t, clients[1])
	assert.Equal(t, players[0].ID, state.HostID)
	require.Len(t, state.Players, 2)
	assert.Equal(t, "Ann", state.Players[0].Username, "roster preserves join order")
}

func TestHostPromotionOnLeave(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann", "Bob", "Cam")

	room.leave(clients[0])

	room.sendState(clients[1])
	state := lastState(t, clients[1])
	assert.Equal(t, players[1].ID, state.HostID, "next in join order becomes host")
	require.Len(t, state.Players, 2)
}

func TestLeaveBroadcastsPlayerLeftOnce(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann", "Bob")

	room.leave(clients[1])
	room.leave(clients[1])

	left := 0
	for _, msg := range drain(clients[0]) {
		if pl, ok := msg.(PlayerLeftMessage); ok {
			left++
			assert.Equal(t, players[1].ID, pl.PlayerID)
			assert.Equal(t, "Bob", pl.Username)
		}
	}
	assert.Equal(t, 1, left)
}

func TestStartGameByHost(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann", "Bob")

	room.handleCommand(clients[0], ClientMessage{Type: "start_game"})

	for _, c := range clients {
		msgs := drain(c)
		var started bool
		for _, msg := range msgs {
			if _, ok := msg.(GameStartedMessage); ok {
				started = true
			}
			if s, ok := msg.(GameStateMessage); ok {
				assert.Equal(t, StatusPlaying, s.Status)
			}
		}
		assert.True(t, started, "everyone hears game_started")
	}
}

func TestStartGameByNonHostRejected(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann", "Bob")

	room.handleCommand(clients[1], ClientMessage{Type: "start_game"})

	var rejected bool
	for _, msg := range drain(clients[1]) {
		if e, ok := msg.(ErrorMessage); ok {
			rejected = true
			assert.Equal(t, errNotHost.Error(), e.Message)
		}
	}
	assert.True(t, rejected)

	room.sendState(clients[0])
	assert.Equal(t, StatusLobby, lastState(t, clients[0]).Status)
}

func TestStartGameTwiceRejected(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann")

	room.handleCommand(clients[0], ClientMessage{Type: "start_game"})
	drain(clients[0])

	room.handleCommand(clients[0], ClientMessage{Type: "start_game"})

	var rejected bool
	for _, msg := range drain(clients[0]) {
		if _, ok := msg.(ErrorMessage); ok {
			rejected = true
		}
	}
	assert.True(t, rejected)
}

func TestEndGameTransitions(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann")

	// Ending before starting is rejected.
	room.handleCommand(clients[0], ClientMessage{Type: "end_game"})
	var rejected bool
	for _, msg := range drain(clients[0]) {
		if _, ok := msg.(ErrorMessage); ok {
			rejected = true
		}
	}
	assert.True(t, rejected)

	room.handleCommand(clients[0], ClientMessage{Type: "start_game"})
	drain(clients[0])
	room.handleCommand(clients[0], ClientMessage{Type: "end_game"})

	var ended bool
	for _, msg := range drain(clients[0]) {
		if _, ok := msg.(GameEndedMessage); ok {
			ended = true
		}
		if s, ok := msg.(GameStateMessage); ok {
			assert.Equal(t, StatusEnded, s.Status)
		}
	}
	assert.True(t, ended)
}

func TestLockedRoomRejectsJoins(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann")

	locked := true
	room.handleCommand(clients[0], ClientMessage{Type: "lock_room", Lock: &locked})

	var sawLock bool
	for _, msg := range drain(clients[0]) {
		if rs, ok := msg.(RoomStateMessage); ok {
			sawLock = true
			assert.True(t, rs.Locked)
		}
	}
	assert.True(t, sawLock)

	_, _, err := m.Join(newFakeClient("s9"), "Eve", room.code)
	assert.ErrorIs(t, err, errRoomLocked)

	unlocked := false
	room.handleCommand(clients[0], ClientMessage{Type: "lock_room", Lock: &unlocked})
	_, _, err = m.Join(newFakeClient("s9"), "Eve", room.code)
	assert.NoError(t, err)
}

func TestKickRemovesPlayer(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann", "Bob")

	room.handleCommand(clients[0], ClientMessage{Type: "kick", TargetID: players[1].ID})

	// The kicked client hears about it, then its channel closes.
	var kicked bool
	for _, msg := range drain(clients[1]) {
		if _, ok := msg.(KickedMessage); ok {
			kicked = true
		}
	}
	assert.True(t, kicked)
	_, open := <-clients[1].send
	assert.False(t, open, "kicked client's send channel is closed")

	room.sendState(clients[0])
	state := lastState(t, clients[0])
	require.Len(t, state.Players, 1)
	assert.Equal(t, "Ann", state.Players[0].Username)

	// The kicked connection's eventual teardown must be harmless.
	room.leave(clients[1])
}

func TestKickUnknownTargetRejected(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann")

	room.handleCommand(clients[0], ClientMessage{Type: "kick", TargetID: "nope"})

	var rejected bool
	for _, msg := range drain(clients[0]) {
		if _, ok := msg.(ErrorMessage); ok {
			rejected = true
		}
	}
	assert.True(t, rejected)
}

func TestHostKickingThemselvesRemovesRoom(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann")

	room.handleCommand(clients[0], ClientMessage{Type: "kick", TargetID: players[0].ID})

	assert.False(t, m.Exists(room.code))
}

func TestChatBroadcast(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann", "Bob")

	room.chat(clients[1], "  hello there  ")

	for _, c := range clients {
		var heard bool
		for _, msg := range drain(c) {
			if ch, ok := msg.(ChatMessage); ok {
				heard = true
				assert.Equal(t, "Bob", ch.From)
				assert.Equal(t, "hello there", ch.Text)
			}
		}
		assert.True(t, heard)
	}
}

func TestTrySendAfterClose(t *testing.T) {
	c := newFakeClient("s1")

	assert.True(t, c.trySend("queued"))
	c.closeSend()
	c.closeSend()

	assert.False(t, c.trySend("dropped"), "a torn-down client drops messages")
	assert.True(t, c.isDead())
	require.Len(t, drain(c), 1)
}

func TestKickedClientTrafficIsHarmless(t *testing.T) {
	m := newTestManager()
	room, clients, players := seatPlayers(t, m, "Ann", "Bob")

	room.handleCommand(clients[0], ClientMessage{Type: "kick", TargetID: players[1].ID})

	// Anything the kicked connection still produces is dropped, never a
	// write to its closed channel.
	assert.False(t, clients[1].trySend(ErrorMessage{Type: "error", Message: errAlreadyInRoom.Error()}))
	room.sendState(clients[1])
	room.chat(clients[1], "still here?")
	room.leave(clients[1])

	room.sendState(clients[0])
	require.Len(t, lastState(t, clients[0]).Players, 1)
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann", "Bob")

	// Fill Bob's queue so the next broadcast cannot be delivered.
	for clients[1].trySend(ChatMessage{Type: "chat"}) {
	}

	room.chat(clients[0], "one more")
	room.chat(clients[0], "and another")

	assert.True(t, clients[1].isDead(), "slow client is dropped")

	var heard int
	for _, msg := range drain(clients[0]) {
		if _, ok := msg.(ChatMessage); ok {
			heard++
		}
	}
	assert.Equal(t, 2, heard, "remaining clients still receive broadcasts")
}

func TestChatIgnoresBlankAndStrangers(t *testing.T) {
	m := newTestManager()
	room, clients, _ := seatPlayers(t, m, "Ann")

	room.chat(clients[0], "   ")
	room.chat(newFakeClient("stranger"), "hi")

	assert.Empty(t, drain(clients[0]))
}
