package main

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// newSessionID returns an opaque identifier for one live connection.
// Sessions are never persisted or resumed; the ID dies with the socket.
func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

type Client struct {
	conn      *websocket.Conn
	sessionID string

	// room is only touched from this client's read loop.
	room *Room

	// send is closed exactly once, through closeSend. Every write to it
	// goes through trySend so the room and the read loop can race a
	// teardown without panicking.
	sendMu sync.Mutex
	send   chan any
	dead   bool
}

// trySend queues msg for the write pump. Reports false if the queue is
// full or already torn down; the message is dropped either way.
func (c *Client) trySend(msg any) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.dead {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend tears down the outbound queue. Idempotent.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.dead {
		c.dead = true
		close(c.send)
	}
}

func (c *Client) isDead() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.dead
}

// serveWS upgrades the connection, assigns a session ID, and runs the
// client's read loop until the transport goes away.
func serveWS(logger *zap.Logger, mgr *RoomManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err), zap.String("remote", realIP(r)))
			return
		}

		client := &Client{
			conn:      conn,
			send:      make(chan any, 8),
			sessionID: newSessionID(),
		}

		logger.Info("client connected",
			zap.String("session_id", client.sessionID),
			zap.String("remote", realIP(r)))

		go client.writePump()

		client.trySend(ConnectedMessage{
			Type:      "connected",
			SessionID: client.sessionID,
		})

		client.readPump(mgr)

		if client.room != nil {
			client.room.leave(client)
		}
		client.closeSend()

		logger.Info("client disconnected", zap.String("session_id", client.sessionID))
	}
}

func (c *Client) readPump(mgr *RoomManager) {
	defer c.conn.Close()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		// A kicked or reaped session has no outbound queue left; the
		// socket is already on its way out.
		if c.isDead() {
			return
		}

		switch msg.Type {
		case "join_room":
			if c.room != nil {
				c.trySend(ErrorMessage{Type: "error", Message: errAlreadyInRoom.Error()})
				continue
			}
			room, _, err := mgr.Join(c, msg.Username, msg.RoomCode)
			if err != nil {
				c.trySend(JoinErrorMessage{Type: "join_error", Message: err.Error()})
				continue
			}
			c.room = room
		case "start_game", "end_game", "lock_room", "kick":
			if c.room == nil {
				c.trySend(ErrorMessage{Type: "error", Message: errNotInRoom.Error()})
				continue
			}
			c.room.handleCommand(c, msg)
		case "chat":
			if c.room == nil {
				c.trySend(ErrorMessage{Type: "error", Message: errNotInRoom.Error()})
				continue
			}
			c.room.chat(c, msg.Text)
		case "get_game_state":
			if c.room == nil {
				c.trySend(ErrorMessage{Type: "error", Message: errNotInRoom.Error()})
				continue
			}
			c.room.sendState(c)
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
