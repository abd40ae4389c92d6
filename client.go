package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// serverEvent is the union of every message the server sends, decoded
// loosely so the terminal client can switch on type.
type serverEvent struct {
	Type      string       `json:"type"`
	SessionID string       `json:"sessionId"`
	Message   string       `json:"message"`
	PlayerID  string       `json:"playerId"`
	Username  string       `json:"username"`
	RoomCode  string       `json:"roomCode"`
	Status    GameStatus   `json:"gameStatus"`
	HostID    string       `json:"hostId"`
	Players   []PlayerInfo `json:"players"`
	From      string       `json:"from"`
	Text      string       `json:"text"`
	Locked    bool         `json:"locked"`
}

func newClientCmd() *cobra.Command {
	var server, name, room string

	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Connect to a codebattle server from the terminal.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClient(server, name, room)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&server, "server", "s", "ws://localhost:3000/ws", "websocket URL of the server")
	fs.StringVarP(&name, "name", "n", "", "display name (prompted if omitted)")
	fs.StringVarP(&room, "room", "r", "", "room code to join (omit to host a new room)")

	return cmd
}

func runClient(server, name, room string) error {
	stdin := bufio.NewScanner(os.Stdin)
	form := NewLobbyForm()

	if name == "" {
		fmt.Print("Display name: ")
		if !stdin.Scan() {
			return errors.New("no display name given")
		}
		name = stdin.Text()
	}
	form.SetDisplayName(name)

	if room == "" {
		fmt.Print("Room code (leave blank to host a new room): ")
		if stdin.Scan() {
			room = stdin.Text()
		}
	}
	if strings.TrimSpace(room) == "" {
		form.SetMode(ModeHost)
	} else {
		form.SetMode(ModeJoin)
		form.SetRoomCode(room)
	}

	conn, _, err := websocket.DefaultDialer.Dial(server, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", server, err)
	}
	defer conn.Close()
	form.SetConnected(true)

	ok := form.Submit(func(displayName, roomCode string) {
		_ = conn.WriteJSON(ClientMessage{
			Type:     "join_room",
			Username: displayName,
			RoomCode: roomCode,
		})
	})
	if !ok {
		return errors.New("nothing to submit; check the display name and room code")
	}

	joinFailed := make(chan string, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			var ev serverEvent
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			switch ev.Type {
			case "connected":
				fmt.Printf("* connected, session %s\n", ev.SessionID)
			case "game_state":
				form.ApplyState(GameStateMessage{
					Type:     ev.Type,
					RoomCode: ev.RoomCode,
					Status:   ev.Status,
					HostID:   ev.HostID,
					Players:  ev.Players,
				})
				fmt.Printf("* room %s (%s), %d player(s):\n", ev.RoomCode, ev.Status, len(ev.Players))
				for _, p := range ev.Players {
					tag := ""
					if p.ID == ev.HostID {
						tag = " (host)"
					}
					fmt.Printf("    %s%s\n", p.Username, tag)
				}
			case "join_error":
				form.ApplyJoinError()
				select {
				case joinFailed <- ev.Message:
				default:
				}
			case "player_joined":
				fmt.Printf("* %s joined\n", ev.Username)
			case "player_left":
				fmt.Printf("* %s left\n", ev.Username)
			case "game_started":
				fmt.Println("* the game has started")
			case "game_ended":
				fmt.Println("* the game has ended")
			case "room_state":
				fmt.Printf("* room locked: %v\n", ev.Locked)
			case "chat":
				fmt.Printf("<%s> %s\n", ev.From, ev.Text)
			case "kicked":
				fmt.Println("* " + ev.Message)
			case "error":
				fmt.Println("! " + ev.Message)
			}
		}
	}()

	go func() {
		for stdin.Scan() {
			line := strings.TrimSpace(stdin.Text())
			switch {
			case line == "":
			case line == "/quit":
				_ = conn.Close()
				return
			case line == "/start":
				_ = conn.WriteJSON(ClientMessage{Type: "start_game"})
			case line == "/end":
				_ = conn.WriteJSON(ClientMessage{Type: "end_game"})
			case line == "/lock":
				locked := true
				_ = conn.WriteJSON(ClientMessage{Type: "lock_room", Lock: &locked})
			case line == "/unlock":
				locked := false
				_ = conn.WriteJSON(ClientMessage{Type: "lock_room", Lock: &locked})
			case line == "/state":
				_ = conn.WriteJSON(ClientMessage{Type: "get_game_state"})
			case strings.HasPrefix(line, "/kick "):
				_ = conn.WriteJSON(ClientMessage{Type: "kick", TargetID: strings.TrimSpace(strings.TrimPrefix(line, "/kick "))})
			default:
				_ = conn.WriteJSON(ClientMessage{Type: "chat", Text: line})
			}
		}
	}()

	select {
	case msg := <-joinFailed:
		return errors.New("join rejected: " + msg)
	case <-done:
		return nil
	}
}
