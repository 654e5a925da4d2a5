package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tictactussle/tictactussle-backend/internal/client"
	"github.com/tictactussle/tictactussle-backend/internal/protocol"
	"github.com/tictactussle/tictactussle-backend/internal/store"
	"github.com/tictactussle/tictactussle-backend/internal/transport/websocket"
)

// main - a thin presentation layer over the mirrored game state. It applies
// events the server already validated and renders the board to stdout.
func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "server websocket URL")
	name := flag.String("name", "anonymous", "player name")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, playerID, err := websocket.Dial(ctx, *addr, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	mirror := client.NewMirror(playerID)

	fmt.Printf("connected as %s (player %d)\n", *name, playerID)
	fmt.Println("commands: new | join <lobby-id> | place <0-8> | quit")

	go receive(ctx, conn, mirror)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var msg protocol.ClientMessage

		switch fields[0] {
		case "new":
			msg = protocol.ClientMessage{Kind: protocol.ClientCreateLobby}
		case "join":
			if len(fields) < 2 {
				fmt.Println("usage: join <lobby-id>")
				continue
			}
			lobbyID, convErr := strconv.ParseUint(fields[1], 10, 64)
			if convErr != nil {
				fmt.Println("lobby id must be a number")
				continue
			}
			msg = protocol.ClientMessage{Kind: protocol.ClientJoinLobby, LobbyID: lobbyID}
		case "place":
			if len(fields) < 2 {
				fmt.Println("usage: place <0-8>")
				continue
			}
			at, convErr := strconv.Atoi(fields[1])
			if convErr != nil {
				fmt.Println("cell must be a number between 0 and 8")
				continue
			}
			event := store.NewPlaceTile(mirror.Self(), at)
			msg = protocol.ClientMessage{Kind: protocol.ClientGameEvent, Event: &event}
		case "quit":
			return
		default:
			fmt.Println("unknown command")
			continue
		}

		if err = conn.Send(ctx, msg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send: %v\n", err)
			return
		}
	}
}

// receive applies server messages to the mirror in arrival order.
func receive(ctx context.Context, conn *websocket.Client, mirror *client.Mirror) {
	for {
		msg, err := conn.Read(ctx)
		if err != nil {
			fmt.Println("connection closed")
			os.Exit(0)
		}

		switch msg.Kind {
		case protocol.ServerJoinLobby:
			fmt.Printf("joined lobby %d - share this id with your opponent\n", msg.LobbyID)
		case protocol.ServerCannotJoinLobby:
			fmt.Printf("cannot join lobby %d: %s\n", msg.LobbyID, msg.CannotJoin)
		case protocol.ServerGameEvent:
			if msg.Event == nil {
				continue
			}
			mirror.Apply(*msg.Event)
			report(mirror, *msg.Event)
		case protocol.ServerEndGame:
			fmt.Println("lobby closed: opponent left")
		}
	}
}

// report narrates one consumed event.
func report(mirror *client.Mirror, event store.GameEvent) {
	switch event.Kind {
	case store.EventPlayerJoined:
		fmt.Printf("%s joined the game\n", event.Name)
	case store.EventBeginGame:
		fmt.Println("game on!")
		fmt.Print(renderBoard(mirror.Board()))
		promptTurn(mirror)
	case store.EventPlaceTile:
		fmt.Print(renderBoard(mirror.Board()))
		promptTurn(mirror)
	case store.EventEndGame:
		if event.Reason == nil {
			return
		}
		switch event.Reason.Kind {
		case store.ReasonPlayerWon:
			if event.Reason.Winner == mirror.Self() {
				fmt.Println("you won!")
			} else {
				fmt.Println("you lost.")
			}
		case store.ReasonDraw:
			fmt.Println("it's a draw.")
		case store.ReasonPlayerLeft:
			fmt.Println("opponent left the game.")
		}
	}
}

func promptTurn(mirror *client.Mirror) {
	if mirror.MyTurn() {
		fmt.Println("your move (place <0-8>)")
	} else {
		fmt.Println("waiting for opponent...")
	}
}

func renderBoard(board [store.BoardSize]store.Tile) string {
	var b strings.Builder

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			at := col + row*3
			fmt.Fprintf(&b, " %s ", mark(board[at], at))
			if col < 2 {
				b.WriteString("|")
			}
		}
		b.WriteString("\n")
		if row < 2 {
			b.WriteString("---+---+---\n")
		}
	}

	return b.String()
}

func mark(tile store.Tile, at int) string {
	switch tile {
	case store.TileTic:
		return "X"
	case store.TileTac:
		return "O"
	default:
		return strconv.Itoa(at)
	}
}
