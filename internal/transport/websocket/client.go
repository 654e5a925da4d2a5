package websocket

import (
	"context"
	"errors"
	"fmt"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/tictactussle/tictactussle-backend/internal/protocol"
	"github.com/tictactussle/tictactussle-backend/internal/store"
)

var ErrHandshakeFailed = errors.New("handshake failed")

// Client is the dialing side of the transport, used by the CLI client.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the server, performs the connect handshake and returns
// the connection id the server assigned.
func Dial(ctx context.Context, url, name string) (*Client, store.PlayerID, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to dial server: %w", err)
	}

	hello := protocol.ClientMessage{Kind: protocol.ClientConnect, Name: name}
	if err = wsjson.Write(ctx, conn, hello); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "handshake failed")
		return nil, 0, fmt.Errorf("failed to send handshake: %w", err)
	}

	var ack protocol.ServerMessage
	if err = wsjson.Read(ctx, conn, &ack); err != nil {
		_ = conn.Close(websocket.StatusProtocolError, "handshake failed")
		return nil, 0, fmt.Errorf("failed to read handshake ack: %w", err)
	}

	if ack.Kind != protocol.ServerConnected {
		_ = conn.Close(websocket.StatusProtocolError, "handshake failed")
		return nil, 0, fmt.Errorf("%w: unexpected ack %q", ErrHandshakeFailed, ack.Kind)
	}

	return &Client{conn: conn}, ack.PlayerID, nil
}

// Read blocks for the next server message. Messages arrive in the order the
// server validated them.
func (that *Client) Read(ctx context.Context) (protocol.ServerMessage, error) {
	var msg protocol.ServerMessage
	if err := wsjson.Read(ctx, that.conn, &msg); err != nil {
		return protocol.ServerMessage{}, fmt.Errorf("failed to read message: %w", err)
	}

	return msg, nil
}

// Send delivers one client message to the server.
func (that *Client) Send(ctx context.Context, msg protocol.ClientMessage) error {
	if err := wsjson.Write(ctx, that.conn, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (that *Client) Close() error {
	if err := that.conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
