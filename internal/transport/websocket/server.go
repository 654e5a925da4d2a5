package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/tictactussle/tictactussle-backend/internal/apperror"
	"github.com/tictactussle/tictactussle-backend/internal/protocol"
	"github.com/tictactussle/tictactussle-backend/internal/store"
)

const (
	shutdownTimeout = 5 * time.Second
	writeTimeout    = 10 * time.Second
)

// Handler consumes transport callbacks: connection lifecycle with identity,
// and ordered per-connection messages. The game server implements it.
type Handler interface {
	HandlePlayerConnected(ctx context.Context, playerID store.PlayerID, name string)
	HandlePlayerDisconnected(ctx context.Context, playerID store.PlayerID)
	HandleMessage(ctx context.Context, playerID store.PlayerID, msg protocol.ClientMessage)
}

// Server accepts WebSocket connections and assigns each one a stable opaque
// numeric id for its lifetime. WebSocket over TCP supplies the ordered,
// duplicate-free reliable channel the game relies on.
type Server struct {
	logger  *slog.Logger
	handler Handler

	nextID atomic.Uint64

	connsMutex sync.RWMutex
	conns      map[store.PlayerID]*websocket.Conn
}

func New(logger *slog.Logger) *Server {
	return &Server{
		logger: logger.With("component", "ws-server"),
		conns:  make(map[store.PlayerID]*websocket.Conn),
	}
}

// SetHandler wires the game server in. Must be called before Start.
func (that *Server) SetHandler(handler Handler) {
	that.handler = handler
}

// Start serves the WebSocket endpoint until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.acceptConnection(w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// acceptConnection upgrades the connection, performs the connect handshake
// and runs the read loop. Connections are unauthenticated by design.
func (that *Server) acceptConnection(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "acceptConnection")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("failed to accept connection", "error", err)
		return
	}

	ctx := r.Context()

	// The first message must identify the player.
	var hello protocol.ClientMessage
	if err = wsjson.Read(ctx, conn, &hello); err != nil {
		log.Error("failed to read handshake", "error", err)
		_ = conn.Close(websocket.StatusProtocolError, "connect handshake required")
		return
	}

	if hello.Kind != protocol.ClientConnect || hello.Name == "" {
		log.Warn("handshake rejected", "kind", hello.Kind)
		_ = conn.Close(websocket.StatusPolicyViolation, "connect handshake required")
		return
	}

	playerID := store.PlayerID(that.nextID.Add(1))

	that.connsMutex.Lock()
	that.conns[playerID] = conn
	that.connsMutex.Unlock()

	log = log.With("playerID", playerID)
	log.Info("connection established", "name", hello.Name)

	that.handler.HandlePlayerConnected(ctx, playerID, hello.Name)

	if err = that.Send(playerID, protocol.ServerMessage{Kind: protocol.ServerConnected, PlayerID: playerID}); err != nil {
		log.Error("failed to acknowledge handshake", "error", err)
	}

	that.readLoop(ctx, conn, playerID)

	that.connsMutex.Lock()
	delete(that.conns, playerID)
	that.connsMutex.Unlock()

	// The request context is gone once the connection drops; lifecycle
	// cleanup gets its own.
	that.handler.HandlePlayerDisconnected(context.Background(), playerID)

	_ = conn.Close(websocket.StatusNormalClosure, "")

	log.Info("connection closed")
}

// readLoop delivers inbound messages to the handler in arrival order.
func (that *Server) readLoop(ctx context.Context, conn *websocket.Conn, playerID store.PlayerID) {
	log := that.logger.With("method", "readLoop", "playerID", playerID)

	for {
		var msg protocol.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return
			}

			log.Debug("read failed", "error", err)
			return
		}

		that.handler.HandleMessage(ctx, playerID, msg)
	}
}

// Send delivers one message to a connected player.
func (that *Server) Send(playerID store.PlayerID, msg protocol.ServerMessage) error {
	that.connsMutex.RLock()
	conn, ok := that.conns[playerID]
	that.connsMutex.RUnlock()

	if !ok {
		return fmt.Errorf("%w: player %d", apperror.ErrConnectionNotFound, playerID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
