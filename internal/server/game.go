package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tictactussle/tictactussle-backend/internal/apperror"
	"github.com/tictactussle/tictactussle-backend/internal/lobby"
	"github.com/tictactussle/tictactussle-backend/internal/protocol"
	"github.com/tictactussle/tictactussle-backend/internal/repository"
	"github.com/tictactussle/tictactussle-backend/internal/store"
)

// Sender pushes a message to a single connected player. The WebSocket
// transport implements it.
type Sender interface {
	Send(playerID store.PlayerID, msg protocol.ServerMessage) error
}

type matchArchive interface {
	Save(ctx context.Context, record *repository.MatchRecord) error
}

// GameServer is the authoritative side of the trust boundary. Every candidate
// event passes through ValidOn before it is consumed; only consumed events are
// replicated to the mirrors. Clients never validate.
type GameServer struct {
	logger  *slog.Logger
	lobbies *lobby.Manager
	archive matchArchive
	sender  Sender

	// One lock over all lobbies keeps a single authoritative event order.
	mu sync.Mutex
}

func New(logger *slog.Logger, lobbies *lobby.Manager, archive matchArchive, sender Sender) *GameServer {
	return &GameServer{
		logger:  logger.With("component", "game-server"),
		lobbies: lobbies,
		archive: archive,
		sender:  sender,
	}
}

func (that *GameServer) HandlePlayerConnected(_ context.Context, playerID store.PlayerID, name string) {
	that.lobbies.RegisterPlayer(playerID, name)
	that.logger.Info("player connected", "playerID", playerID, "name", name)
}

// HandlePlayerDisconnected tears down the player's lobby, if any. A
// two-player game cannot continue without its opponent, so the remaining
// player is told the game is over and the terminal snapshot is archived.
func (that *GameServer) HandlePlayerDisconnected(ctx context.Context, playerID store.PlayerID) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "HandlePlayerDisconnected", "playerID", playerID)

	abandoned, ok := that.lobbies.UnregisterPlayer(playerID)
	if !ok {
		log.Debug("player was not seated")
		return
	}

	reason := store.PlayerLeft(playerID)
	that.dispatch(abandoned, store.NewPlayerDisconnected(playerID))
	that.dispatch(abandoned, store.NewEndGame(reason))

	for _, seated := range abandoned.Players {
		if seated == playerID {
			continue
		}

		err := that.sender.Send(seated, protocol.ServerMessage{
			Kind:      protocol.ServerEndGame,
			EndReason: &reason,
		})
		if err != nil && !errors.Is(err, apperror.ErrConnectionNotFound) {
			log.Error("failed to notify remaining player", "seated", seated, "error", err)
		}
	}

	that.finishMatch(ctx, abandoned, reason)
}

func (that *GameServer) HandleMessage(ctx context.Context, playerID store.PlayerID, msg protocol.ClientMessage) {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch msg.Kind {
	case protocol.ClientCreateLobby:
		that.handleCreateLobby(ctx, playerID)
	case protocol.ClientJoinLobby:
		that.handleJoinLobby(ctx, playerID, msg.LobbyID)
	case protocol.ClientGameEvent:
		that.handleGameEvent(ctx, playerID, msg.Event)
	default:
		that.logger.Warn("unknown client message", "playerID", playerID, "kind", msg.Kind)
	}
}

func (that *GameServer) handleCreateLobby(_ context.Context, playerID store.PlayerID) {
	log := that.logger.With("method", "handleCreateLobby", "playerID", playerID)

	created := that.lobbies.CreateLobby()

	if _, err := that.lobbies.Join(playerID, created.ID); err != nil {
		log.Warn("creator could not be seated", "error", err)
		that.lobbies.RemoveLobby(created.ID)
		return
	}

	if err := that.sender.Send(playerID, protocol.ServerMessage{
		Kind:    protocol.ServerJoinLobby,
		LobbyID: created.ID,
	}); err != nil {
		log.Error("failed to acknowledge lobby", "error", err)
	}

	that.seatPlayer(created, playerID)

	log.Info("lobby created", "lobbyID", created.ID)
}

func (that *GameServer) handleJoinLobby(_ context.Context, playerID store.PlayerID, lobbyID uint64) {
	log := that.logger.With("method", "handleJoinLobby", "playerID", playerID, "lobbyID", lobbyID)

	joined, err := that.lobbies.Join(playerID, lobbyID)
	if err != nil {
		that.refuseJoin(playerID, err)
		return
	}

	if err = that.sender.Send(playerID, protocol.ServerMessage{
		Kind:    protocol.ServerJoinLobby,
		LobbyID: joined.ID,
	}); err != nil {
		log.Error("failed to acknowledge join", "error", err)
	}

	// A late joiner catches up by replaying the authoritative history in
	// order; its mirror converges on the same state without a snapshot.
	for _, past := range joined.Game.History {
		event := past
		if err = that.sender.Send(playerID, protocol.ServerMessage{
			Kind:  protocol.ServerGameEvent,
			Event: &event,
		}); err != nil {
			log.Error("failed to replay history", "error", err)
		}
	}

	that.seatPlayer(joined, playerID)

	if len(joined.Players) == store.MaxPlayers {
		that.dispatch(joined, store.NewBeginGame(joined.Players[0]))
	}
}

func (that *GameServer) refuseJoin(playerID store.PlayerID, cause error) {
	log := that.logger.With("method", "refuseJoin", "playerID", playerID)

	var reason protocol.CannotJoinReason
	switch {
	case errors.Is(cause, apperror.ErrNoSuchLobby):
		reason = protocol.CannotJoinNoSuchLobby
	case errors.Is(cause, apperror.ErrLobbyFull):
		reason = protocol.CannotJoinLobbyFull
	default:
		log.Warn("join dropped", "error", cause)
		return
	}

	if err := that.sender.Send(playerID, protocol.ServerMessage{
		Kind:       protocol.ServerCannotJoinLobby,
		CannotJoin: reason,
	}); err != nil {
		log.Error("failed to refuse join", "error", err)
	}
}

// handleGameEvent validates a candidate event against the lobby's state and,
// if it applies, consumes and replicates it. Rejected events are dropped
// silently; a well-behaved client never produces them.
func (that *GameServer) handleGameEvent(ctx context.Context, playerID store.PlayerID, event *store.GameEvent) {
	log := that.logger.With("method", "handleGameEvent", "playerID", playerID)

	if event == nil {
		log.Warn("game event message without an event")
		return
	}

	// Only moves originate from clients. Lifecycle events (begin_game,
	// end_game, joins, disconnects) are server-generated; a forged end_game
	// would otherwise pass validation mid-game and archive a fake result.
	if event.Kind != store.EventPlaceTile {
		log.Warn("client-originated lifecycle event dropped", "kind", event.Kind)
		return
	}

	// A client may only act as itself.
	if event.PlayerID != 0 && event.PlayerID != playerID {
		log.Warn("actor mismatch", "claimed", event.PlayerID)
		return
	}

	seated, ok := that.lobbies.ByPlayer(playerID)
	if !ok {
		log.Debug("player is not seated")
		return
	}

	if !that.dispatch(seated, *event) {
		return
	}

	if winner, won := seated.Game.DetermineWinner(); won {
		reason := store.PlayerWon(winner)
		that.dispatch(seated, store.NewEndGame(reason))
		that.finishMatch(ctx, seated, reason)
		return
	}

	if seated.Game.BoardFull() {
		reason := store.Draw()
		that.dispatch(seated, store.NewEndGame(reason))
		that.finishMatch(ctx, seated, reason)
	}
}

// seatPlayer runs the player_joined event for a freshly seated player.
func (that *GameServer) seatPlayer(seated *lobby.Lobby, playerID store.PlayerID) {
	name, ok := that.lobbies.PlayerName(playerID)
	if !ok {
		that.logger.Warn("seating an unregistered player", "playerID", playerID)
	}

	that.dispatch(seated, store.NewPlayerJoined(playerID, name))
}

// dispatch is the single validate-consume-broadcast path. Every state change
// in a lobby goes through here, which is what keeps the mirrors convergent.
func (that *GameServer) dispatch(seated *lobby.Lobby, event store.GameEvent) bool {
	log := that.logger.With("method", "dispatch", "lobbyID", seated.ID)

	if !seated.Game.ValidOn(event) {
		log.Debug("event rejected", "kind", event.Kind, "playerID", event.PlayerID)
		return false
	}

	seated.Game.Consume(event)

	for _, playerID := range seated.Players {
		replicated := event
		err := that.sender.Send(playerID, protocol.ServerMessage{
			Kind:  protocol.ServerGameEvent,
			Event: &replicated,
		})
		if err != nil && !errors.Is(err, apperror.ErrConnectionNotFound) {
			log.Error("failed to replicate event", "playerID", playerID, "error", err)
		}
	}

	return true
}

// finishMatch archives the terminal snapshot and removes the lobby. Archive
// failures are logged, not fatal; the game is over either way.
func (that *GameServer) finishMatch(ctx context.Context, finished *lobby.Lobby, reason store.EndGameReason) {
	log := that.logger.With("method", "finishMatch", "lobbyID", finished.ID)

	players := make(map[store.PlayerID]store.Player, len(finished.Game.Players))
	for id, player := range finished.Game.Players {
		players[id] = player
	}

	record := &repository.MatchRecord{
		LobbyID:    finished.ID,
		Reason:     reason.Kind,
		Winner:     reason.Winner,
		Board:      finished.Game.Board,
		Players:    players,
		History:    append([]store.GameEvent(nil), finished.Game.History...),
		FinishedAt: time.Now().UTC(),
	}

	if err := that.archive.Save(ctx, record); err != nil {
		log.Error("failed to archive match", "error", err)
	}

	that.lobbies.RemoveLobby(finished.ID)
}
