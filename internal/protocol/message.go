package protocol

import "github.com/tictactussle/tictactussle-backend/internal/store"

// ClientMessageKind discriminates what a client may send to the server.
type ClientMessageKind string

const (
	// ClientConnect must be the first message on a fresh connection and
	// carries the player's display name.
	ClientConnect ClientMessageKind = "connect"
	// ClientCreateLobby asks for a lobby to invite an opponent into.
	ClientCreateLobby ClientMessageKind = "create_lobby"
	// ClientJoinLobby asks to join an existing lobby by id.
	ClientJoinLobby ClientMessageKind = "join_lobby"
	// ClientGameEvent submits a candidate event to the authoritative state.
	ClientGameEvent ClientMessageKind = "game_event"
)

// ClientMessage is the single JSON envelope for client-to-server traffic.
type ClientMessage struct {
	Kind    ClientMessageKind `json:"kind"`
	Name    string            `json:"name,omitempty"`
	LobbyID uint64            `json:"lobby_id,omitempty"`
	Event   *store.GameEvent  `json:"event,omitempty"`
}

// CannotJoinReason tells a client why a join was refused.
type CannotJoinReason string

const (
	CannotJoinNoSuchLobby CannotJoinReason = "no_such_lobby"
	CannotJoinLobbyFull   CannotJoinReason = "lobby_full"
)

// ServerMessageKind discriminates what the server may send to a client.
type ServerMessageKind string

const (
	// ServerConnected acknowledges the handshake and carries the opaque
	// connection id the transport assigned to the player.
	ServerConnected ServerMessageKind = "connected"
	// ServerJoinLobby tells the client which lobby it now plays in.
	ServerJoinLobby ServerMessageKind = "join_lobby"
	// ServerCannotJoinLobby refuses a join request.
	ServerCannotJoinLobby ServerMessageKind = "cannot_join_lobby"
	// ServerGameEvent replicates a validated event; mirrors consume it
	// without re-validating.
	ServerGameEvent ServerMessageKind = "game_event"
	// ServerEndGame tells a client its lobby has been shut down.
	ServerEndGame ServerMessageKind = "end_game"
)

// ServerMessage is the single JSON envelope for server-to-client traffic.
type ServerMessage struct {
	Kind       ServerMessageKind    `json:"kind"`
	PlayerID   store.PlayerID       `json:"player_id,omitempty"`
	LobbyID    uint64               `json:"lobby_id,omitempty"`
	CannotJoin CannotJoinReason     `json:"cannot_join,omitempty"`
	EndReason  *store.EndGameReason `json:"end_reason,omitempty"`
	Event      *store.GameEvent     `json:"event,omitempty"`
}
