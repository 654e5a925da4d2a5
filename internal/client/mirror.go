package client

import (
	"github.com/tictactussle/tictactussle-backend/internal/store"
)

// Mirror is the replicated client-side state. It applies events the server
// has already validated and never re-derives legality itself: the server is
// authoritative, and a mirror that re-validates could silently diverge.
type Mirror struct {
	self  store.PlayerID
	state *store.GameState
}

func NewMirror(self store.PlayerID) *Mirror {
	return &Mirror{
		self:  self,
		state: store.NewGameState(),
	}
}

// Apply consumes a server-validated event. Events must be applied in the
// order they arrive; the transport guarantees that order matches the
// server's.
func (that *Mirror) Apply(event store.GameEvent) {
	that.state.Consume(event)
}

func (that *Mirror) Self() store.PlayerID {
	return that.self
}

func (that *Mirror) Stage() store.Stage {
	return that.state.Stage
}

func (that *Mirror) Board() [store.BoardSize]store.Tile {
	return that.state.Board
}

func (that *Mirror) ActivePlayerID() store.PlayerID {
	return that.state.ActivePlayerID
}

// MyTurn reports whether the mirror's own player is expected to move.
func (that *Mirror) MyTurn() bool {
	return that.state.IsInGame() && that.state.ActivePlayerID == that.self
}

// Player returns what the mirror knows about a participant.
func (that *Mirror) Player(id store.PlayerID) (store.Player, bool) {
	player, ok := that.state.Players[id]
	return player, ok
}

// HistoryLen reports how many events the mirror has consumed.
func (that *Mirror) HistoryLen() int {
	return len(that.state.History)
}
