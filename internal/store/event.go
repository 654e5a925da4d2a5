package store

// EventKind discriminates the closed set of game events.
type EventKind string

const (
	EventBeginGame          EventKind = "begin_game"
	EventEndGame            EventKind = "end_game"
	EventPlayerJoined       EventKind = "player_joined"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventPlaceTile          EventKind = "place_tile"
)

// EndReason discriminates why a game ended.
type EndReason string

const (
	ReasonPlayerLeft EndReason = "player_left"
	ReasonPlayerWon  EndReason = "player_won"
	ReasonDraw       EndReason = "draw"
)

// EndGameReason explains an end_game event. PlayerID is set for player_left,
// Winner for player_won, neither for draw.
type EndGameReason struct {
	Kind     EndReason `json:"kind"`
	PlayerID PlayerID  `json:"player_id,omitempty"`
	Winner   PlayerID  `json:"winner,omitempty"`
}

// GameEvent is the sole unit of state change and of replication. Events are
// immutable once constructed and safe to serialize across the network.
//
// place_tile deliberately carries no tile: the mark is derived from the
// acting player's assigned piece, so a peer cannot place the wrong one.
type GameEvent struct {
	Kind      EventKind      `json:"kind"`
	PlayerID  PlayerID       `json:"player_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	At        int            `json:"at"`
	GoesFirst PlayerID       `json:"goes_first,omitempty"`
	Reason    *EndGameReason `json:"reason,omitempty"`
}

func NewBeginGame(goesFirst PlayerID) GameEvent {
	return GameEvent{Kind: EventBeginGame, GoesFirst: goesFirst}
}

func NewEndGame(reason EndGameReason) GameEvent {
	return GameEvent{Kind: EventEndGame, Reason: &reason}
}

func NewPlayerJoined(playerID PlayerID, name string) GameEvent {
	return GameEvent{Kind: EventPlayerJoined, PlayerID: playerID, Name: name}
}

func NewPlayerDisconnected(playerID PlayerID) GameEvent {
	return GameEvent{Kind: EventPlayerDisconnected, PlayerID: playerID}
}

func NewPlaceTile(playerID PlayerID, at int) GameEvent {
	return GameEvent{Kind: EventPlaceTile, PlayerID: playerID, At: at}
}

func PlayerLeft(playerID PlayerID) EndGameReason {
	return EndGameReason{Kind: ReasonPlayerLeft, PlayerID: playerID}
}

func PlayerWon(winner PlayerID) EndGameReason {
	return EndGameReason{Kind: ReasonPlayerWon, Winner: winner}
}

func Draw() EndGameReason {
	return EndGameReason{Kind: ReasonDraw}
}

// ValidOn decides whether the event may legally apply to the state. It is a
// pure predicate: it never mutates the state and always returns the same
// answer for the same inputs. Only the authoritative server calls it;
// mirrors consume server-validated events as-is.
func (that *GameState) ValidOn(event GameEvent) bool {
	switch event.Kind {
	case EventBeginGame:
		if that.Stage != StagePreGame {
			return false
		}
		_, known := that.Players[event.GoesFirst]
		return known

	case EventEndGame:
		if event.Reason == nil {
			return false
		}
		switch event.Reason.Kind {
		case ReasonPlayerWon, ReasonDraw:
			return that.Stage == StageInGame
		case ReasonPlayerLeft:
			return true
		default:
			return false
		}

	case EventPlayerJoined:
		if _, exists := that.Players[event.PlayerID]; exists {
			return false
		}
		return len(that.Players) < MaxPlayers

	case EventPlayerDisconnected:
		_, known := that.Players[event.PlayerID]
		return known

	case EventPlaceTile:
		if _, known := that.Players[event.PlayerID]; !known {
			return false
		}
		// Without a full pair of players the reducer cannot resolve an
		// opponent; rejecting here keeps that precondition intact.
		if len(that.Players) != MaxPlayers {
			return false
		}
		if that.ActivePlayerID != event.PlayerID {
			return false
		}
		if event.At < 0 || event.At >= BoardSize {
			return false
		}
		return that.Board[event.At] == TileEmpty

	default:
		return false
	}
}
