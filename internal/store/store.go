package store

// BoardSize - a tic-tac-toe board is always 3x3, row-major (index = col + row*3).
const BoardSize = 9

// MaxPlayers - a match is strictly two-player; the validator enforces this.
const MaxPlayers = 2

// Tile is the value of a single board cell.
type Tile string

const (
	TileEmpty Tile = ""
	TileTic   Tile = "tic"
	TileTac   Tile = "tac"
)

// Stage governs which events are legal on a GameState.
type Stage string

const (
	StagePreGame Stage = "pre_game"
	StageInGame  Stage = "in_game"
	StageEnded   Stage = "ended"
)

// PlayerID is an opaque identifier, unique per connection, supplied by the
// transport layer. The store never generates ids itself.
type PlayerID uint64

// Player holds what the store knows about a participant. The piece is
// assigned at join time and never changes.
type Player struct {
	Name  string `json:"name"`
	Piece Tile   `json:"piece"`
}

// WinCombos - the 8 canonical lines: rows, then columns, then diagonals.
// Winner detection scans them in this order and the first complete line wins.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// GameState is the sole mutable aggregate of a match. The authoritative
// server mutates it exclusively through ValidOn + Consume; client mirrors
// call Consume only.
type GameState struct {
	Stage          Stage               `json:"stage"`
	Board          [BoardSize]Tile     `json:"board"`
	ActivePlayerID PlayerID            `json:"active_player_id"`
	Players        map[PlayerID]Player `json:"players"`
	History        []GameEvent         `json:"history"`

	// seats keeps join order so the opponent of a player is resolved by
	// direct reference instead of a map scan.
	seats []PlayerID
}

// NewGameState returns a fresh pre-game state with an empty board.
func NewGameState() *GameState {
	return &GameState{
		Stage:   StagePreGame,
		Players: make(map[PlayerID]Player),
	}
}

// Consume applies an already-validated event and appends it to the history.
// It does not re-check legality; callers must guarantee ValidOn-then-Consume
// ordering with no intervening mutation.
func (that *GameState) Consume(event GameEvent) {
	switch event.Kind {
	case EventBeginGame:
		that.ActivePlayerID = event.GoesFirst
		that.Stage = StageInGame
	case EventEndGame:
		that.Stage = StageEnded
	case EventPlayerJoined:
		piece := TileTic
		if len(that.Players) > 0 {
			piece = TileTac
		}
		that.Players[event.PlayerID] = Player{Name: event.Name, Piece: piece}
		that.seats = append(that.seats, event.PlayerID)
	case EventPlayerDisconnected:
		delete(that.Players, event.PlayerID)
		for i, seat := range that.seats {
			if seat == event.PlayerID {
				that.seats = append(that.seats[:i], that.seats[i+1:]...)
				break
			}
		}
	case EventPlaceTile:
		that.Board[event.At] = that.Players[event.PlayerID].Piece
		that.ActivePlayerID = that.opponentOf(event.PlayerID)
	}

	that.History = append(that.History, event)
}

// opponentOf panics when no second player is seated. That is a contract
// violation: the validator rejects place_tile unless exactly two players are
// present.
func (that *GameState) opponentOf(id PlayerID) PlayerID {
	for _, seat := range that.seats {
		if seat != id {
			return seat
		}
	}
	panic("store: no opponent seated for place_tile")
}

// DetermineWinner scans the canonical lines and resolves the owner of the
// first complete one. It reports nothing on a full board with no winner;
// draw detection is the caller's concern.
func (that *GameState) DetermineWinner() (PlayerID, bool) {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a == TileEmpty || a != b || b != c {
			continue
		}

		for _, seat := range that.seats {
			if that.Players[seat].Piece == a {
				return seat, true
			}
		}
	}

	return 0, false
}

// BoardFull reports whether every cell is occupied.
func (that *GameState) BoardFull() bool {
	for _, cell := range that.Board {
		if cell == TileEmpty {
			return false
		}
	}

	return true
}

func (that *GameState) IsPreGame() bool {
	return that.Stage == StagePreGame
}

func (that *GameState) IsInGame() bool {
	return that.Stage == StageInGame
}

func (that *GameState) IsEnded() bool {
	return that.Stage == StageEnded
}
