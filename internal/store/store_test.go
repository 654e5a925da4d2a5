package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsume_PlayerJoined(t *testing.T) {
	t.Run("First joiner gets tic, second gets tac", func(t *testing.T) {
		// Given: a fresh state
		state := NewGameState()

		// When: Alice then Bob join
		state.Consume(NewPlayerJoined(1, "Alice"))
		state.Consume(NewPlayerJoined(2, "Bob"))

		// Then: pieces follow join order and both are seated
		require.Len(t, state.Players, 2)
		assert.Equal(t, Player{Name: "Alice", Piece: TileTic}, state.Players[1])
		assert.Equal(t, Player{Name: "Bob", Piece: TileTac}, state.Players[2])
	})
}

func TestConsume_BeginGame(t *testing.T) {
	t.Run("Sets the stage and the first mover", func(t *testing.T) {
		// Given: two seated players
		state := NewGameState()
		state.Consume(NewPlayerJoined(1, "Alice"))
		state.Consume(NewPlayerJoined(2, "Bob"))

		// When: the game begins with player 2 first
		state.Consume(NewBeginGame(2))

		// Then: the state is in game and player 2 is active
		assert.Equal(t, StageInGame, state.Stage)
		assert.Equal(t, PlayerID(2), state.ActivePlayerID)
	})
}

func TestConsume_PlaceTile(t *testing.T) {
	t.Run("Writes the acting player's piece and flips the turn", func(t *testing.T) {
		// Given: a running game, player 1 (tic) to move
		state := twoPlayerGame()

		// When: player 1 places at 4
		state.Consume(NewPlaceTile(1, 4))

		// Then: the cell holds a tic and player 2 is active
		assert.Equal(t, TileTic, state.Board[4])
		assert.Equal(t, PlayerID(2), state.ActivePlayerID)

		// When: player 2 places at 0
		state.Consume(NewPlaceTile(2, 0))

		// Then: the cell holds a tac and the turn is back with player 1
		assert.Equal(t, TileTac, state.Board[0])
		assert.Equal(t, PlayerID(1), state.ActivePlayerID)
	})

	t.Run("A placed tile persists across subsequent events", func(t *testing.T) {
		state := twoPlayerGame()

		state.Consume(NewPlaceTile(1, 4))
		state.Consume(NewPlaceTile(2, 0))
		state.Consume(NewPlaceTile(1, 8))

		assert.Equal(t, TileTic, state.Board[4])
	})

	t.Run("Panics when no opponent is seated", func(t *testing.T) {
		// Given: a running game that lost its second player
		state := twoPlayerGame()
		state.Consume(NewPlayerDisconnected(2))

		// Then: consuming a move is a contract violation
		require.Panics(t, func() {
			state.Consume(NewPlaceTile(1, 4))
		})
	})
}

func TestConsume_PlayerDisconnected(t *testing.T) {
	t.Run("Removes the player and invalidates further events from them", func(t *testing.T) {
		// Given: a running game
		state := twoPlayerGame()

		// When: player 1 disconnects
		state.Consume(NewPlayerDisconnected(1))

		// Then: the player is gone and can no longer act
		require.Len(t, state.Players, 1)
		assert.False(t, state.ValidOn(NewPlaceTile(1, 0)))
		assert.False(t, state.ValidOn(NewPlayerDisconnected(1)))
	})
}

func TestConsume_EndGame(t *testing.T) {
	t.Run("Moves the state to ended", func(t *testing.T) {
		state := twoPlayerGame()

		state.Consume(NewEndGame(PlayerWon(1)))

		assert.Equal(t, StageEnded, state.Stage)
		assert.True(t, state.IsEnded())
	})
}

func TestConsume_History(t *testing.T) {
	t.Run("Appends exactly one entry per consumed event, in order", func(t *testing.T) {
		// Given: a fresh state
		state := NewGameState()

		// When: a sequence of events is consumed
		events := []GameEvent{
			NewPlayerJoined(1, "Alice"),
			NewPlayerJoined(2, "Bob"),
			NewBeginGame(1),
			NewPlaceTile(1, 0),
		}
		for _, event := range events {
			state.Consume(event)
		}

		// Then: history matches the sequence one-to-one
		require.Len(t, state.History, len(events))
		assert.Equal(t, events, state.History)
	})
}

func TestDetermineWinner(t *testing.T) {
	t.Run("Resolves a completed row to the player owning the piece", func(t *testing.T) {
		// Given: Bob (tac) owns the top row
		state := twoPlayerGame()
		state.Board = [BoardSize]Tile{
			TileTac, TileTac, TileTac,
			TileEmpty, TileEmpty, TileEmpty,
			TileEmpty, TileEmpty, TileEmpty,
		}

		// When: determining the winner
		winner, ok := state.DetermineWinner()

		// Then: Bob wins
		require.True(t, ok)
		assert.Equal(t, PlayerID(2), winner)
	})

	t.Run("Resolves a column and a diagonal", func(t *testing.T) {
		column := twoPlayerGame()
		column.Board = [BoardSize]Tile{
			TileTic, TileEmpty, TileEmpty,
			TileTic, TileEmpty, TileEmpty,
			TileTic, TileEmpty, TileEmpty,
		}

		winner, ok := column.DetermineWinner()
		require.True(t, ok)
		assert.Equal(t, PlayerID(1), winner)

		diagonal := twoPlayerGame()
		diagonal.Board = [BoardSize]Tile{
			TileTic, TileEmpty, TileEmpty,
			TileEmpty, TileTic, TileEmpty,
			TileEmpty, TileEmpty, TileTic,
		}

		winner, ok = diagonal.DetermineWinner()
		require.True(t, ok)
		assert.Equal(t, PlayerID(1), winner)
	})

	t.Run("Reports nothing on an empty board", func(t *testing.T) {
		state := twoPlayerGame()

		_, ok := state.DetermineWinner()

		assert.False(t, ok)
	})

	t.Run("Reports nothing on a full board with no line", func(t *testing.T) {
		// Given: a drawn board
		state := twoPlayerGame()
		state.Board = [BoardSize]Tile{
			TileTic, TileTac, TileTic,
			TileTic, TileTac, TileTac,
			TileTac, TileTic, TileTic,
		}

		// When/Then: no winner, but the board is full
		_, ok := state.DetermineWinner()
		assert.False(t, ok)
		assert.True(t, state.BoardFull())
	})
}

func TestBoardFull(t *testing.T) {
	t.Run("False while any cell is empty", func(t *testing.T) {
		state := twoPlayerGame()
		state.Consume(NewPlaceTile(1, 4))

		assert.False(t, state.BoardFull())
	})
}

func TestStagePredicates(t *testing.T) {
	t.Run("Track the lifecycle", func(t *testing.T) {
		state := NewGameState()
		assert.True(t, state.IsPreGame())

		state.Consume(NewPlayerJoined(1, "Alice"))
		state.Consume(NewPlayerJoined(2, "Bob"))
		state.Consume(NewBeginGame(1))
		assert.True(t, state.IsInGame())

		state.Consume(NewEndGame(Draw()))
		assert.True(t, state.IsEnded())
	})
}
