package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPlayerGame - a state with Alice (tic) and Bob (tac) seated, Alice to move.
func twoPlayerGame() *GameState {
	state := NewGameState()
	state.Consume(NewPlayerJoined(1, "Alice"))
	state.Consume(NewPlayerJoined(2, "Bob"))
	state.Consume(NewBeginGame(1))

	return state
}

func TestValidOn_BeginGame(t *testing.T) {
	t.Run("Accepts begin game in pre-game with a known player", func(t *testing.T) {
		// Given: a pre-game state with two players
		state := NewGameState()
		state.Consume(NewPlayerJoined(1, "Alice"))
		state.Consume(NewPlayerJoined(2, "Bob"))

		// When: validating begin_game for a known player
		ok := state.ValidOn(NewBeginGame(1))

		// Then: it should be accepted
		assert.True(t, ok)
	})

	t.Run("Rejects begin game for an unknown player", func(t *testing.T) {
		// Given: a pre-game state with one player
		state := NewGameState()
		state.Consume(NewPlayerJoined(1, "Alice"))

		// When: validating begin_game for an unknown player
		ok := state.ValidOn(NewBeginGame(42))

		// Then: it should be rejected
		assert.False(t, ok)
	})

	t.Run("Rejects begin game once the game is running", func(t *testing.T) {
		// Given: a running game
		state := twoPlayerGame()

		// When: validating a second begin_game
		ok := state.ValidOn(NewBeginGame(1))

		// Then: it should be rejected
		assert.False(t, ok)
	})
}

func TestValidOn_EndGame(t *testing.T) {
	t.Run("Accepts player won only while in game", func(t *testing.T) {
		// Given: a running game and a pre-game state
		running := twoPlayerGame()
		fresh := NewGameState()

		// When/Then: player_won is accepted in game and rejected pre-game
		assert.True(t, running.ValidOn(NewEndGame(PlayerWon(1))))
		assert.False(t, fresh.ValidOn(NewEndGame(PlayerWon(1))))
	})

	t.Run("Accepts draw only while in game", func(t *testing.T) {
		running := twoPlayerGame()
		fresh := NewGameState()

		assert.True(t, running.ValidOn(NewEndGame(Draw())))
		assert.False(t, fresh.ValidOn(NewEndGame(Draw())))
	})

	t.Run("Accepts player left in any stage", func(t *testing.T) {
		// Given: a pre-game state
		state := NewGameState()

		// When: validating end_game with a player_left reason
		ok := state.ValidOn(NewEndGame(PlayerLeft(1)))

		// Then: it should be accepted
		assert.True(t, ok)
	})

	t.Run("Rejects end game without a reason", func(t *testing.T) {
		state := twoPlayerGame()

		ok := state.ValidOn(GameEvent{Kind: EventEndGame})

		assert.False(t, ok)
	})
}

func TestValidOn_PlayerJoined(t *testing.T) {
	t.Run("Rejects a duplicate join", func(t *testing.T) {
		// Given: a state with player 1 seated
		state := NewGameState()
		state.Consume(NewPlayerJoined(1, "Alice"))

		// When: the same player joins again
		ok := state.ValidOn(NewPlayerJoined(1, "Alice"))

		// Then: it should be rejected
		assert.False(t, ok)
	})

	t.Run("Rejects a third join", func(t *testing.T) {
		// Given: a state with two players seated
		state := NewGameState()
		state.Consume(NewPlayerJoined(1, "Alice"))
		state.Consume(NewPlayerJoined(2, "Bob"))

		// When: a third player tries to join
		ok := state.ValidOn(NewPlayerJoined(3, "Mallory"))

		// Then: it should be rejected
		assert.False(t, ok)
	})
}

func TestValidOn_PlayerDisconnected(t *testing.T) {
	t.Run("Rejects disconnect of an unknown player", func(t *testing.T) {
		state := NewGameState()

		ok := state.ValidOn(NewPlayerDisconnected(7))

		assert.False(t, ok)
	})

	t.Run("Accepts disconnect of a seated player", func(t *testing.T) {
		state := twoPlayerGame()

		ok := state.ValidOn(NewPlayerDisconnected(2))

		assert.True(t, ok)
	})
}

func TestValidOn_PlaceTile(t *testing.T) {
	t.Run("Rejects a move by an unknown player", func(t *testing.T) {
		state := twoPlayerGame()

		ok := state.ValidOn(NewPlaceTile(42, 4))

		assert.False(t, ok)
	})

	t.Run("Rejects an out-of-turn move and leaves state unchanged", func(t *testing.T) {
		// Given: a running game where it is player 1's turn
		state := twoPlayerGame()
		historyLen := len(state.History)

		// When: player 2 tries to move
		ok := state.ValidOn(NewPlaceTile(2, 4))

		// Then: the move is rejected and nothing changed
		assert.False(t, ok)
		assert.Equal(t, PlayerID(1), state.ActivePlayerID)
		assert.Len(t, state.History, historyLen)
	})

	t.Run("Rejects an out-of-range index for any state", func(t *testing.T) {
		state := twoPlayerGame()

		assert.False(t, state.ValidOn(NewPlaceTile(1, 9)))
		assert.False(t, state.ValidOn(NewPlaceTile(1, -1)))
	})

	t.Run("Rejects a move onto an occupied cell", func(t *testing.T) {
		// Given: a running game where cell 0 holds a tic
		state := twoPlayerGame()
		state.Consume(NewPlaceTile(1, 0))

		// When: the tac player targets the same cell
		ok := state.ValidOn(NewPlaceTile(2, 0))

		// Then: it should be rejected
		assert.False(t, ok)
	})

	t.Run("Rejects a move when fewer than two players are seated", func(t *testing.T) {
		// Given: a running game that lost a player
		state := twoPlayerGame()
		state.Consume(NewPlayerDisconnected(2))

		// When: the remaining player tries to move
		ok := state.ValidOn(NewPlaceTile(1, 4))

		// Then: it should be rejected
		assert.False(t, ok)
	})

	t.Run("Accepts a legal move", func(t *testing.T) {
		state := twoPlayerGame()

		ok := state.ValidOn(NewPlaceTile(1, 4))

		assert.True(t, ok)
	})
}

func TestValidOn_IsPure(t *testing.T) {
	t.Run("Repeated validation returns the same result and mutates nothing", func(t *testing.T) {
		// Given: a running game and an arbitrary event
		state := twoPlayerGame()
		event := NewPlaceTile(1, 4)

		before := *state
		beforeHistory := append([]GameEvent(nil), state.History...)

		// When: validating the same event twice
		first := state.ValidOn(event)
		second := state.ValidOn(event)

		// Then: the answers match and the state is untouched
		require.Equal(t, first, second)
		assert.Equal(t, before.Stage, state.Stage)
		assert.Equal(t, before.Board, state.Board)
		assert.Equal(t, before.ActivePlayerID, state.ActivePlayerID)
		assert.Equal(t, beforeHistory, state.History)
	})
}
