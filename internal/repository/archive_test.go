package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tictactussle/tictactussle-backend/internal/repository"
	"github.com/tictactussle/tictactussle-backend/internal/store"
	"github.com/tictactussle/tictactussle-backend/testing/suite"
)

func TestMatchArchive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, s := suite.New(t)
	archive := repository.NewMatchArchive(s.Storage)

	t.Run("Save assigns an id and GetByID returns the snapshot", func(t *testing.T) {
		// Given: a finished match
		record := &repository.MatchRecord{
			LobbyID: 42,
			Reason:  store.ReasonPlayerWon,
			Winner:  1,
			Board: [store.BoardSize]store.Tile{
				store.TileTic, store.TileTic, store.TileTic,
				store.TileTac, store.TileTac, store.TileEmpty,
				store.TileEmpty, store.TileEmpty, store.TileEmpty,
			},
			Players: map[store.PlayerID]store.Player{
				1: {Name: "Alice", Piece: store.TileTic},
				2: {Name: "Bob", Piece: store.TileTac},
			},
			History: []store.GameEvent{
				store.NewPlayerJoined(1, "Alice"),
				store.NewPlayerJoined(2, "Bob"),
				store.NewBeginGame(1),
			},
			FinishedAt: time.Now().UTC().Truncate(time.Second),
		}

		// When: the record is saved
		err := archive.Save(ctx, record)
		require.NoError(t, err)
		require.NotEmpty(t, record.ID)

		// Then: it comes back intact
		loaded, err := archive.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record, loaded)
	})

	t.Run("Save keeps an id the caller supplied", func(t *testing.T) {
		record := &repository.MatchRecord{
			ID:     "fixed-id",
			Reason: store.ReasonDraw,
		}

		err := archive.Save(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, "fixed-id", record.ID)

		loaded, err := archive.GetByID(ctx, "fixed-id")
		require.NoError(t, err)
		assert.Equal(t, store.ReasonDraw, loaded.Reason)
	})

	t.Run("GetByID reports a missing match", func(t *testing.T) {
		_, err := archive.GetByID(ctx, "no-such-match")

		require.ErrorIs(t, err, repository.ErrMatchNotFound)
	})
}
