package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tictactussle/tictactussle-backend/internal/store"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRecord is the terminal snapshot of a finished match. Live game state
// is memory-resident only; the archive keeps nothing but these snapshots.
type MatchRecord struct {
	ID         string                          `json:"id"`
	LobbyID    uint64                          `json:"lobby_id"`
	Reason     store.EndReason                 `json:"reason"`
	Winner     store.PlayerID                  `json:"winner,omitempty"`
	Board      [store.BoardSize]store.Tile     `json:"board"`
	Players    map[store.PlayerID]store.Player `json:"players,omitempty"`
	History    []store.GameEvent               `json:"history"`
	FinishedAt time.Time                       `json:"finished_at"`
}

type MatchArchive interface {
	Save(ctx context.Context, record *MatchRecord) error
	GetByID(ctx context.Context, id string) (*MatchRecord, error)
}

type dbMatch struct {
	client *redis.Client
}

func NewMatchArchive(client *redis.Client) MatchArchive {
	return &dbMatch{
		client: client,
	}
}

func (that *dbMatch) Save(ctx context.Context, record *MatchRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	recordJSON, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not marshal match record: %w", err)
	}

	matchKey := "match:" + record.ID
	if err = that.client.Set(ctx, matchKey, recordJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set match record: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, id string) (*MatchRecord, error) {
	matchKey := "match:" + id

	response, err := that.client.Get(ctx, matchKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by ID: %w", err)
	}

	var record MatchRecord
	if err = json.Unmarshal([]byte(response), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match record: %w", err)
	}

	return &record, nil
}
