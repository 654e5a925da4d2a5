package lobby

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/tictactussle/tictactussle-backend/internal/apperror"
	"github.com/tictactussle/tictactussle-backend/internal/store"
)

// Lobby is one independent game session with its own GameState.
type Lobby struct {
	ID      uint64
	Players []store.PlayerID
	Game    *store.GameState
}

// Manager owns the lobby table and the player->lobby reverse index. Every
// mutation happens under one lock and keeps both maps consistent; neither
// map is ever exposed for independent external mutation.
type Manager struct {
	mu          sync.Mutex
	names       map[store.PlayerID]string
	lobbies     map[uint64]*Lobby
	playerLobby map[store.PlayerID]uint64
}

func NewManager() *Manager {
	return &Manager{
		names:       make(map[store.PlayerID]string),
		lobbies:     make(map[uint64]*Lobby),
		playerLobby: make(map[store.PlayerID]uint64),
	}
}

// RegisterPlayer records a connected player's identity.
func (that *Manager) RegisterPlayer(id store.PlayerID, name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.names[id] = name
}

// PlayerName returns the registered name for a connection id.
func (that *Manager) PlayerName(id store.PlayerID) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	name, ok := that.names[id]
	return name, ok
}

// UnregisterPlayer removes a player and cleans up all references to it. If
// the player was seated in a lobby, that lobby is removed as well (a
// two-player game cannot continue without its opponent) and returned so the
// caller can notify the remaining participant.
func (that *Manager) UnregisterPlayer(id store.PlayerID) (*Lobby, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.names, id)

	lobbyID, ok := that.playerLobby[id]
	if !ok {
		return nil, false
	}

	removed := that.lobbies[lobbyID]
	that.removeLobbyLocked(lobbyID)

	return removed, removed != nil
}

// CreateLobby creates an empty lobby with a fresh random id.
func (that *Manager) CreateLobby() *Lobby {
	that.mu.Lock()
	defer that.mu.Unlock()

	id := newLobbyID()
	for {
		if _, taken := that.lobbies[id]; !taken {
			break
		}
		id = newLobbyID()
	}

	created := &Lobby{
		ID:   id,
		Game: store.NewGameState(),
	}
	that.lobbies[id] = created

	return created
}

// Join seats a player in a lobby if both exist and the lobby has room.
func (that *Manager) Join(playerID store.PlayerID, lobbyID uint64) (*Lobby, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, seated := that.playerLobby[playerID]; seated {
		return nil, fmt.Errorf("%w: player %d", apperror.ErrAlreadyInLobby, playerID)
	}

	existing, ok := that.lobbies[lobbyID]
	if !ok {
		return nil, fmt.Errorf("%w: lobby %d", apperror.ErrNoSuchLobby, lobbyID)
	}

	if len(existing.Players) >= store.MaxPlayers {
		return nil, fmt.Errorf("%w: lobby %d", apperror.ErrLobbyFull, lobbyID)
	}

	existing.Players = append(existing.Players, playerID)
	that.playerLobby[playerID] = lobbyID

	return existing, nil
}

// ByPlayer returns the lobby a player is seated in, if any.
func (that *Manager) ByPlayer(playerID store.PlayerID) (*Lobby, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobbyID, ok := that.playerLobby[playerID]
	if !ok {
		return nil, false
	}

	existing, ok := that.lobbies[lobbyID]
	return existing, ok
}

// RemoveLobby removes a lobby and cleans up all references to it.
func (that *Manager) RemoveLobby(lobbyID uint64) (*Lobby, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	removed, ok := that.lobbies[lobbyID]
	if !ok {
		return nil, false
	}

	that.removeLobbyLocked(lobbyID)

	return removed, true
}

func (that *Manager) removeLobbyLocked(lobbyID uint64) {
	existing, ok := that.lobbies[lobbyID]
	if !ok {
		return
	}

	for _, playerID := range existing.Players {
		delete(that.playerLobby, playerID)
	}

	delete(that.lobbies, lobbyID)
}

// newLobbyID - generates a short random identifier that players can share.
func newLobbyID() uint64 {
	n, err := rand.Int(rand.Reader, big.NewInt(99999999))
	if err != nil {
		return 0
	}
	return n.Uint64() + 1
}
