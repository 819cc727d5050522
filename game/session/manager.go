package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Transports a player can be connected through
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Player is a registry entry for one live connection
type Player struct {
	ID           string    `json:"id"`
	Transport    string    `json:"transport"`
	Remote       string    `json:"remote"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	Commands     int       `json:"commands"`
}

// Manager is the registry of live connections. Its lock is independent of the grid lock.
type Manager struct {
	players map[string]*Player
	mu      sync.RWMutex
}

// NewManager creates an empty registry
func NewManager() *Manager {
	return &Manager{
		players: make(map[string]*Player),
	}
}

// Register adds a player and returns its ID and the live count including it.
// An empty ID is replaced with a generated one.
func (m *Manager) Register(p Player) (string, int, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.ConnectedAt.IsZero() {
		p.ConnectedAt = now
	}
	p.LastActiveAt = p.ConnectedAt

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[p.ID]; exists {
		return "", len(m.players), ErrSessionAlreadyExists
	}
	m.players[p.ID] = &p
	return p.ID, len(m.players), nil
}

// Unregister removes a player
func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[id]; !exists {
		return ErrSessionNotFound
	}
	delete(m.players, id)
	return nil
}

// Touch records one processed command for a player
func (m *Manager) Touch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[id]
	if !exists {
		return ErrSessionNotFound
	}
	p.Commands++
	p.LastActiveAt = time.Now()
	return nil
}

// Get returns a copy of one player entry
func (m *Manager) Get(id string) (Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.players[id]
	if !exists {
		return Player{}, ErrSessionNotFound
	}
	return *p, nil
}

// List returns copies of all entries, oldest connection first
func (m *Manager) List() []Player {
	m.mu.RLock()
	result := make([]Player, 0, len(m.players))
	for _, p := range m.players {
		result = append(result, *p)
	}
	m.mu.RUnlock()

	sortByConnectedAt(result)
	return result
}

// Count returns the number of live players
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Idle returns the players that have not sent a command within maxAge
func (m *Manager) Idle(maxAge time.Duration) []Player {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	var idle []Player
	for _, p := range m.players {
		if p.LastActiveAt.Before(cutoff) {
			idle = append(idle, *p)
		}
	}
	m.mu.RUnlock()

	sortByConnectedAt(idle)
	return idle
}

// sortByConnectedAt orders players oldest first, breaking ties by ID
func sortByConnectedAt(players []Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].ConnectedAt.Equal(players[j].ConnectedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].ConnectedAt.Before(players[j].ConnectedAt)
	})
}
