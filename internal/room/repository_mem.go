package room

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"kaboom/internal/game/engine"
)

// memRepo 内存实现，行为与 redis 版对齐；TTL 忽略，仅供测试与单机模式。
type memRepo struct {
	mu       sync.Mutex
	rooms    map[string]*Room
	games    map[string][]byte
	versions map[string]int64
}

func NewMemoryRepo() Repo {
	return &memRepo{
		rooms:    make(map[string]*Room),
		games:    make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (m *memRepo) SaveRoom(ctx context.Context, r *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.Players = append([]RoomPlayer(nil), r.Players...)
	m.rooms[r.ID] = &cp
	return nil
}

func (m *memRepo) GetRoom(ctx context.Context, id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	cp := *r
	cp.Players = append([]RoomPlayer(nil), r.Players...)
	return &cp, nil
}

func (m *memRepo) ListOpen(ctx context.Context) ([]*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if r.IsStarted || len(r.Players) >= r.MaxPlayers {
			continue
		}
		cp := *r
		cp.Players = append([]RoomPlayer(nil), r.Players...)
		rooms = append(rooms, &cp)
	}
	sortRoomsByCreation(rooms)
	return rooms, nil
}

func (m *memRepo) DeleteRoom(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	return nil
}

func (m *memRepo) GetGame(ctx context.Context, roomID string) (*engine.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.games[roomID]
	if !ok {
		return nil, ErrGameNotFound
	}
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	state.Version = m.versions[roomID]
	return &state, nil
}

func (m *memRepo) SaveGame(ctx context.Context, roomID string, state *engine.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[roomID] != state.Version {
		return ErrStaleState
	}
	next := *state
	next.Version = state.Version + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	m.games[roomID] = data
	m.versions[roomID] = next.Version
	state.Version = next.Version
	return nil
}

func (m *memRepo) DeleteGame(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, roomID)
	delete(m.versions, roomID)
	return nil
}

func sortRoomsByCreation(rooms []*Room) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
}
