package store

import (
	"context"
	"sync"

	"effectjack/server/engine"

	"github.com/google/uuid"
)

// Memory keeps games in process. It applies the same version check as the
// durable stores and never hands out its own copies.
type Memory struct {
	mu    sync.Mutex
	games map[uuid.UUID]*engine.Game
}

func NewMemory() *Memory {
	return &Memory{games: map[uuid.UUID]*engine.Game{}}
}

func (m *Memory) Create(_ context.Context, g *engine.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return engine.Errorf(engine.CodeConflict, "game %s already exists", g.ID)
	}
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *Memory) Load(_ context.Context, id uuid.UUID) (*engine.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, notFound(id)
	}
	return g.Clone(), nil
}

func (m *Memory) Commit(_ context.Context, g *engine.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return notFound(g.ID)
	}
	if cur.Version != g.Version {
		return conflict(g)
	}
	g.Version++
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
