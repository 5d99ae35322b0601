package blackjack

import (
	"context"

	"effectjack/server/engine"

	"github.com/google/uuid"
)

// Store is the persistence gateway. Commit must reject a game whose Version
// no longer matches the stored one with engine.ErrConflict, and bump Version
// on success.
type Store interface {
	Create(ctx context.Context, g *engine.Game) error
	Load(ctx context.Context, id uuid.UUID) (*engine.Game, error)
	Commit(ctx context.Context, g *engine.Game) error
	Ping(ctx context.Context) error
}
