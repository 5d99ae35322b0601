package store

import (
	"context"
	"os"
	"testing"

	"effectjack/server/engine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a disposable database: TEST_DATABASE_URL=postgres://... go test ./server/store
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, db.SeedCatalog(ctx, engine.StandardSuits(), engine.StandardDeck()))
	return db
}

func TestPostgresRoundTripAndConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	g := newGame()
	require.NoError(t, db.Create(ctx, g))

	loaded, err := db.Load(ctx, g.ID)
	require.NoError(t, err)
	stale, err := db.Load(ctx, g.ID)
	require.NoError(t, err)

	for _, o := range []engine.Owner{engine.Player, engine.Dealer, engine.Player} {
		c, err := db.Draw(ctx, loaded)
		require.NoError(t, err)
		placeForTest(loaded, c, o)
	}
	loaded.Money = decimal.RequireFromString("900.25")
	loaded.Status = engine.DealingToPlayer
	require.NoError(t, db.Commit(ctx, loaded))

	got, err := db.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, got.Money.Equal(loaded.Money))
	assert.Len(t, got.PlayerHand, 2)
	assert.Len(t, got.DealerHand, 1)
	assert.Equal(t, loaded.Version, got.Version)

	require.ErrorIs(t, db.Commit(ctx, stale), engine.ErrConflict)

	_, err = db.Load(ctx, uuid.New())
	require.ErrorIs(t, err, engine.ErrNotFound)
}
