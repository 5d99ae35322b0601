package store

import (
	"context"
	"os"
	"testing"
	"time"

	"effectjack/server/engine"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRecordDecodesHashFields(t *testing.T) {
	g := newGame()
	g.Money = decimal.RequireFromString("-50.5")
	g.Status = engine.DealingToPlayer
	g.Round = 3
	g.CreatedAt = time.Date(2025, 9, 26, 18, 19, 57, 0, time.UTC)
	g.UpdatedAt = g.CreatedAt.Add(time.Minute)
	deck := engine.StandardDeck()
	placeForTest(g, deck[0], engine.Player)
	placeForTest(g, deck[9], engine.Dealer)
	placeForTest(g, deck[20], engine.Player)

	fields, err := encodeGame(g, 7)
	require.NoError(t, err)
	strFields := map[string]string{}
	for k, v := range fields {
		strFields[k] = v.(string)
	}

	got, err := decodeGame(strFields)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.True(t, got.Money.Equal(g.Money))
	assert.Equal(t, int64(7), got.Version)
	assert.Equal(t, 3, got.Round)
	assert.Equal(t, engine.DealingToPlayer, got.Status)
	assert.True(t, got.UpdatedAt.Equal(g.UpdatedAt))
	require.Len(t, got.PlayerHand, 2)
	require.Len(t, got.DealerHand, 1)
	assert.Equal(t, 3, got.PlayerHand[1].Seq)
	ace := got.PlayerHand[0].Card
	require.Len(t, ace.Effects, 2)
	assert.Equal(t, engine.OpAdd, ace.Effects[1].Op)
	assert.True(t, ace.Effects[1].Value.Equal(decimal.NewFromInt(11)))
}

// Needs a live server: TEST_REDIS_ADDR=localhost:6379 go test ./server/store
func openTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	r, err := OpenRedis(context.Background(), &redis.Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisCreateWritesWholeRecord(t *testing.T) {
	r := openTestRedis(t)
	ctx := context.Background()
	g := newGame()
	require.NoError(t, r.Create(ctx, g))

	fields, err := r.rdb.HGetAll(ctx, gameKey(g.ID)).Result()
	require.NoError(t, err)
	want, err := encodeGame(g, g.Version)
	require.NoError(t, err)
	assert.Len(t, fields, len(want))

	require.ErrorIs(t, r.Create(ctx, g), engine.ErrConflict)
	got, err := r.Load(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, got.Money.Equal(g.Money))
}

func TestRedisOptimisticCommit(t *testing.T) {
	r := openTestRedis(t)
	ctx := context.Background()

	g := newGame()
	require.NoError(t, r.Create(ctx, g))
	a, err := r.Load(ctx, g.ID)
	require.NoError(t, err)
	b, err := r.Load(ctx, g.ID)
	require.NoError(t, err)

	a.Round = 1
	require.NoError(t, r.Commit(ctx, a))
	require.ErrorIs(t, r.Commit(ctx, b), engine.ErrConflict)
}
