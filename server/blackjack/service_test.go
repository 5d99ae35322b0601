package blackjack

import (
	"context"
	"testing"
	"time"

	"effectjack/server/engine"
	"effectjack/server/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

type scriptedSupply struct {
	cards []engine.Card
}

func (s *scriptedSupply) Draw(_ context.Context, _ *engine.Game) (engine.Card, error) {
	if len(s.cards) == 0 {
		return engine.Card{}, engine.ErrDeckExhausted
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

func plain(id int, n int64) engine.Card {
	return engine.Card{ID: id, Rank: "X", Effects: []engine.Effect{engine.Add(n)}}
}

var clock = time.Date(2025, 9, 26, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, st Store, cards ...engine.Card) (*Service, *scriptedSupply) {
	t.Helper()
	sup := &scriptedSupply{cards: cards}
	svc := NewService(st, sup, Options{
		Rand: constSource(0.5),
		Log:  zaptest.NewLogger(t),
		Now:  func() time.Time { return clock },
	})
	return svc, sup
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestStartGameDefaults(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemory())
	v, err := svc.StartGame(context.Background(), StartGameRequest{})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.True(t, v.Target.Equal(d("21")))
	assert.Equal(t, 5, v.DrawLimit)
	assert.True(t, v.Money.Equal(d("1000")))
	assert.Equal(t, engine.RoundEnd, v.Status)
	assert.Equal(t, 0, v.Round)
	assert.NotNil(t, v.PlayerHand)
	assert.Empty(t, v.PlayerHand)
	require.Len(t, v.PlayerHandValues, 1)
	assert.True(t, v.PlayerHandValues[0].IsZero())
	assert.Equal(t, clock, v.CreatedAt)
}

func TestStartGameRejectsBadArguments(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemory())
	zero, neg := d("0"), d("-1")
	noDraws := 0
	for name, req := range map[string]StartGameRequest{
		"target":    {Target: &zero},
		"drawLimit": {DrawLimit: &noDraws},
		"money":     {InitialMoney: &neg},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.StartGame(context.Background(), req)
			require.ErrorIs(t, err, engine.ErrInvalidArgument)
		})
	}
}

func TestGetStateUnknownGame(t *testing.T) {
	svc, _ := newTestService(t, store.NewMemory())
	_, err := svc.GetState(context.Background(), uuid.New())
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRoundPlayedThroughService(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc, _ := newTestService(t, st, plain(1, 10), plain(2, 7), plain(3, 5))

	v, err := svc.StartGame(ctx, StartGameRequest{})
	require.NoError(t, err)

	v, err = svc.PlaceBet(ctx, v.ID, d("100"))
	require.NoError(t, err)
	assert.Equal(t, engine.DealingToPlayer, v.Status)
	assert.True(t, v.Money.Equal(d("900")))
	assert.Equal(t, 1, v.Round)
	require.Len(t, v.PlayerHand, 2)
	require.Len(t, v.DealerHand, 1)
	assert.Equal(t, []int{1, 3}, []int{v.PlayerHand[0].Seq, v.PlayerHand[1].Seq})
	require.Len(t, v.PlayerHandValues, 1)
	assert.True(t, v.PlayerHandValues[0].Equal(d("15")))

	v, err = svc.Stand(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.RoundEnd, v.Status)
	assert.True(t, v.Money.Equal(d("1100")))

	stored, err := st.Load(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.Money.Equal(d("1100")))
	assert.Equal(t, int64(2), stored.Version)
}

func TestHitSpendsOverdrawThenBusts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, store.NewMemory(),
		plain(1, 10), plain(2, 7), plain(3, 5), plain(4, 10), plain(5, 10))
	limit := 1
	v, err := svc.StartGame(ctx, StartGameRequest{DrawLimit: &limit})
	require.NoError(t, err)
	v, err = svc.PlaceBet(ctx, v.ID, d("100"))
	require.NoError(t, err)

	v, err = svc.Hit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.DealingToPlayer, v.Status)
	assert.Equal(t, 0, v.OverdrawsRemaining)

	v, err = svc.Hit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.RoundEnd, v.Status)
	assert.True(t, v.Money.Equal(d("900")))

	_, err = svc.Hit(ctx, v.ID)
	require.ErrorIs(t, err, engine.ErrPhaseViolation)
}

func TestFailedTransitionCommitsNothing(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc, _ := newTestService(t, st, plain(1, 10))

	v, err := svc.StartGame(ctx, StartGameRequest{})
	require.NoError(t, err)

	_, err = svc.PlaceBet(ctx, v.ID, d("5000"))
	require.ErrorIs(t, err, engine.ErrInvalidBet)

	_, err = svc.PlaceBet(ctx, v.ID, d("100"))
	require.ErrorIs(t, err, engine.ErrDeckExhausted)

	stored, err := st.Load(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.RoundEnd, stored.Status)
	assert.True(t, stored.Money.Equal(d("1000")))
	assert.Equal(t, 0, stored.Round)
	assert.Empty(t, stored.PlayerHand)
	assert.Equal(t, int64(0), stored.Version)
}

// racingStore lets another writer commit between our load and our commit.
type racingStore struct {
	*store.Memory
	raced bool
}

func (r *racingStore) Load(ctx context.Context, id uuid.UUID) (*engine.Game, error) {
	g, err := r.Memory.Load(ctx, id)
	if err != nil || r.raced {
		return g, err
	}
	r.raced = true
	other, err := r.Memory.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	other.Money = other.Money.Add(decimal.NewFromInt(1))
	if err := r.Memory.Commit(ctx, other); err != nil {
		return nil, err
	}
	return g, nil
}

func TestConcurrentCommitConflicts(t *testing.T) {
	ctx := context.Background()
	st := &racingStore{Memory: store.NewMemory()}
	svc, _ := newTestService(t, st, plain(1, 10), plain(2, 7), plain(3, 5))

	v, err := svc.StartGame(ctx, StartGameRequest{})
	require.NoError(t, err)

	_, err = svc.PlaceBet(ctx, v.ID, d("100"))
	require.ErrorIs(t, err, engine.ErrConflict)
	assert.Equal(t, engine.CodeConflict, engine.CodeOf(err))

	stored, err := st.Memory.Load(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.Money.Equal(d("1001")))
	assert.Equal(t, engine.RoundEnd, stored.Status)
}
