package blackjack

import (
	"context"
	"fmt"
	"time"

	"effectjack/server/engine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTarget    = 21
	DefaultDrawLimit = 5
	DefaultMoney     = 1000
)

type Options struct {
	Rand           engine.Source
	Log            *zap.Logger
	MaxDealerSteps int
	Now            func() time.Time
}

// Service runs every operation as load, transition, commit. A transition that
// fails commits nothing, and a commit that loses a race returns
// engine.ErrConflict to the caller.
type Service struct {
	store Store
	table *engine.Table
	rand  engine.Source
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, supply engine.Supply, opts Options) *Service {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = engine.NewSource(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store: store,
		table: &engine.Table{
			Supply:         supply,
			Rand:           opts.Rand,
			Log:            opts.Log,
			MaxDealerSteps: opts.MaxDealerSteps,
		},
		rand: opts.Rand,
		log:  opts.Log,
		now:  opts.Now,
	}
}

// StartGameRequest leaves unset fields at their defaults.
type StartGameRequest struct {
	Target       *decimal.Decimal `json:"target,omitempty"`
	DrawLimit    *int             `json:"drawLimit,omitempty"`
	InitialMoney *decimal.Decimal `json:"initialMoney,omitempty"`
}

func (r StartGameRequest) resolve() (target decimal.Decimal, drawLimit int, money decimal.Decimal, err error) {
	target = decimal.NewFromInt(DefaultTarget)
	drawLimit = DefaultDrawLimit
	money = decimal.NewFromInt(DefaultMoney)
	if r.Target != nil {
		target = *r.Target
	}
	if r.DrawLimit != nil {
		drawLimit = *r.DrawLimit
	}
	if r.InitialMoney != nil {
		money = *r.InitialMoney
	}
	switch {
	case target.LessThan(decimal.NewFromInt(1)):
		err = engine.Errorf(engine.CodeInvalidArgument, "target must be at least 1, got %s", target)
	case drawLimit < 1:
		err = engine.Errorf(engine.CodeInvalidArgument, "drawLimit must be at least 1, got %d", drawLimit)
	case money.IsNegative():
		err = engine.Errorf(engine.CodeInvalidArgument, "initialMoney must not be negative, got %s", money)
	}
	return
}

func (s *Service) StartGame(ctx context.Context, req StartGameRequest) (GameView, error) {
	target, drawLimit, money, err := req.resolve()
	if err != nil {
		return GameView{}, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return GameView{}, fmt.Errorf("new game id: %w", err)
	}
	g := engine.NewGame(id, target, drawLimit, money)
	g.CreatedAt = s.now().UTC()
	g.UpdatedAt = g.CreatedAt
	if err := s.store.Create(ctx, g); err != nil {
		return GameView{}, fmt.Errorf("create game: %w", err)
	}
	s.log.Info("game started",
		zap.Stringer("game", id),
		zap.Stringer("target", target),
		zap.Int("draw_limit", drawLimit),
		zap.Stringer("money", money))
	return newView(g, s.rand), nil
}

func (s *Service) GetState(ctx context.Context, id uuid.UUID) (GameView, error) {
	g, err := s.store.Load(ctx, id)
	if err != nil {
		return GameView{}, err
	}
	return newView(g, s.rand), nil
}

func (s *Service) PlaceBet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (GameView, error) {
	return s.transition(ctx, id, "bet", func(g *engine.Game) error {
		return s.table.StartRound(ctx, g, amount)
	})
}

func (s *Service) Hit(ctx context.Context, id uuid.UUID) (GameView, error) {
	return s.transition(ctx, id, "hit", func(g *engine.Game) error {
		return s.table.Hit(ctx, g)
	})
}

func (s *Service) Stand(ctx context.Context, id uuid.UUID) (GameView, error) {
	return s.transition(ctx, id, "stand", func(g *engine.Game) error {
		return s.table.Stand(ctx, g)
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, action string, fn func(*engine.Game) error) (GameView, error) {
	g, err := s.store.Load(ctx, id)
	if err != nil {
		return GameView{}, err
	}
	if err := fn(g); err != nil {
		s.log.Debug("transition rejected", zap.String("action", action), zap.Stringer("game", id), zap.Error(err))
		return GameView{}, err
	}
	g.UpdatedAt = s.now().UTC()
	if err := s.store.Commit(ctx, g); err != nil {
		s.log.Warn("commit failed", zap.String("action", action), zap.Stringer("game", id), zap.Error(err))
		return GameView{}, err
	}
	return newView(g, s.rand), nil
}

// Ping reports whether the persistence backend is reachable.
func (s *Service) Ping(ctx context.Context) error { return s.store.Ping(ctx) }
