package engine

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Supply deals cards into a game. Draw must never return a card already held
// by either hand and fails with ErrDeckExhausted when nothing is left.
type Supply interface {
	Draw(ctx context.Context, g *Game) (Card, error)
}

const DefaultMaxDealerSteps = 64

// Table runs round transitions against an in-memory Game. A transition that
// returns an error may leave g partially modified; callers discard it instead
// of committing.
type Table struct {
	Supply Supply
	Rand   Source
	Log    *zap.Logger

	// MaxDealerSteps caps the dealer loop; the dealer stands when it is hit.
	MaxDealerSteps int
}

func (t *Table) logger(g *Game) *zap.Logger {
	l := t.Log
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.Stringer("game", g.ID), zap.Int("round", g.Round))
}

func (t *Table) maxDealerSteps() int {
	if t.MaxDealerSteps > 0 {
		return t.MaxDealerSteps
	}
	return DefaultMaxDealerSteps
}

func (t *Table) deal(ctx context.Context, g *Game, o Owner) error {
	c, err := t.Supply.Draw(ctx, g)
	if err != nil {
		return fmt.Errorf("deal to %s: %w", o, err)
	}
	g.place(c, o)
	t.logger(g).Debug("card dealt",
		zap.String("to", string(o)),
		zap.Stringer("card", c),
		zap.Stringers("effects", c.Effects),
		zap.Int("hand_size", len(g.Hand(o))))
	return nil
}

// StartRound takes the bet and deals player, dealer, player. A player hand
// already worth exactly target stands immediately.
func (t *Table) StartRound(ctx context.Context, g *Game, bet decimal.Decimal) error {
	if g.Status != RoundEnd {
		return Errorf(CodePhaseViolation, "can only place a bet at the end of a round")
	}
	if !bet.IsPositive() || bet.GreaterThan(g.Money) {
		return Errorf(CodeInvalidBet, "invalid bet amount %s with %s available", bet, g.Money)
	}

	g.Round++
	g.Bet = bet
	g.Money = g.Money.Sub(bet)
	g.OverdrawsRemaining = g.OverdrawLimit
	g.clearHands()
	g.Status = DealingToPlayer
	log := t.logger(g)
	log.Info("bet placed", zap.Stringer("bet", bet), zap.Stringer("money", g.Money))

	for _, o := range [...]Owner{Player, Dealer, Player} {
		if err := t.deal(ctx, g, o); err != nil {
			return err
		}
	}

	if HandValue(g.Target, g.PlayerHand, t.Rand).Equal(g.Target) {
		log.Info("player has target on the deal, auto-stand")
		return t.Stand(ctx, g)
	}
	return nil
}

// Hit deals one card to the player. Going over target spends an overdraw if
// one is left, otherwise the round ends with the bet lost.
func (t *Table) Hit(ctx context.Context, g *Game) error {
	if g.Status != DealingToPlayer {
		return Errorf(CodePhaseViolation, "it's not the player's turn to hit")
	}
	if err := t.deal(ctx, g, Player); err != nil {
		return err
	}

	value := HandValue(g.Target, g.PlayerHand, t.Rand)
	if !value.GreaterThan(g.Target) {
		return nil
	}
	log := t.logger(g)
	if g.OverdrawsRemaining > 0 {
		g.OverdrawsRemaining--
		log.Info("player over target", zap.Stringer("value", value), zap.Int("overdraws_remaining", g.OverdrawsRemaining))
		return nil
	}
	g.Status = RoundEnd
	log.Info("player bust", zap.Stringer("value", value))
	return nil
}

// Stand plays the dealer's turn to completion and settles the bet.
func (t *Table) Stand(ctx context.Context, g *Game) error {
	if g.Status != DealingToPlayer {
		return Errorf(CodePhaseViolation, "it's not the player's turn")
	}
	g.Status = DealingToDealer

	if err := t.playDealer(ctx, g); err != nil {
		return err
	}

	player := HandValue(g.Target, g.PlayerHand, t.Rand)
	dealer := HandValue(g.Target, g.DealerHand, t.Rand)
	money, outcome := Settle(g.Money, g.Bet, g.Target, player, dealer)
	g.Money = money
	g.Status = RoundEnd
	t.logger(g).Info("round settled",
		zap.String("outcome", string(outcome)),
		zap.Stringer("player", player),
		zap.Stringer("dealer", dealer),
		zap.Stringer("money", g.Money))
	return nil
}

func (t *Table) playDealer(ctx context.Context, g *Game) error {
	log := t.logger(g)
	threshold := HitThreshold(g.Target)
	for step := 0; ; step++ {
		if step >= t.maxDealerSteps() {
			log.Warn("dealer step cap reached, forcing stand", zap.Int("steps", step))
			return nil
		}
		value := HandValue(g.Target, g.DealerHand, t.Rand)
		move := NextDealerMove(value, g.Target, threshold, g.OverdrawsRemaining, t.Rand)
		switch move {
		case DealerOverdraw:
			g.OverdrawsRemaining--
			log.Info("dealer overdraw", zap.Stringer("value", value), zap.Int("overdraws_remaining", g.OverdrawsRemaining))
		case DealerBust, DealerStand:
			log.Info("dealer "+move.String(), zap.Stringer("value", value))
			return nil
		case DealerGamble, DealerDraw:
			if move == DealerGamble {
				log.Info("dealer gambled a hit", zap.Stringer("value", value))
			}
			if err := t.deal(ctx, g, Dealer); err != nil {
				return err
			}
		}
	}
}
