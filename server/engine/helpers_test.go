package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

// seqSource replays vals in order and fails the test when it runs out.
type seqSource struct {
	t    *testing.T
	vals []float64
}

func (s *seqSource) Float64() float64 {
	s.t.Helper()
	if len(s.vals) == 0 {
		s.t.Fatal("random source exhausted")
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v
}

type noSource struct{ t *testing.T }

func (s noSource) Float64() float64 {
	s.t.Helper()
	s.t.Fatal("random source consulted unexpectedly")
	return 0
}

// scriptedSupply deals its cards in order.
type scriptedSupply struct {
	cards []Card
}

func (s *scriptedSupply) Draw(_ context.Context, _ *Game) (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eff(op Op, v string) Effect { return Effect{Op: op, Value: dec(v)} }

var nextCardID = 1000

func card(effects ...Effect) Card {
	nextCardID++
	return Card{ID: nextCardID, Rank: "X", Suit: standardSuits[0], Effects: effects}
}

func hand(cards ...Card) []HandCard {
	out := make([]HandCard, len(cards))
	for i, c := range cards {
		out[i] = HandCard{Card: c, Owner: Player, Seq: i + 1}
	}
	return out
}

func newTestGame(money string) *Game {
	return NewGame(uuid.New(), dec("21"), 5, dec(money))
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
