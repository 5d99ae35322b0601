package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Owner string

const (
	Player Owner = "Player"
	Dealer Owner = "Dealer"
)

type Status string

const (
	DealingToPlayer Status = "DealingToPlayer"
	DealingToDealer Status = "DealingToDealer"
	RoundEnd        Status = "RoundEnd"
)

type Suit struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	ColorRGB int    `json:"colorRGB"`
}

// Card is a catalog entry. Effects are evaluated in slice order.
type Card struct {
	ID        int       `json:"id"`
	Rank      string    `json:"rank"`
	Suit      Suit      `json:"suit"`
	Effects   []Effect  `json:"effects"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HandCard binds a catalog card to one side of the table for the current round.
// Seq is the 1-based draw order within the round.
type HandCard struct {
	Card  Card  `json:"card"`
	Owner Owner `json:"ownerType"`
	Seq   int   `json:"seq"`
}

// Game is the round aggregate. It is stored and committed as a unit; Version is
// the optimistic concurrency token checked by the persistence gateways.
type Game struct {
	ID                 uuid.UUID
	Target             decimal.Decimal
	OverdrawLimit      int
	OverdrawsRemaining int
	Money              decimal.Decimal
	Round              int
	Bet                decimal.Decimal
	Status             Status
	PlayerHand         []HandCard
	DealerHand         []HandCard
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
}

// NewGame returns a game ready for its first bet.
func NewGame(id uuid.UUID, target decimal.Decimal, overdrawLimit int, money decimal.Decimal) *Game {
	return &Game{
		ID:            id,
		Target:        target,
		OverdrawLimit: overdrawLimit,
		Money:         money,
		Bet:           decimal.Zero,
		Status:        RoundEnd,
	}
}

func (g *Game) Hand(o Owner) []HandCard {
	if o == Dealer {
		return g.DealerHand
	}
	return g.PlayerHand
}

// Holds reports whether the card is already in either hand.
func (g *Game) Holds(cardID int) bool {
	for _, hc := range g.PlayerHand {
		if hc.Card.ID == cardID {
			return true
		}
	}
	for _, hc := range g.DealerHand {
		if hc.Card.ID == cardID {
			return true
		}
	}
	return false
}

// HeldCardIDs lists the ids of every card on the table, in no particular order.
func (g *Game) HeldCardIDs() []int {
	ids := make([]int, 0, len(g.PlayerHand)+len(g.DealerHand))
	for _, hc := range g.PlayerHand {
		ids = append(ids, hc.Card.ID)
	}
	for _, hc := range g.DealerHand {
		ids = append(ids, hc.Card.ID)
	}
	return ids
}

func (g *Game) place(c Card, o Owner) {
	hc := HandCard{Card: c, Owner: o, Seq: len(g.PlayerHand) + len(g.DealerHand) + 1}
	if o == Dealer {
		g.DealerHand = append(g.DealerHand, hc)
		return
	}
	g.PlayerHand = append(g.PlayerHand, hc)
}

func (g *Game) clearHands() {
	g.PlayerHand = nil
	g.DealerHand = nil
}

// Clone returns a deep copy that shares nothing mutable with g.
func (g *Game) Clone() *Game {
	cp := *g
	cp.PlayerHand = cloneHand(g.PlayerHand)
	cp.DealerHand = cloneHand(g.DealerHand)
	return &cp
}

func cloneHand(h []HandCard) []HandCard {
	if h == nil {
		return nil
	}
	out := make([]HandCard, len(h))
	for i, hc := range h {
		hc.Card.Effects = append([]Effect(nil), hc.Card.Effects...)
		out[i] = hc
	}
	return out
}
