package blackjack

import (
	"time"

	"effectjack/server/engine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GameView is the client-facing snapshot of a game.
type GameView struct {
	ID                 uuid.UUID         `json:"id"`
	Target             decimal.Decimal   `json:"target"`
	DrawLimit          int               `json:"drawLimit"`
	OverdrawsRemaining int               `json:"overdrawsRemaining"`
	Money              decimal.Decimal   `json:"money"`
	Round              int               `json:"round"`
	Bet                decimal.Decimal   `json:"bet"`
	Status             engine.Status     `json:"status"`
	PlayerHand         []engine.HandCard `json:"playerHand"`
	PlayerHandValues   []decimal.Decimal `json:"playerHandValues"`
	DealerHand         []engine.HandCard `json:"dealerHand"`
	DealerHandValues   []decimal.Decimal `json:"dealerHandValues"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          time.Time         `json:"updatedAt"`
}

func newView(g *engine.Game, src engine.Source) GameView {
	return GameView{
		ID:                 g.ID,
		Target:             g.Target,
		DrawLimit:          g.OverdrawLimit,
		OverdrawsRemaining: g.OverdrawsRemaining,
		Money:              g.Money,
		Round:              g.Round,
		Bet:                g.Bet,
		Status:             g.Status,
		PlayerHand:         nonNil(g.PlayerHand),
		PlayerHandValues:   engine.PossibleValues(g.PlayerHand, src),
		DealerHand:         nonNil(g.DealerHand),
		DealerHandValues:   engine.PossibleValues(g.DealerHand, src),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func nonNil(h []engine.HandCard) []engine.HandCard {
	if h == nil {
		return []engine.HandCard{}
	}
	return h
}
