package store

import (
	"context"

	"effectjack/server/engine"
)

// Catalog is an in-process card supply over a fixed list of cards.
type Catalog struct {
	cards []engine.Card
	rand  engine.Source
}

func NewCatalog(cards []engine.Card, src engine.Source) *Catalog {
	return &Catalog{cards: cards, rand: src}
}

// Draw picks uniformly among the cards neither hand of g holds.
func (c *Catalog) Draw(_ context.Context, g *engine.Game) (engine.Card, error) {
	held := map[int]bool{}
	for _, id := range g.HeldCardIDs() {
		held[id] = true
	}
	avail := make([]engine.Card, 0, len(c.cards))
	for _, card := range c.cards {
		if !held[card.ID] {
			avail = append(avail, card)
		}
	}
	if len(avail) == 0 {
		return engine.Card{}, engine.ErrDeckExhausted
	}
	i := int(c.rand.Float64() * float64(len(avail)))
	if i >= len(avail) {
		i = len(avail) - 1
	}
	card := avail[i]
	card.Effects = append([]engine.Effect(nil), card.Effects...)
	return card, nil
}
