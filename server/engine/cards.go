package engine

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var standardSuits = []Suit{
	{ID: 1, Name: "Clubs", Symbol: "♣", ColorRGB: 0x000000},
	{ID: 2, Name: "Diamonds", Symbol: "♦", ColorRGB: 0xFF0000},
	{ID: 3, Name: "Hearts", Symbol: "♥", ColorRGB: 0xFF0000},
	{ID: 4, Name: "Spades", Symbol: "♠", ColorRGB: 0x000000},
}

// StandardSuits returns a copy of the four classic suits.
func StandardSuits() []Suit { return append([]Suit(nil), standardSuits...) }

// StandardDeck returns the classic 52 cards: pips add their rank, faces add
// 10 and the ace adds 1 or 11. Card ids run 1..52.
func StandardDeck() []Card {
	var deck []Card
	id := 1
	for _, s := range standardSuits {
		for rnk := 1; rnk <= 13; rnk++ {
			deck = append(deck, Card{ID: id, Rank: rankLabel(rnk), Suit: s, Effects: rankEffects(rnk)})
			id++
		}
	}
	return deck
}

func rankLabel(rnk int) string {
	switch rnk {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return strconv.Itoa(rnk)
	}
}

func rankEffects(rnk int) []Effect {
	switch {
	case rnk == 1:
		return []Effect{Add(1), Add(11)}
	case rnk >= 10:
		return []Effect{Add(10)}
	default:
		return []Effect{Add(int64(rnk))}
	}
}

// Add is shorthand for an integer Add effect.
func Add(n int64) Effect { return Effect{Op: OpAdd, Value: decimal.NewFromInt(n)} }

func (c Card) String() string {
	var b strings.Builder
	b.WriteString(c.Rank)
	b.WriteString(c.Suit.Symbol)
	return b.String()
}
