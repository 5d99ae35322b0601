package engine

import (
	"slices"

	"github.com/shopspring/decimal"
)

// PossibleValues expands every effect of every card, in draw order, starting
// from a single branch at 0. Branches whose effect fails are dropped; if a card
// would drop all of them the previous set is kept. The result is sorted
// ascending without duplicates and is never empty.
func PossibleValues(hand []HandCard, src Source) []decimal.Decimal {
	values := []decimal.Decimal{decimal.Zero}
	for _, hc := range hand {
		effects := hc.Card.Effects
		if len(effects) == 0 {
			continue
		}
		next := make([]decimal.Decimal, 0, len(values)*len(effects))
		for _, v := range values {
			for _, e := range effects {
				nv, err := Apply(v, e, src)
				if err != nil {
					continue
				}
				next = append(next, nv)
			}
		}
		if len(next) > 0 {
			values = normalize(next)
		}
	}
	return values
}

func normalize(vs []decimal.Decimal) []decimal.Decimal {
	slices.SortFunc(vs, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	return slices.CompactFunc(vs, func(a, b decimal.Decimal) bool { return a.Equal(b) })
}

// BestValue picks the highest value not above target, or the lowest value
// when every branch is over.
func BestValue(target decimal.Decimal, values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	best, found := decimal.Zero, false
	lowest := values[0]
	for _, v := range values {
		if v.LessThan(lowest) {
			lowest = v
		}
		if v.LessThanOrEqual(target) && (!found || v.GreaterThan(best)) {
			best, found = v, true
		}
	}
	if !found {
		return lowest
	}
	return best
}

// HandValue is BestValue over PossibleValues.
func HandValue(target decimal.Decimal, hand []HandCard, src Source) decimal.Decimal {
	return BestValue(target, PossibleValues(hand, src))
}
