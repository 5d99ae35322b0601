package engine

import "github.com/shopspring/decimal"

type DealerMove int

const (
	DealerStand DealerMove = iota
	DealerDraw
	DealerGamble   // draws although the hand is at or above the threshold
	DealerOverdraw // over target, forgiven by spending one overdraw
	DealerBust
)

func (m DealerMove) String() string {
	switch m {
	case DealerStand:
		return "stand"
	case DealerDraw:
		return "draw"
	case DealerGamble:
		return "gamble"
	case DealerOverdraw:
		return "overdraw"
	case DealerBust:
		return "bust"
	default:
		return "unknown"
	}
}

const (
	dealerOverdrawChance = 0.5
	dealerGambleChance   = 0.01
)

var dealerMinStep = decimal.NewFromInt(4)

// HitThreshold is target - max(floor(target*21/17), 4). The dealer draws
// while its value is below it.
func HitThreshold(target decimal.Decimal) decimal.Decimal {
	step := floorDiv(target.Mul(decimal.NewFromInt(21)), decimal.NewFromInt(17))
	return target.Sub(decimal.Max(step, dealerMinStep))
}

// floorDiv is floor(a/b) computed without rounding the quotient first.
func floorDiv(a, b decimal.Decimal) decimal.Decimal {
	q, r := a.QuoRem(b, 0)
	if !r.IsZero() && r.IsNegative() != b.IsNegative() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q
}

// NextDealerMove decides one step of the dealer's turn. The source is only
// consulted for the random branches, in the order listed.
func NextDealerMove(value, target, threshold decimal.Decimal, overdrawsRemaining int, src Source) DealerMove {
	switch {
	case value.GreaterThan(target):
		if overdrawsRemaining > 0 && chance(src, dealerOverdrawChance) {
			return DealerOverdraw
		}
		return DealerBust
	case value.GreaterThanOrEqual(threshold):
		if chance(src, dealerGambleChance) {
			return DealerGamble
		}
		return DealerStand
	default:
		return DealerDraw
	}
}
