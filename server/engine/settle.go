package engine

import "github.com/shopspring/decimal"

type Outcome string

const (
	OutcomePlayerWin Outcome = "PlayerWin"
	OutcomeBlackjack Outcome = "Blackjack"
	OutcomePush      Outcome = "Push"
	OutcomeDealerWin Outcome = "DealerWin"
)

var (
	two         = decimal.NewFromInt(2)
	debtPenalty = decimal.RequireFromString("1.01")
)

// Settle credits the round result to money, which already has the bet
// deducted. A win pays 2x the bet, plus 1x more for hitting target exactly
// when the dealer did not; a push refunds the bet. A negative balance grows
// by 1% afterwards.
func Settle(money, bet, target, player, dealer decimal.Decimal) (decimal.Decimal, Outcome) {
	outcome := OutcomeDealerWin
	switch {
	case dealer.GreaterThan(target) || (player.LessThanOrEqual(target) && player.GreaterThan(dealer)):
		money = money.Add(bet.Mul(two))
		outcome = OutcomePlayerWin
		if player.Equal(target) && !dealer.Equal(target) {
			money = money.Add(bet)
			outcome = OutcomeBlackjack
		}
	case player.Equal(dealer):
		money = money.Add(bet)
		outcome = OutcomePush
	}
	if money.IsNegative() {
		money = money.Mul(debtPenalty)
	}
	return money, outcome
}
