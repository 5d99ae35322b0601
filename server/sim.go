package main

import (
	"context"
	"fmt"

	"effectjack/server/blackjack"
	"effectjack/server/engine"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//
// ===== pretty printing =====
//

var useColor bool

const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colDim    = "\033[2m"
	colGreen  = "\033[32m"
	colRed    = "\033[31m"
	colYellow = "\033[33m"
	colCyan   = "\033[36m"
)

func c(code, s string) string {
	if !useColor {
		return s
	}
	return code + s + colReset
}
func bold(s string) string { return c(colBold, s) }
func dim(s string) string  { return c(colDim, s) }
func good(s string) string { return c(colGreen, s) }
func warn(s string) string { return c(colYellow, s) }
func bad(s string) string  { return c(colRed, s) }
func cyan(s string) string { return c(colCyan, s) }
func section(title string) { fmt.Printf("\n%s %s %s\n", dim("──"), bold(title), dim("──")) }

//
// ===== simulation =====
//

// standAt is the value the automatic player stands on, scaled from 17 of 21.
func standAt(target decimal.Decimal) decimal.Decimal {
	return target.Mul(decimal.NewFromInt(17)).Div(decimal.NewFromInt(21)).Floor()
}

// playRound bets, hits below standAt and stands otherwise. It reports the
// money delta over the round and whether the player went bust.
func playRound(ctx context.Context, svc *blackjack.Service, v blackjack.GameView, bet decimal.Decimal) (blackjack.GameView, decimal.Decimal, bool, error) {
	before := v.Money
	v, err := svc.PlaceBet(ctx, v.ID, bet)
	if err != nil {
		return v, decimal.Zero, false, err
	}
	stop := standAt(v.Target)
	bust := false
	for v.Status == engine.DealingToPlayer {
		value := engine.BestValue(v.Target, v.PlayerHandValues)
		if value.GreaterThanOrEqual(stop) {
			v, err = svc.Stand(ctx, v.ID)
		} else {
			v, err = svc.Hit(ctx, v.ID)
			// only a bust ends the round from a hit
			bust = err == nil && v.Status == engine.RoundEnd
		}
		if err != nil {
			return v, decimal.Zero, false, err
		}
	}
	return v, v.Money.Sub(before), bust, nil
}

// runSimulation plays rounds against svc and prints tallies with 95%
// intervals for the win rate and the mean net per round.
func runSimulation(ctx context.Context, svc *blackjack.Service, rounds int, bet decimal.Decimal, src engine.Source, log *zap.Logger) (*SessionStats, error) {
	stats := &SessionStats{}
	v, err := svc.StartGame(ctx, blackjack.StartGameRequest{})
	if err != nil {
		return nil, err
	}
	section(fmt.Sprintf("Simulating %d rounds at bet %s (target %s)", rounds, bet, v.Target))

	for i := 0; i < rounds; i++ {
		if ctx.Err() != nil {
			fmt.Println(warn("stopped early"))
			break
		}
		if v.Money.LessThan(bet) {
			stats.Rebuys++
			log.Debug("rebuy", zap.Stringer("money", v.Money))
			if v, err = svc.StartGame(ctx, blackjack.StartGameRequest{}); err != nil {
				return stats, err
			}
		}
		var delta decimal.Decimal
		var bust bool
		v, delta, bust, err = playRound(ctx, svc, v, bet)
		if err != nil {
			return stats, fmt.Errorf("round %d: %w", i+1, err)
		}
		stats.Record(bet, delta, bust)
	}

	printSummary(stats, src)
	return stats, nil
}

func printSummary(s *SessionStats, src engine.Source) {
	section("Results")
	pct := func(n int) string {
		if s.Rounds == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(s.Rounds))
	}
	fmt.Printf("%s %d  %s %s  %s %s  %s %s  %s %s\n",
		dim("rounds"), s.Rounds,
		good("wins"), pct(s.Wins),
		cyan("blackjacks"), pct(s.Blackjacks),
		warn("pushes"), pct(s.Pushes),
		bad("losses"), pct(s.Losses))
	fmt.Printf("%s %d  %s %d\n", dim("busts"), s.Busts, dim("rebuys"), s.Rebuys)

	lo, hi := WilsonCI95(s.Wins, s.Pushes, s.Rounds)
	fmt.Printf("%s [%.3f, %.3f]\n", bold("win rate 95% CI"), lo, hi)

	net := s.NetTotal()
	tag := good
	if net < 0 {
		tag = bad
	}
	blo, bhi := BootstrapCI95(s.Net, 1000, src)
	fmt.Printf("%s %s  %s %.3f  %s [%.3f, %.3f]\n",
		bold("net"), tag(fmt.Sprintf("%+.2f", net)),
		dim("mean/round"), s.MeanNet(),
		dim("95% CI"), blo, bhi)
}
