package main

import (
	"math"
	"sort"

	"effectjack/server/engine"

	"github.com/shopspring/decimal"
)

// SessionStats tallies simulated rounds from the player's side.
type SessionStats struct {
	Rounds     int
	Wins       int
	Blackjacks int
	Pushes     int
	Losses     int
	Busts      int
	Rebuys     int
	Net        []float64
}

// Record classifies one settled round by how much money moved relative to
// the bet.
func (s *SessionStats) Record(bet, delta decimal.Decimal, bust bool) {
	s.Rounds++
	s.Net = append(s.Net, delta.InexactFloat64())
	switch {
	case bust:
		s.Busts++
		s.Losses++
	case delta.GreaterThanOrEqual(bet.Mul(decimal.NewFromInt(2))):
		s.Blackjacks++
		s.Wins++
	case delta.IsPositive():
		s.Wins++
	case delta.IsZero():
		s.Pushes++
	default:
		s.Losses++
	}
}

func (s *SessionStats) NetTotal() float64 {
	sum := 0.0
	for _, v := range s.Net {
		sum += v
	}
	return sum
}

func (s *SessionStats) MeanNet() float64 {
	if len(s.Net) == 0 {
		return 0
	}
	return s.NetTotal() / float64(len(s.Net))
}

// WilsonCI95 for the Bernoulli win rate, counting ties as half a win.
func WilsonCI95(wins, ties, total int) (low, hi float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := (float64(wins) + 0.5*float64(ties)) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

// BootstrapCI95 for the mean of vals, resampling B times from src.
func BootstrapCI95(vals []float64, B int, src engine.Source) (low, hi float64) {
	n := len(vals)
	if n == 0 || B <= 1 {
		return 0, 0
	}
	res := make([]float64, B)
	for b := 0; b < B; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			j := int(src.Float64() * float64(n))
			if j >= n {
				j = n - 1
			}
			sum += vals[j]
		}
		res[b] = sum / float64(n)
	}
	sort.Float64s(res)
	l := int(0.025 * float64(B-1))
	h := int(0.975 * float64(B-1))
	return res[l], res[h]
}
