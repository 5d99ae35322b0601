package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strs(vs []decimal.Decimal) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func TestPossibleValuesEmptyHand(t *testing.T) {
	assert.Equal(t, []string{"0"}, strs(PossibleValues(nil, noSource{t})))
}

func TestAceLikeCard(t *testing.T) {
	ace := card(Add(1), Add(11))
	for _, ten := range []Card{card(Add(10)), card(eff(OpMultiply, "1"), Add(10))} {
		h := hand(ten, ace)
		assertDec(t, "21", HandValue(dec("21"), h, noSource{t}))
	}
	assert.Equal(t, []string{"11", "21"}, strs(PossibleValues(hand(card(Add(10)), ace), noSource{t})))
}

func TestBestValueSoftestBust(t *testing.T) {
	h := hand(card(Add(10)), card(Add(10)), card(Add(5), Add(7)))
	vals := PossibleValues(h, noSource{t})
	assert.Equal(t, []string{"25", "27"}, strs(vals))
	assertDec(t, "25", BestValue(dec("21"), vals))
}

func TestBestValuePrefersHighestUnderTarget(t *testing.T) {
	vals := []decimal.Decimal{dec("3"), dec("22"), dec("19"), dec("-4"), dec("21.5")}
	assertDec(t, "19", BestValue(dec("21"), vals))
	assertDec(t, "21.5", BestValue(dec("21.5"), vals))
	assertDec(t, "-4", BestValue(dec("-10"), vals))
}

func TestCardWithoutEffectsPassesThrough(t *testing.T) {
	h := hand(card(Add(7)), card(), card(Add(2)))
	assert.Equal(t, []string{"9"}, strs(PossibleValues(h, noSource{t})))
}

func TestFailedBranchesAreDropped(t *testing.T) {
	h := hand(card(Add(10)), card(eff(OpDivide, "0"), Add(1)))
	assert.Equal(t, []string{"11"}, strs(PossibleValues(h, noSource{t})))
}

func TestCardFailingEveryBranchKeepsPreviousSet(t *testing.T) {
	h := hand(card(Add(3), Add(10)), card(eff(OpDivide, "0"), eff(OpModulo, "0")))
	assert.Equal(t, []string{"3", "10"}, strs(PossibleValues(h, noSource{t})))
}

func TestDuplicateBranchesCollapse(t *testing.T) {
	h := hand(card(Add(1), Add(2)), card(Add(2), Add(1)))
	assert.Equal(t, []string{"2", "3", "4"}, strs(PossibleValues(h, noSource{t})))
}

func TestPossibleValuesDeterministicWithFixedSource(t *testing.T) {
	h := hand(card(Add(5), Add(8)), card(eff(OpRandomAdd, "3")), card(eff(OpRandomMultiply, "2"), Add(1)))
	a := PossibleValues(h, &seqSource{t: t, vals: []float64{0.1, 0.6, 0.3, 0.9}})
	b := PossibleValues(h, &seqSource{t: t, vals: []float64{0.1, 0.6, 0.3, 0.9}})
	require.NotEmpty(t, a)
	assert.Equal(t, strs(a), strs(b))
}
