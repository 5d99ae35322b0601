package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Op is the tag of an arithmetic card effect.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpRoot
	OpLog
	OpFactorial
	OpRandomAdd
	OpRandomMultiply
	OpCeiling
	OpFloor

	opCount
)

var opNames = [opCount]string{
	"Add", "Subtract", "Multiply", "Divide", "Modulo", "Power", "Root",
	"Log", "Factorial", "RandomAdd", "RandomMultiply", "Ceiling", "Floor",
}

var opSymbols = [opCount]string{
	"+", "-", "*", "/", "%", "^", "rt", "log", "!", "rnd+", "rnd*", "ceil", "floor",
}

func (o Op) valid() bool { return o >= 0 && o < opCount }

func (o Op) String() string {
	if !o.valid() {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

func (o Op) Symbol() string {
	if !o.valid() {
		return "?"
	}
	return opSymbols[o]
}

// ParseOp accepts an operation name or symbol, ignoring case. Anything else
// is treated as Add.
func ParseOp(s string) Op {
	s = strings.TrimSpace(s)
	for i := Op(0); i < opCount; i++ {
		if strings.EqualFold(s, opNames[i]) || strings.EqualFold(s, opSymbols[i]) {
			return i
		}
	}
	return OpAdd
}

func (o Op) MarshalText() ([]byte, error) {
	if !o.valid() {
		return nil, fmt.Errorf("unknown effect operation %d", int(o))
	}
	return []byte(opNames[o]), nil
}

func (o *Op) UnmarshalText(b []byte) error {
	*o = ParseOp(string(b))
	return nil
}

// Effect is one arithmetic operation attached to a card.
type Effect struct {
	Op    Op              `json:"operation"`
	Value decimal.Decimal `json:"value"`
}

func (e Effect) String() string { return e.Op.Symbol() + e.Value.String() }

// ErrArithmetic marks an effect that has no defined result for its input.
var ErrArithmetic = errors.New("arithmetic error")

type opFunc func(v, x decimal.Decimal, src Source) (decimal.Decimal, error)

var opTable = [opCount]opFunc{
	OpAdd:      func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) { return v.Add(x), nil },
	OpSubtract: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) { return v.Sub(x), nil },
	OpMultiply: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) { return v.Mul(x), nil },
	OpDivide: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) {
		if x.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: division by zero", ErrArithmetic)
		}
		return v.Div(x), nil
	},
	OpModulo: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) {
		if x.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: modulo by zero", ErrArithmetic)
		}
		return v.Mod(x), nil
	},
	OpPower: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) {
		return fromFloat(math.Pow(v.InexactFloat64(), x.InexactFloat64()))
	},
	OpRoot: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) {
		return fromFloat(math.Pow(v.InexactFloat64(), 1/x.InexactFloat64()))
	},
	OpLog: func(v, x decimal.Decimal, _ Source) (decimal.Decimal, error) {
		base := x.InexactFloat64()
		if base <= 0 || base == 1 {
			return decimal.Zero, fmt.Errorf("%w: logarithm base %s", ErrArithmetic, x)
		}
		return fromFloat(math.Log(v.InexactFloat64()) / math.Log(base))
	},
	OpFactorial: func(v, _ decimal.Decimal, _ Source) (decimal.Decimal, error) {
		g, err := Gamma(v.InexactFloat64())
		if errors.Is(err, ErrGammaPole) {
			// a pole negates the branch instead of dropping it
			return v.Neg(), nil
		}
		if err != nil {
			return decimal.Zero, err
		}
		return fromFloat(g)
	},
	OpRandomAdd: func(v, x decimal.Decimal, src Source) (decimal.Decimal, error) {
		x = x.Abs()
		return v.Add(uniform(src, x.Neg(), x)), nil
	},
	OpRandomMultiply: func(v, x decimal.Decimal, src Source) (decimal.Decimal, error) {
		x = x.Abs()
		return v.Mul(uniform(src, x.Neg(), x)), nil
	},
	OpCeiling: func(v, _ decimal.Decimal, _ Source) (decimal.Decimal, error) { return v.Ceil(), nil },
	OpFloor:   func(v, _ decimal.Decimal, _ Source) (decimal.Decimal, error) { return v.Floor(), nil },
}

// Apply evaluates one effect against a running branch value. Unknown
// operations leave the value unchanged.
func Apply(v decimal.Decimal, e Effect, src Source) (decimal.Decimal, error) {
	if !e.Op.valid() || opTable[e.Op] == nil {
		return v, nil
	}
	return opTable[e.Op](v, e.Value, src)
}

// maxMagnitude bounds branch values to a 96-bit decimal range.
const maxMagnitude = 7.922816251426434e28

func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxMagnitude {
		return decimal.Zero, fmt.Errorf("%w: %v out of range", ErrArithmetic, f)
	}
	return decimal.NewFromFloat(f), nil
}
