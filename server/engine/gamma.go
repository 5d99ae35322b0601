package engine

import (
	"errors"
	"math"
)

// ErrGammaPole is returned for 0 and the negative integers.
var ErrGammaPole = errors.New("gamma is undefined for non-positive integers")

// Lanczos coefficients, g=7, n=9.
const lanczosG = 7.0

var lanczosCoef = [...]float64{
	0.99999999999980993,
	676.5203681218851,
	-1259.1392167224028,
	771.32342877765313,
	-176.61502916214059,
	12.507343278686905,
	-0.13857109526572012,
	9.9843695780195716e-6,
	1.5056327351493116e-7,
}

// Gamma computes Γ(z) with the Lanczos approximation for z >= 0.5 and Euler's
// reflection formula Γ(z)Γ(1-z) = π/sin(πz) below that.
func Gamma(z float64) (float64, error) {
	if z <= 0 && z == math.Floor(z) {
		return 0, ErrGammaPole
	}
	if z < 0.5 {
		g, err := Gamma(1 - z)
		if err != nil {
			return 0, err
		}
		return math.Pi / (math.Sin(math.Pi*z) * g), nil
	}

	z--
	x := lanczosCoef[0]
	for i := 1; i < len(lanczosCoef); i++ {
		x += lanczosCoef[i] / (z + float64(i))
	}
	t := z + lanczosG + 0.5
	return math.Sqrt(2*math.Pi) * math.Pow(t, z+0.5) * math.Exp(-t) * x, nil
}
