package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// Source supplies uniform draws in [0, 1). Effects and the dealer share one
// Source so a scripted implementation makes a whole round reproducible.
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a Source safe for concurrent use. A zero seed is replaced
// with one from crypto/rand.
func NewSource(seed int64) Source {
	if seed == 0 {
		if s, err := NewSeed(); err == nil {
			seed = s
		} else {
			seed = 1
		}
	}
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// uniform draws from [lo, hi).
func uniform(src Source, lo, hi decimal.Decimal) decimal.Decimal {
	return lo.Add(hi.Sub(lo).Mul(decimal.NewFromFloat(src.Float64())))
}

func chance(src Source, p float64) bool {
	return src.Float64() < p
}
