package gacha

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource yields uniform values in [0,1).
type RandomSource interface {
	Float64() float64
}

// cryptoRNG draws 53 bits from the OS entropy pool per value, falling back
// to math/rand/v2 only if the read fails.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the production random source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG is a replicable source for tests and simulations.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source seeded with the given value.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
