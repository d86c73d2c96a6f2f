package randomutils

import (
	"encoding/binary"
	"math/rand"
)

// RandomProvider offers a deterministic source of pseudo-random data which is threaded through every program
// generation call. All generation decisions which are not forced by input structure draw from a RandomProvider,
// so a fixed (input, seed) pair always produces the same generated program.
type RandomProvider struct {
	// rand describes the underlying random source for this provider.
	rand *rand.Rand
}

// NewRandomProvider creates a RandomProvider from the provided random source.
func NewRandomProvider(randomSource *rand.Rand) *RandomProvider {
	return &RandomProvider{rand: randomSource}
}

// NewRandomProviderFromSeed creates a RandomProvider seeded from the provided seed bytes. Seed bytes shorter than
// eight bytes are zero-padded, so an empty seed is valid and simply yields the zero-seeded sequence.
func NewRandomProviderFromSeed(seed []byte) *RandomProvider {
	// Take the first eight bytes of our seed data as a little-endian int64 seed.
	b := make([]byte, 8)
	copy(b, seed)
	return &RandomProvider{rand: rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b))))}
}

// Fork creates a child RandomProvider from the current provider by using its random data as a seed. This can be
// leveraged to help increase determinism so separate generation passes can use their own random provider derived
// from an original. Returns the forked child random provider.
func (p *RandomProvider) Fork() *RandomProvider {
	// Create random bytes to use for an int64 random seed.
	b := make([]byte, 8)
	_, err := p.rand.Read(b)
	if err != nil {
		panic(err)
	}

	// Return a new random provider with our derived seed.
	forkSeed := int64(binary.LittleEndian.Uint64(b))
	return &RandomProvider{rand: rand.New(rand.NewSource(forkSeed))}
}

// Next returns the next unsigned 32-bit integer from the provider.
func (p *RandomProvider) Next() uint32 {
	return p.rand.Uint32()
}

// CoinToss returns the next boolean decision from the provider, true when the next integer drawn is even.
func (p *RandomProvider) CoinToss() bool {
	return p.Next()%2 == 0
}

// Bounded returns the next integer from the provider reduced modulo n. It panics if n is zero, as a choice
// over an empty range is always a caller bug.
func (p *RandomProvider) Bounded(n uint32) uint32 {
	if n == 0 {
		panic("bounded random choice requested over an empty range")
	}
	return p.Next() % n
}
