package rabin

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

const (
	// DefaultPrimeMin is the inclusive lower bound of the default prime range.
	DefaultPrimeMin = 300

	// DefaultPrimeMax is the exclusive upper bound of the default prime range.
	DefaultPrimeMax = 400

	// maxDraws bounds sampling so a range without acceptants fails instead of spinning.
	maxDraws = 10000
)

// PrimeGenerator draws primes congruent to 3 mod 4 from [Min, Max).
type PrimeGenerator struct {
	Min int64
	Max int64

	// Rand is the randomness source. Nil means crypto/rand.Reader.
	Rand io.Reader
}

// DefaultPrimeGenerator returns a generator over the default range.
func DefaultPrimeGenerator() PrimeGenerator {
	return PrimeGenerator{Min: DefaultPrimeMin, Max: DefaultPrimeMax}
}

// Next samples the range until it hits a prime p with p % 4 == 3.
//
// A range that contains no such prime is a configuration error; it is
// reported as ErrKeyGenerationExhausted once the draw budget runs out.
func (g PrimeGenerator) Next() (*big.Int, error) {
	if g.Max <= g.Min || g.Min < 0 {
		return nil, fmt.Errorf("%w: empty range [%d, %d)", kerrors.ErrKeyGenerationExhausted, g.Min, g.Max)
	}

	reader := g.Rand
	if reader == nil {
		reader = rand.Reader
	}
	width := big.NewInt(g.Max - g.Min)

	for i := 0; i < maxDraws; i++ {
		offset, err := rand.Int(reader, width)
		if err != nil {
			return nil, fmt.Errorf("failed to sample prime candidate: %w", err)
		}
		candidate := g.Min + offset.Int64()
		if candidate%4 == 3 && isPrime(candidate) {
			return big.NewInt(candidate), nil
		}
	}

	return nil, fmt.Errorf("%w: [%d, %d) after %d draws", kerrors.ErrKeyGenerationExhausted, g.Min, g.Max, maxDraws)
}

// isPrime uses trial division up to the integer square root of v.
func isPrime(v int64) bool {
	if v < 2 {
		return false
	}
	for d := int64(2); d*d <= v; d++ {
		if v%d == 0 {
			return false
		}
	}
	return true
}
