package sample

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/mr-shifu/phe-lib/core/pool"
	"github.com/mr-shifu/phe-lib/lib/params"
)

var (
	// ErrInvalidLength is returned when a non-positive bit length is requested.
	ErrInvalidLength = errors.New("sample: bit length must be positive")

	// ErrInvalidInterval is returned when a sampling interval is empty or
	// extends below zero.
	ErrInvalidInterval = errors.New("sample: invalid interval")
)

// maxReadAttempts bounds retries against a faulty entropy source. Rejection
// loops over valid candidates are unbounded; only raw reads are limited.
const maxReadAttempts = 255

var errReadFailed = fmt.Errorf("sample: entropy source failed after %d attempts", maxReadAttempts)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxReadAttempts; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(errReadFailed)
}

// Bits returns an integer sampled uniformly from [0, 2^bits), reading fresh
// entropy from rand on every call.
func Bits(rand io.Reader, bits int) (*big.Int, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("%w: requested %d bits", ErrInvalidLength, bits)
	}
	return bits_(rand, bits), nil
}

func bits_(rand io.Reader, bits int) *big.Int {
	buf := make([]byte, (bits+7)/8)
	mustReadBits(rand, buf)
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= 0xFF >> excess
	}
	return new(big.Int).SetBytes(buf)
}

// tryPrime draws a single candidate of exactly the given bit length and
// returns it if it passes params.PrimeRounds rounds of Miller-Rabin,
// or nil otherwise.
func tryPrime(rand io.Reader, bits int) *big.Int {
	c := bits_(rand, bits)
	if c.BitLen() != bits {
		return nil
	}
	if !c.ProbablyPrime(params.PrimeRounds) {
		return nil
	}
	return c
}

// Prime returns a random prime of exactly the given bit length.
//
// Candidates are drawn with Bits and rejected until one passes the
// primality test. When pl is non-nil the candidate search is spread over
// its workers, so rand must be safe for concurrent use
// (crypto/rand.Reader is).
func Prime(rand io.Reader, bits int, pl *pool.Pool) (*big.Int, error) {
	// no 1-bit primes exist, so the rejection loop would never terminate
	if bits < 2 {
		return nil, fmt.Errorf("%w: requested %d bits", ErrInvalidLength, bits)
	}
	results := pl.Search(1, func() interface{} {
		if p := tryPrime(rand, bits); p != nil {
			return p
		}
		return nil
	})
	return results[0].(*big.Int), nil
}

// Paillier returns two random primes of bits/2 bits each, searched
// concurrently, suitable as the factors of a Paillier modulus.
//
// The pair is not checked for equality or for the exact product length;
// key generation rejects and retries on those conditions.
func Paillier(rand io.Reader, bits int, pl *pool.Pool) (p, q *big.Int, err error) {
	primeBits := bits / 2
	if primeBits < 2 {
		return nil, nil, fmt.Errorf("%w: requested %d bits", ErrInvalidLength, bits)
	}
	results := pl.Search(2, func() interface{} {
		if c := tryPrime(rand, primeBits); c != nil {
			return c
		}
		return nil
	})
	return results[0].(*big.Int), results[1].(*big.Int), nil
}

// PrimeLessThan returns a random prime at most bound. Candidate bit length
// is taken from the bound's bit length.
func PrimeLessThan(rand io.Reader, bound *big.Int) (*big.Int, error) {
	if bound == nil || bound.BitLen() < 2 {
		return nil, fmt.Errorf("%w: no prime below bound", ErrInvalidInterval)
	}
	bits := bound.BitLen()
	for {
		c := bits_(rand, bits)
		if c.Cmp(bound) > 0 {
			continue
		}
		if c.ProbablyPrime(params.PrimeRounds) {
			return c, nil
		}
	}
}

// IntervalInclusive returns an integer sampled uniformly from
// [lower, upper], both ends included.
//
// Rejection sampling over upper's bit length keeps the draw unbiased. When
// lower is much smaller than upper the loop stays correct; when it is
// close to upper the acceptance rate drops but the expected number of
// draws remains bounded by 2^(upper.BitLen()).
func IntervalInclusive(rand io.Reader, lower, upper *big.Int) (*big.Int, error) {
	if lower == nil || upper == nil || lower.Sign() < 0 || lower.Cmp(upper) > 0 {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidInterval, lower, upper)
	}
	if upper.Sign() == 0 {
		return new(big.Int), nil
	}
	bits := upper.BitLen()
	for {
		c := bits_(rand, bits)
		if c.Cmp(lower) >= 0 && c.Cmp(upper) <= 0 {
			return c, nil
		}
	}
}

// UnitModN returns a unit r in [2, n], i.e. gcd(r, n) = 1, for use as a
// coprimality-enforced blinding factor.
func UnitModN(rand io.Reader, n *big.Int) (*big.Int, error) {
	two := big.NewInt(2)
	one := big.NewInt(1)
	gcd := new(big.Int)
	for {
		r, err := IntervalInclusive(rand, two, n)
		if err != nil {
			return nil, err
		}
		gcd.GCD(nil, nil, r, n)
		if gcd.Cmp(one) == 0 {
			return r, nil
		}
	}
}
