// Package paillier implements the Paillier public-key cryptosystem.
//
// Ciphertexts are additively homomorphic: the product of two ciphertexts
// mod N² decrypts to the sum of their plaintexts mod N.
package paillier

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/phe-lib/core/math/sample"
	"github.com/mr-shifu/phe-lib/core/pool"
	"github.com/mr-shifu/phe-lib/lib/params"
)

var (
	// ErrKeyBits is returned when the requested modulus length is
	// non-positive or below params.MinKeyBits.
	ErrKeyBits = errors.New("paillier: invalid key bit length")

	// ErrOddBitLength is returned when the requested modulus length cannot
	// be split into two equal prime lengths.
	ErrOddBitLength = errors.New("paillier: key bit length must be even")

	// ErrBitLenNotPow2 is the advisory reported by CheckKeyLength for
	// lengths that are valid but not a power of two. Key generation still
	// proceeds; only performance and conventional sizing suffer.
	ErrBitLenNotPow2 = errors.New("paillier: key bit length is not a power of two")

	// ErrKeyInvariant signals an internal consistency failure during key
	// generation. It should never occur with the generator construction
	// used here and always aborts the operation.
	ErrKeyInvariant = errors.New("paillier: inconsistent key material")

	// ErrPlaintextRange is returned when a plaintext is not in [0, N).
	ErrPlaintextRange = errors.New("paillier: plaintext outside [0, N)")

	// ErrCiphertextRange is returned when a ciphertext is not in [0, N²).
	ErrCiphertextRange = errors.New("paillier: ciphertext outside [0, N²)")

	// ErrMalformedCiphertext is returned by Dec when the ciphertext is not
	// a unit mod N², so the L division cannot be exact and no plaintext
	// exists. In-range values like 0 or a multiple of a prime factor fall
	// here.
	ErrMalformedCiphertext = errors.New("paillier: ciphertext is not a unit mod N²")

	// ErrInvalidPublicKey is returned by NewPublicKey for parameters that
	// cannot form a Paillier public key.
	ErrInvalidPublicKey = errors.New("paillier: invalid public key")

	// ErrInvalidSecretKey is returned when private key material does not
	// match the public key it is bound to.
	ErrInvalidSecretKey = errors.New("paillier: secret key does not match public key")
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// CheckKeyLength reports whether bits is usable as a modulus length.
// Fatal conditions (non-positive, too short, odd) come back as errors that
// KeyGen would also return. A non-power-of-two length comes back as the
// non-fatal advisory ErrBitLenNotPow2: callers may log it and continue.
func CheckKeyLength(bits int) error {
	if err := checkKeyLength(bits); err != nil {
		return err
	}
	if bits&(bits-1) != 0 {
		return fmt.Errorf("%w: %d bits", ErrBitLenNotPow2, bits)
	}
	return nil
}

func checkKeyLength(bits int) error {
	if bits < params.MinKeyBits {
		return fmt.Errorf("%w: %d bits, minimum is %d", ErrKeyBits, bits, params.MinKeyBits)
	}
	if bits%2 != 0 {
		return fmt.Errorf("%w: %d bits", ErrOddBitLength, bits)
	}
	return nil
}

// lFunc computes L(x) = (x-1)/N and reports whether the division was exact,
// i.e. whether x ≡ 1 (mod N).
func lFunc(x, n *big.Int) (*big.Int, bool) {
	t := new(big.Int).Sub(x, one)
	t, r := t.QuoRem(t, n, new(big.Int))
	return t, r.Sign() == 0
}

func natFromBig(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

// KeyGen generates a fresh key pair with a modulus of exactly the given bit
// length. The two prime factors are searched concurrently on pl; passing a
// nil pool keeps the search on the calling goroutine.
//
// The generator is constructed as g = (αN + 1)⋅βᴺ (mod N²) for α, β drawn
// uniformly from [2, N], which gives g an order divisible by N without an
// explicit order check.
func KeyGen(rand io.Reader, bits int, pl *pool.Pool) (*PublicKey, *SecretKey, error) {
	if err := checkKeyLength(bits); err != nil {
		return nil, nil, err
	}

	var p, q, n *big.Int
	for {
		var err error
		p, q, err = sample.Paillier(rand, bits, pl)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n = new(big.Int).Mul(p, q)
		// the product of two k-bit primes may come up one bit short
		if n.BitLen() == bits {
			break
		}
	}
	nSquared := new(big.Int).Mul(n, n)

	alpha, err := sample.IntervalInclusive(rand, two, n)
	if err != nil {
		return nil, nil, err
	}
	beta, err := sample.IntervalInclusive(rand, two, n)
	if err != nil {
		return nil, nil, err
	}

	// g = (αN + 1) ⋅ βᴺ (mod N²)
	g := new(big.Int).Mul(alpha, n)
	g.Add(g, one)
	betaN := new(big.Int).Exp(beta, n, nSquared)
	g.Mul(g, betaN)
	g.Mod(g, nSquared)

	pk := &PublicKey{n: n, nSquared: nSquared, g: g}
	sk, err := newSecretKeyFromPrimes(pk, p, q)
	if err != nil {
		return nil, nil, err
	}
	return pk, sk, nil
}
