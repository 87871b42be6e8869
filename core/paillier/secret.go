package paillier

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/mr-shifu/phe-lib/core/math/arith"
	"github.com/mr-shifu/phe-lib/lib/params"
)

// SecretKey is the private half of a Paillier key pair.
//
// λ = lcm(p-1, q-1) and μ = L(g^λ mod N²)⁻¹ mod N are the decryption
// exponents. The prime factors are kept when known, which accelerates the
// decryption exponentiation mod N² through CRT; keys injected as (λ, μ)
// alone decrypt without the speedup.
type SecretKey struct {
	*PublicKey

	// p, q such that N = p⋅q; nil for injected keys without factors
	p, q *saferith.Nat

	lambda, mu *saferith.Nat

	// CRT-cached N², or a plain wrapper when the factorization is unknown
	nSquaredMod *arith.Modulus
}

// newSecretKeyFromPrimes derives λ and μ for an already-built public key.
// The exactness check on L is the key-generation invariant: g^λ mod N² must
// be ≡ 1 (mod N), or the generated material is unusable.
func newSecretKeyFromPrimes(pk *PublicKey, p, q *big.Int) (*SecretKey, error) {
	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)

	// λ = lcm(p-1, q-1), dividing before multiplying to bound the intermediate
	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambda := new(big.Int).Div(pMinus1, gcd)
	lambda.Mul(lambda, qMinus1)

	pNat := natFromBig(p)
	qNat := natFromBig(q)
	nSquaredMod := arith.SquaredModulusFromFactors(pNat, qNat)

	u := nSquaredMod.Exp(natFromBig(pk.g), natFromBig(lambda)).Big()
	l, exact := lFunc(u, pk.n)
	if !exact {
		return nil, fmt.Errorf("%w: g^λ mod N² is not ≡ 1 (mod N)", ErrKeyInvariant)
	}
	mu := new(big.Int).ModInverse(l, pk.n)
	if mu == nil {
		return nil, fmt.Errorf("%w: L(g^λ mod N²) is not invertible mod N", ErrKeyInvariant)
	}

	return &SecretKey{
		PublicKey:   pk,
		p:           pNat,
		q:           qNat,
		lambda:      natFromBig(lambda),
		mu:          natFromBig(mu),
		nSquaredMod: nSquaredMod,
	}, nil
}

// NewSecretKeyFromPrimes rebuilds a secret key from the factors of the
// public key's modulus, re-deriving λ and μ. The factors must be the primes
// of pk's modulus.
func NewSecretKeyFromPrimes(pk *PublicKey, p, q *big.Int) (*SecretKey, error) {
	if p == nil || q == nil || p.Cmp(q) == 0 {
		return nil, fmt.Errorf("%w: need two distinct prime factors", ErrInvalidSecretKey)
	}
	if new(big.Int).Mul(p, q).Cmp(pk.n) != 0 {
		return nil, fmt.Errorf("%w: p⋅q does not equal the %d-bit modulus", ErrInvalidSecretKey, pk.n.BitLen())
	}
	if !p.ProbablyPrime(params.PrimeRounds) || !q.ProbablyPrime(params.PrimeRounds) {
		return nil, fmt.Errorf("%w: factor is not prime", ErrInvalidSecretKey)
	}
	return newSecretKeyFromPrimes(pk, p, q)
}

// NewSecretKey binds externally issued decryption exponents to a public key.
// The pair is validated against L(g^λ mod N²) ⋅ μ ≡ 1 (mod N), so mixing
// halves of independently generated key pairs is rejected.
func NewSecretKey(pk *PublicKey, lambda, mu *big.Int) (*SecretKey, error) {
	if lambda == nil || lambda.Sign() <= 0 || mu == nil || mu.Sign() <= 0 || mu.Cmp(pk.n) >= 0 {
		return nil, fmt.Errorf("%w: exponent out of range", ErrInvalidSecretKey)
	}
	u := new(big.Int).Exp(pk.g, lambda, pk.nSquared)
	l, exact := lFunc(u, pk.n)
	if !exact {
		return nil, fmt.Errorf("%w: g^λ mod N² is not ≡ 1 (mod N)", ErrInvalidSecretKey)
	}
	check := l.Mul(l, mu)
	check.Mod(check, pk.n)
	if check.Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: μ is not the inverse of L(g^λ)", ErrInvalidSecretKey)
	}
	return &SecretKey{
		PublicKey:   pk,
		lambda:      natFromBig(lambda),
		mu:          natFromBig(mu),
		nSquaredMod: arith.ModulusFromN(saferith.ModulusFromNat(natFromBig(pk.nSquared))),
	}, nil
}

// P returns the first prime factor, or nil for an injected key.
func (sk *SecretKey) P() *saferith.Nat { return sk.p }

// Q returns the second prime factor, or nil for an injected key.
func (sk *SecretKey) Q() *saferith.Nat { return sk.q }

// Lambda returns a copy of λ.
func (sk *SecretKey) Lambda() *big.Int { return sk.lambda.Big() }

// Mu returns a copy of μ.
func (sk *SecretKey) Mu() *big.Int { return sk.mu.Big() }

// Dec decrypts ct:
//
//	m = L(ct^λ mod N²) ⋅ μ (mod N)
//
// CRT acceleration applies when the key holds the factors. The result is
// always in [0, N). In-range ciphertexts that are not units mod N² are
// rejected with ErrMalformedCiphertext.
func (sk *SecretKey) Dec(ct *Ciphertext) (*big.Int, error) {
	if err := sk.ValidateCiphertext(ct); err != nil {
		return nil, err
	}
	u := sk.nSquaredMod.Exp(natFromBig(&ct.c), sk.lambda).Big()
	m, exact := lFunc(u, sk.n)
	if !exact {
		return nil, fmt.Errorf("%w: ct^λ mod N² is not ≡ 1 (mod N)", ErrMalformedCiphertext)
	}
	m.Mul(m, sk.mu.Big())
	m.Mod(m, sk.n)
	return m, nil
}

type secretKeySerialized struct {
	N      string `json:"n"`
	G      string `json:"g"`
	Lambda string `json:"lambda"`
	Mu     string `json:"mu"`
	P      string `json:"p,omitempty"`
	Q      string `json:"q,omitempty"`
}

// MarshalJSON exports every key field as canonical decimal strings. The
// factors are included when known.
func (sk SecretKey) MarshalJSON() ([]byte, error) {
	raw := secretKeySerialized{
		N:      sk.n.String(),
		G:      sk.g.String(),
		Lambda: sk.lambda.Big().String(),
		Mu:     sk.mu.Big().String(),
	}
	if sk.p != nil && sk.q != nil {
		raw.P = sk.p.Big().String()
		raw.Q = sk.q.Big().String()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON is the exact inverse of MarshalJSON. The decoded material
// passes through the validated constructors, so corrupted or mixed key
// files are rejected.
func (sk *SecretKey) UnmarshalJSON(data []byte) error {
	var raw secretKeySerialized
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]string{"n": raw.N, "g": raw.G, "lambda": raw.Lambda, "mu": raw.Mu}
	decoded := make(map[string]*big.Int, len(fields))
	for name, s := range fields {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return fmt.Errorf("%w: field %q is not a decimal integer", ErrInvalidSecretKey, name)
		}
		decoded[name] = v
	}
	pk, err := NewPublicKey(decoded["n"], decoded["g"])
	if err != nil {
		return err
	}
	key, err := NewSecretKey(pk, decoded["lambda"], decoded["mu"])
	if err != nil {
		return err
	}

	if raw.P != "" && raw.Q != "" {
		p, okP := new(big.Int).SetString(raw.P, 10)
		q, okQ := new(big.Int).SetString(raw.Q, 10)
		if !okP || !okQ {
			return fmt.Errorf("%w: factor is not a decimal integer", ErrInvalidSecretKey)
		}
		if new(big.Int).Mul(p, q).Cmp(pk.n) != 0 {
			return fmt.Errorf("%w: p⋅q does not equal the modulus", ErrInvalidSecretKey)
		}
		key.p = natFromBig(p)
		key.q = natFromBig(q)
		key.nSquaredMod = arith.SquaredModulusFromFactors(key.p, key.q)
	}

	*sk = *key
	return nil
}
