package paillier

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/mr-shifu/phe-lib/core/math/sample"
)

// PublicKey holds the modulus N, the cached square N², and the generator g.
// Keys are immutable once constructed.
type PublicKey struct {
	n        *big.Int
	nSquared *big.Int
	g        *big.Int
}

// NewPublicKey builds a public key from an externally issued modulus and
// generator, deriving N² itself. The parameters are validated: N must be an
// odd composite-sized integer, and g must be a unit in [2, N²).
func NewPublicKey(n, g *big.Int) (*PublicKey, error) {
	if n == nil || n.Cmp(two) <= 0 {
		return nil, fmt.Errorf("%w: modulus missing or too small", ErrInvalidPublicKey)
	}
	if n.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: modulus is even", ErrInvalidPublicKey)
	}
	nSquared := new(big.Int).Mul(n, n)
	if g == nil || g.Cmp(one) <= 0 || g.Cmp(nSquared) >= 0 {
		return nil, fmt.Errorf("%w: generator outside (1, N²)", ErrInvalidPublicKey)
	}
	if new(big.Int).GCD(nil, nil, g, nSquared).Cmp(one) != 0 {
		return nil, fmt.Errorf("%w: generator is not a unit mod N²", ErrInvalidPublicKey)
	}
	return &PublicKey{
		n:        new(big.Int).Set(n),
		nSquared: nSquared,
		g:        new(big.Int).Set(g),
	}, nil
}

// N returns the modulus.
func (pk *PublicKey) N() *big.Int { return pk.n }

// N2 returns N².
func (pk *PublicKey) N2() *big.Int { return pk.nSquared }

// G returns the generator.
func (pk *PublicKey) G() *big.Int { return pk.g }

func (pk *PublicKey) Equal(other *PublicKey) bool {
	return pk.n.Cmp(other.n) == 0 && pk.g.Cmp(other.g) == 0
}

// ValidatePlaintext checks m ∈ [0, N). Values outside the message space are
// the caller's error; no silent reduction is applied.
func (pk *PublicKey) ValidatePlaintext(m *big.Int) error {
	if m == nil || m.Sign() < 0 || m.Cmp(pk.n) >= 0 {
		return fmt.Errorf("%w: plaintext has %d bits, modulus %d", ErrPlaintextRange, m.BitLen(), pk.n.BitLen())
	}
	return nil
}

// ValidateCiphertext checks ct ∈ [0, N²).
func (pk *PublicKey) ValidateCiphertext(ct *Ciphertext) error {
	if ct == nil || ct.c.Sign() < 0 || ct.c.Cmp(pk.nSquared) >= 0 {
		return fmt.Errorf("%w: modulus %d bits", ErrCiphertextRange, pk.n.BitLen())
	}
	return nil
}

// Enc encrypts m with a fresh blinding factor r drawn from [2, N] and
// returns the ciphertext together with the nonce used. Encryption is
// probabilistic: repeated calls with the same m yield different ciphertexts.
//
// The nonce is not checked for coprimality with N; see EncStrict.
func (pk *PublicKey) Enc(rand io.Reader, m *big.Int) (*Ciphertext, *big.Int, error) {
	if err := pk.ValidatePlaintext(m); err != nil {
		return nil, nil, err
	}
	nonce, err := sample.IntervalInclusive(rand, two, pk.n)
	if err != nil {
		return nil, nil, err
	}
	return pk.EncWithNonce(m, nonce), nonce, nil
}

// EncStrict encrypts m like Enc but redraws the blinding factor until
// gcd(r, N) = 1, guaranteeing the nonce is invertible.
func (pk *PublicKey) EncStrict(rand io.Reader, m *big.Int) (*Ciphertext, *big.Int, error) {
	if err := pk.ValidatePlaintext(m); err != nil {
		return nil, nil, err
	}
	nonce, err := sample.UnitModN(rand, pk.n)
	if err != nil {
		return nil, nil, err
	}
	return pk.EncWithNonce(m, nonce), nonce, nil
}

// EncWithNonce computes the deterministic encryption transform
//
//	ct = gᵐ ⋅ nonceᴺ (mod N²)
//
// with a caller-chosen nonce. The plaintext is not validated.
func (pk *PublicKey) EncWithNonce(m, nonce *big.Int) *Ciphertext {
	ct := &Ciphertext{}
	res := &ct.c

	res.Exp(pk.g, m, pk.nSquared) // gᵐ (mod N²)

	tmp := new(big.Int)
	tmp.Exp(nonce, pk.n, pk.nSquared) // rᴺ (mod N²)

	res.Mul(res, tmp)
	res.Mod(res, pk.nSquared)
	return ct
}

type publicKeySerialized struct {
	N string `json:"n"`
	G string `json:"g"`
}

// MarshalJSON exports the key as canonical decimal strings.
func (pk PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicKeySerialized{
		N: pk.n.String(),
		G: pk.g.String(),
	})
}

// UnmarshalJSON is the exact inverse of MarshalJSON, re-deriving N² and
// re-validating the parameters.
func (pk *PublicKey) UnmarshalJSON(data []byte) error {
	var raw publicKeySerialized
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(raw.N, 10)
	if !ok {
		return fmt.Errorf("%w: not a valid decimal modulus", ErrInvalidPublicKey)
	}
	g, ok := new(big.Int).SetString(raw.G, 10)
	if !ok {
		return fmt.Errorf("%w: not a valid decimal generator", ErrInvalidPublicKey)
	}
	decoded, err := NewPublicKey(n, g)
	if err != nil {
		return err
	}
	*pk = *decoded
	return nil
}
