package paillier

import (
	"fmt"
	"io"
	"math/big"

	"github.com/mr-shifu/phe-lib/core/math/sample"
)

// Ciphertext is an element of [0, N²) produced by encryption under some
// public key. The zero value is not valid; obtain ciphertexts from Enc or
// CiphertextFromBig.
type Ciphertext struct {
	c big.Int
}

// CiphertextFromBig wraps an integer received from elsewhere, validating it
// against pk's range.
func CiphertextFromBig(pk *PublicKey, x *big.Int) (*Ciphertext, error) {
	ct := &Ciphertext{}
	if x != nil {
		ct.c.Set(x)
	}
	if err := pk.ValidateCiphertext(ct); err != nil {
		return nil, err
	}
	return ct, nil
}

// BigInt exposes the underlying integer.
func (ct *Ciphertext) BigInt() *big.Int {
	return &ct.c
}

// Add sets ct to the homomorphic sum ct ⊕ other:
//
//	ct = ct ⋅ other (mod N²)
//
// which decrypts to the sum of the two plaintexts mod N.
func (ct *Ciphertext) Add(pk *PublicKey, other *Ciphertext) *Ciphertext {
	if other == nil {
		return ct
	}
	ct.c.Mul(&ct.c, &other.c)
	ct.c.Mod(&ct.c, pk.nSquared)
	return ct
}

// Mul sets ct to the homomorphic scaling k ⊙ ct:
//
//	ct = ctᵏ (mod N²)
//
// which decrypts to k times the original plaintext mod N.
func (ct *Ciphertext) Mul(pk *PublicKey, k *big.Int) *Ciphertext {
	if k == nil {
		return ct
	}
	ct.c.Exp(&ct.c, k, pk.nSquared)
	return ct
}

// Randomize re-blinds the ciphertext in place with a fresh unit nonce:
// ct = ct ⋅ rᴺ (mod N²). The plaintext is unchanged; the nonce used is
// returned.
func (ct *Ciphertext) Randomize(rand io.Reader, pk *PublicKey) (*big.Int, error) {
	nonce, err := sample.UnitModN(rand, pk.n)
	if err != nil {
		return nil, err
	}
	tmp := new(big.Int).Exp(nonce, pk.n, pk.nSquared)
	ct.c.Mul(&ct.c, tmp)
	ct.c.Mod(&ct.c, pk.nSquared)
	return nonce, nil
}

// Equal checks whether ct ≡ other (mod N²).
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.c.Cmp(&other.c) == 0
}

// Clone returns a deep copy of ct.
func (ct Ciphertext) Clone() *Ciphertext {
	c := &Ciphertext{}
	c.c.Set(&ct.c)
	return c
}

func (ct Ciphertext) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ct.c.String() + `"`), nil
}

func (ct *Ciphertext) UnmarshalJSON(p []byte) error {
	s := string(p)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	var z big.Int
	if _, ok := z.SetString(s, 10); !ok {
		return fmt.Errorf("paillier: not a valid decimal ciphertext: %s", p)
	}
	ct.c = z
	return nil
}

// WriteTo implements io.WriterTo and is consumed by the hash layer.
func (ct *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(ct.c.Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (*Ciphertext) Domain() string {
	return "Paillier Ciphertext"
}
