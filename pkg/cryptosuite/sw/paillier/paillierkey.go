package paillier

import (
	"encoding/json"
	"errors"

	"github.com/fxamacker/cbor/v2"
	pailliercore "github.com/mr-shifu/phe-lib/core/paillier"
	comm_paillier "github.com/mr-shifu/phe-lib/pkg/common/cryptosuite/paillier"
	"github.com/mr-shifu/phe-lib/pkg/hash"
)

var (
	ErrKeyEmpty = errors.New("paillier: key contains no public material")
)

// PaillierKey is a stored key pair. The secret half is nil for
// encryption-only roles.
type PaillierKey struct {
	secretKey *pailliercore.SecretKey
	publicKey *pailliercore.PublicKey
}

var _ comm_paillier.PaillierKey = (*PaillierKey)(nil)

func NewPaillierKey(sk *pailliercore.SecretKey, pk *pailliercore.PublicKey) *PaillierKey {
	return &PaillierKey{secretKey: sk, publicKey: pk}
}

type rawPaillierKey struct {
	Public []byte
	Secret []byte
}

// Bytes returns the cbor-framed encoding of the key: the public half always,
// the secret half when present. Both halves are the canonical decimal-string
// JSON of the core types, so Bytes and fromBytes round-trip every field.
func (k *PaillierKey) Bytes() ([]byte, error) {
	if k.publicKey == nil {
		return nil, ErrKeyEmpty
	}

	raw := rawPaillierKey{}

	pkb, err := json.Marshal(k.publicKey)
	if err != nil {
		return nil, err
	}
	raw.Public = pkb

	if k.secretKey != nil {
		skb, err := json.Marshal(k.secretKey)
		if err != nil {
			return nil, err
		}
		raw.Secret = skb
	}

	return cbor.Marshal(raw)
}

// SKI returns the Subject Key Identifier derived from the public modulus
// and generator.
func (k *PaillierKey) SKI() []byte {
	if k.publicKey == nil {
		return nil
	}
	h := hash.New()
	if err := h.WriteAny(k.publicKey.N(), k.publicKey.G()); err != nil {
		return nil
	}
	return h.Sum()
}

// Private returns true if the key contains the secret half.
func (k *PaillierKey) Private() bool {
	return k.secretKey != nil
}

// PublicKey returns the key stripped to its public half.
func (k *PaillierKey) PublicKey() comm_paillier.PaillierKey {
	return &PaillierKey{publicKey: k.publicKey}
}

// Public returns the core public key.
func (k *PaillierKey) Public() *pailliercore.PublicKey {
	return k.publicKey
}

// Secret returns the core secret key, or nil for a public-only key.
func (k *PaillierKey) Secret() *pailliercore.SecretKey {
	return k.secretKey
}

// fromBytes rebuilds a PaillierKey from its Bytes encoding. The secret half
// passes through the validated constructors, so tampered material fails here.
func fromBytes(data []byte) (*PaillierKey, error) {
	var raw rawPaillierKey
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	pk := &pailliercore.PublicKey{}
	if err := json.Unmarshal(raw.Public, pk); err != nil {
		return nil, err
	}

	if raw.Secret == nil {
		return &PaillierKey{publicKey: pk}, nil
	}

	sk := &pailliercore.SecretKey{}
	if err := json.Unmarshal(raw.Secret, sk); err != nil {
		return nil, err
	}

	return &PaillierKey{secretKey: sk, publicKey: sk.PublicKey}, nil
}
