package paillier

import (
	"math/big"

	"github.com/mr-shifu/phe-lib/core/paillier"
	"github.com/mr-shifu/phe-lib/pkg/common/keyopts"
)

// PaillierKey is a stored Paillier key pair, or the public half alone for
// encryption-only roles.
type PaillierKey interface {
	// Bytes returns the serialized form of the key suitable for the vault.
	Bytes() ([]byte, error)

	// SKI returns the Subject Key Identifier derived from the public material.
	SKI() []byte

	// Private returns true if the key contains the secret half.
	Private() bool

	// PublicKey returns the key stripped to its public half.
	PublicKey() PaillierKey

	// Public returns the core public key.
	Public() *paillier.PublicKey

	// Secret returns the core secret key, or nil for a public-only key.
	Secret() *paillier.SecretKey
}

// PaillierKeyManager is the crypto context: it owns at most one key pair
// per logical key ID and performs all cryptographic operations under a
// read lock, so a key replacement never races an in-flight call.
type PaillierKeyManager interface {
	GenerateKey(opts keyopts.Options) (PaillierKey, error)
	ImportKey(raw interface{}, opts keyopts.Options) (PaillierKey, error)
	GetKey(opts keyopts.Options) (PaillierKey, error)
	DeleteKey(opts keyopts.Options) error

	Encrypt(m *big.Int, opts keyopts.Options) (*paillier.Ciphertext, error)
	EncryptStrict(m *big.Int, opts keyopts.Options) (*paillier.Ciphertext, error)
	Decrypt(ct *paillier.Ciphertext, opts keyopts.Options) (*big.Int, error)

	EncryptText(text string, opts keyopts.Options) (*paillier.Ciphertext, error)
	DecryptText(ct *paillier.Ciphertext, opts keyopts.Options) (string, error)
}
