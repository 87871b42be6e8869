package paillier

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"

	"github.com/mr-shifu/phe-lib/core/codec"
	pailliercore "github.com/mr-shifu/phe-lib/core/paillier"
	"github.com/mr-shifu/phe-lib/core/pool"
	"github.com/mr-shifu/phe-lib/lib/params"
	comm_paillier "github.com/mr-shifu/phe-lib/pkg/common/cryptosuite/paillier"
	"github.com/mr-shifu/phe-lib/pkg/common/keyopts"
	"github.com/mr-shifu/phe-lib/pkg/common/keystore"
)

var (
	ErrNotPrivate = errors.New("paillier: key has no secret half, cannot decrypt")
	ErrInvalidRaw = errors.New("paillier: cannot import key from this type")
)

// PaillierKeyManager is a crypto context backed by a keystore. Each logical
// key ID owns at most one key pair; rebinding an ID to a freshly generated
// key discards the previous pair. Cryptographic operations take a read lock
// so a key replacement never overlaps an in-flight encrypt or decrypt.
type PaillierKeyManager struct {
	ks keystore.Keystore
	pl *pool.Pool

	// serializes key replacement against in-flight operations
	lock sync.RWMutex

	bits int
}

var _ comm_paillier.PaillierKeyManager = (*PaillierKeyManager)(nil)

// NewPaillierKeyManager creates a manager generating keys of the given
// modulus bit length; bits <= 0 selects params.PaillierBits.
func NewPaillierKeyManager(ks keystore.Keystore, pl *pool.Pool, bits int) *PaillierKeyManager {
	if bits <= 0 {
		bits = params.PaillierBits
	}
	return &PaillierKeyManager{ks: ks, pl: pl, bits: bits}
}

// GenerateKey generates a new Paillier key pair and binds it to the ID in
// opts. A non-power-of-two bit length is only an advisory and does not
// block generation; callers can surface it with paillier.CheckKeyLength.
func (mgr *PaillierKeyManager) GenerateKey(opts keyopts.Options) (comm_paillier.PaillierKey, error) {
	if err := pailliercore.CheckKeyLength(mgr.bits); err != nil && !errors.Is(err, pailliercore.ErrBitLenNotPow2) {
		return nil, err
	}

	pk, sk, err := pailliercore.KeyGen(rand.Reader, mgr.bits, mgr.pl)
	if err != nil {
		return nil, err
	}

	key := NewPaillierKey(sk, pk)
	if err := mgr.importKey(key, opts); err != nil {
		return nil, err
	}
	return key, nil
}

// ImportKey imports a key from its Bytes encoding or from a *PaillierKey,
// and binds it to the ID in opts.
func (mgr *PaillierKeyManager) ImportKey(raw interface{}, opts keyopts.Options) (comm_paillier.PaillierKey, error) {
	var key *PaillierKey
	switch t := raw.(type) {
	case []byte:
		k, err := fromBytes(t)
		if err != nil {
			return nil, err
		}
		key = k
	case *PaillierKey:
		key = t
	default:
		return nil, ErrInvalidRaw
	}

	if err := mgr.importKey(key, opts); err != nil {
		return nil, err
	}
	return key, nil
}

func (mgr *PaillierKeyManager) importKey(key *PaillierKey, opts keyopts.Options) error {
	mgr.lock.Lock()
	defer mgr.lock.Unlock()

	kb, err := key.Bytes()
	if err != nil {
		return err
	}
	ski := hex.EncodeToString(key.SKI())
	return mgr.ks.Import(ski, kb, opts)
}

// GetKey returns the key bound to the ID in opts.
func (mgr *PaillierKeyManager) GetKey(opts keyopts.Options) (comm_paillier.PaillierKey, error) {
	mgr.lock.RLock()
	defer mgr.lock.RUnlock()
	return mgr.getKey(opts)
}

func (mgr *PaillierKeyManager) getKey(opts keyopts.Options) (*PaillierKey, error) {
	kb, err := mgr.ks.Get(opts)
	if err != nil {
		return nil, err
	}
	return fromBytes(kb)
}

// DeleteKey removes the key bound to the ID in opts.
func (mgr *PaillierKeyManager) DeleteKey(opts keyopts.Options) error {
	mgr.lock.Lock()
	defer mgr.lock.Unlock()
	return mgr.ks.Delete(opts)
}

// Encrypt encrypts m under the key bound to the ID in opts, with the
// default (unchecked) blinding factor.
func (mgr *PaillierKeyManager) Encrypt(m *big.Int, opts keyopts.Options) (*pailliercore.Ciphertext, error) {
	mgr.lock.RLock()
	defer mgr.lock.RUnlock()

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}
	ct, _, err := key.Public().Enc(rand.Reader, m)
	return ct, err
}

// EncryptStrict is Encrypt with a coprimality-enforced blinding factor.
func (mgr *PaillierKeyManager) EncryptStrict(m *big.Int, opts keyopts.Options) (*pailliercore.Ciphertext, error) {
	mgr.lock.RLock()
	defer mgr.lock.RUnlock()

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}
	ct, _, err := key.Public().EncStrict(rand.Reader, m)
	return ct, err
}

// Decrypt decrypts ct under the key bound to the ID in opts. The key must
// contain the secret half.
func (mgr *PaillierKeyManager) Decrypt(ct *pailliercore.Ciphertext, opts keyopts.Options) (*big.Int, error) {
	mgr.lock.RLock()
	defer mgr.lock.RUnlock()

	key, err := mgr.getKey(opts)
	if err != nil {
		return nil, err
	}
	if !key.Private() {
		return nil, ErrNotPrivate
	}
	return key.Secret().Dec(ct)
}

// EncryptText encodes text with the codec and encrypts the result. The
// encoded integer must fit the message space [0, N).
func (mgr *PaillierKeyManager) EncryptText(text string, opts keyopts.Options) (*pailliercore.Ciphertext, error) {
	return mgr.Encrypt(codec.ToInt(text), opts)
}

// DecryptText decrypts ct and decodes the plaintext integer back to text.
func (mgr *PaillierKeyManager) DecryptText(ct *pailliercore.Ciphertext, opts keyopts.Options) (string, error) {
	m, err := mgr.Decrypt(ct, opts)
	if err != nil {
		return "", err
	}
	return codec.ToText(m)
}
