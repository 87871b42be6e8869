package keyopts

import (
	"errors"
	"sync"

	"github.com/mr-shifu/phe-lib/pkg/common/keyopts"
)

var (
	ErrInvalidParamsKeyID = errors.New("keyopts: invalid keyID")
	ErrKeyNotFound        = errors.New("keyopts: key not found")
)

// KeyOpts maps a logical key ID to the SKI of the key material bound to it.
// Re-importing an ID replaces the binding, which is how a context swaps in
// a newly generated key pair.
type KeyOpts struct {
	lock sync.RWMutex

	keys map[string]*keyopts.KeyData
}

func NewInMemoryKeyOpts() *KeyOpts {
	return &KeyOpts{
		keys: make(map[string]*keyopts.KeyData),
	}
}

func keyID(opts keyopts.Options) (string, error) {
	ID, ok := opts.Get("id")
	if !ok {
		return "", ErrInvalidParamsKeyID
	}
	kid, ok := ID.(string)
	if !ok {
		return "", ErrInvalidParamsKeyID
	}
	return kid, nil
}

func (kr *KeyOpts) Import(data interface{}, opts keyopts.Options) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	kid, err := keyID(opts)
	if err != nil {
		return err
	}

	ski, ok := data.(string)
	if !ok {
		return errors.New("keyopts: invalid data")
	}
	kr.keys[kid] = &keyopts.KeyData{SKI: ski}

	return nil
}

func (kr *KeyOpts) Get(opts keyopts.Options) (*keyopts.KeyData, error) {
	kr.lock.RLock()
	defer kr.lock.RUnlock()

	kid, err := keyID(opts)
	if err != nil {
		return nil, err
	}

	k, ok := kr.keys[kid]
	if !ok {
		return nil, ErrKeyNotFound
	}

	return k, nil
}

func (kr *KeyOpts) Delete(opts keyopts.Options) error {
	kr.lock.Lock()
	defer kr.lock.Unlock()

	kid, err := keyID(opts)
	if err != nil {
		return err
	}

	delete(kr.keys, kid)

	return nil
}
