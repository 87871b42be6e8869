package keystore

import (
	"errors"

	"github.com/mr-shifu/phe-lib/pkg/common/keyopts"
	"github.com/mr-shifu/phe-lib/pkg/common/vault"
)

var (
	ErrKeyNotFound = errors.New("keystore: key not found")
)

// InMemoryKeystore composes a vault holding serialized keys with a keyopts
// repository mapping logical IDs to SKIs.
type InMemoryKeystore struct {
	v  vault.Vault
	kr keyopts.KeyOpts
}

func NewInMemoryKeystore(v vault.Vault, kr keyopts.KeyOpts) *InMemoryKeystore {
	return &InMemoryKeystore{
		v:  v,
		kr: kr,
	}
}

func (ks *InMemoryKeystore) Import(ski string, key []byte, opts keyopts.Options) error {
	// rebinding an ID discards the superseded key material
	if kd, err := ks.kr.Get(opts); err == nil && kd.SKI != "" && kd.SKI != ski {
		if err := ks.v.Delete(kd.SKI); err != nil {
			return err
		}
	}

	// store key material to vault
	if err := ks.v.Import(ski, key); err != nil {
		return err
	}

	// bind the logical ID to the stored key
	if err := ks.kr.Import(ski, opts); err != nil {
		return err
	}

	return nil
}

func (ks *InMemoryKeystore) Get(opts keyopts.Options) ([]byte, error) {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return nil, err
	}
	if kd.SKI == "" {
		return nil, ErrKeyNotFound
	}

	return ks.v.Get(kd.SKI)
}

func (ks *InMemoryKeystore) Delete(opts keyopts.Options) error {
	kd, err := ks.kr.Get(opts)
	if err != nil {
		return err
	}

	if err := ks.v.Delete(kd.SKI); err != nil {
		return err
	}

	return ks.kr.Delete(opts)
}
