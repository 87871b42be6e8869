package keystore

import "github.com/mr-shifu/phe-lib/pkg/common/keyopts"

// Keystore combines a vault holding serialized key material with a key
// metadata repository mapping logical IDs to SKIs.
type Keystore interface {
	// Import stores key bytes under ski and binds it to the ID in opts.
	Import(ski string, key []byte, opts keyopts.Options) error

	// Get returns the key bytes bound to the ID in opts.
	Get(opts keyopts.Options) ([]byte, error)

	// Delete removes both the key bytes and the ID binding.
	Delete(opts keyopts.Options) error
}
