package keyopts

// KeyData is the metadata stored for a logical key ID.
type KeyData struct {
	SKI string
}

type Options interface {
	Set(kVs ...interface{}) error
	Get(key string) (interface{}, bool)
}

// KeyOpts manages the mapping from a caller-chosen logical key ID to the
// SKI of the key material currently bound to it. Rebinding an ID to a new
// SKI is how a context replaces its key pair.
type KeyOpts interface {
	// Import binds the SKI carried in data to the ID in opts.
	Import(data interface{}, opts Options) error

	// Get returns the metadata bound to the ID in opts.
	Get(opts Options) (*KeyData, error)

	// Delete removes the binding for the ID in opts.
	Delete(opts Options) error
}
