package vault

// Vault stores raw serialized key material addressed by SKI.
type Vault interface {
	Import(ski string, key []byte) error
	Get(ski string) ([]byte, error)
	Delete(ski string) error
}
