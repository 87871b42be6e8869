package keystore

import (
	"testing"

	"github.com/mr-shifu/phe-lib/pkg/keyopts"
	"github.com/mr-shifu/phe-lib/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeystore() (*InMemoryKeystore, *vault.InMemoryVault) {
	v := vault.NewInMemoryVault()
	kr := keyopts.NewInMemoryKeyOpts()
	return NewInMemoryKeystore(v, kr), v
}

func TestImportGet(t *testing.T) {
	ks, _ := newTestKeystore()

	opts := keyopts.NewOptions()
	require.NoError(t, opts.Set("id", "key-1"))

	require.NoError(t, ks.Import("ski-1", []byte("material"), opts))

	got, err := ks.Get(opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("material"), got)
}

func TestRebindDiscardsOldKey(t *testing.T) {
	ks, v := newTestKeystore()

	opts := keyopts.NewOptions()
	require.NoError(t, opts.Set("id", "key-1"))

	require.NoError(t, ks.Import("ski-1", []byte("old"), opts))
	require.NoError(t, ks.Import("ski-2", []byte("new"), opts))

	got, err := ks.Get(opts)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)

	// the superseded material is gone from the vault
	_, err = v.Get("ski-1")
	assert.ErrorIs(t, err, vault.ErrKeyNotFound)
}

func TestReimportSameSKI(t *testing.T) {
	ks, v := newTestKeystore()

	opts := keyopts.NewOptions()
	require.NoError(t, opts.Set("id", "key-1"))

	require.NoError(t, ks.Import("ski-1", []byte("material"), opts))
	require.NoError(t, ks.Import("ski-1", []byte("material"), opts))

	got, err := v.Get("ski-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("material"), got)
}

func TestDelete(t *testing.T) {
	ks, v := newTestKeystore()

	opts := keyopts.NewOptions()
	require.NoError(t, opts.Set("id", "key-1"))

	require.NoError(t, ks.Import("ski-1", []byte("material"), opts))
	require.NoError(t, ks.Delete(opts))

	_, err := ks.Get(opts)
	assert.Error(t, err)
	_, err = v.Get("ski-1")
	assert.ErrorIs(t, err, vault.ErrKeyNotFound)
}
