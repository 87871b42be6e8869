package paillier

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/mr-shifu/phe-lib/core/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testKeyPair(t *testing.T, bits int, pl *pool.Pool) (*PublicKey, *SecretKey) {
	t.Helper()
	pk, sk, err := KeyGen(rand.Reader, bits, pl)
	require.NoError(t, err)
	return pk, sk
}

func TestKeyGenRoundTrip(t *testing.T) {
	for _, bits := range []int{256, 512, 1024} {
		bits := bits
		t.Run(fmt.Sprintf("%dbit", bits), func(t *testing.T) {
			t.Parallel()
			pl := pool.NewPool(0)
			defer pl.TearDown()

			pk, sk := testKeyPair(t, bits, pl)
			require.Equal(t, bits, pk.N().BitLen())

			for i := 0; i < 200; i++ {
				m, err := rand.Int(rand.Reader, pk.N())
				require.NoError(t, err)

				ct, _, err := pk.Enc(rand.Reader, m)
				require.NoError(t, err)

				dec, err := sk.Dec(ct)
				require.NoError(t, err)
				require.Equal(t, 0, m.Cmp(dec), "decryption must invert encryption")
			}
		})
	}
}

func TestKeyInvariants(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 512, pl)

	p := sk.P().Big()
	q := sk.Q().Big()
	n := pk.N()

	assert.NotEqual(t, 0, p.Cmp(q))
	assert.Equal(t, 0, new(big.Int).Mul(p, q).Cmp(n))
	assert.Equal(t, 0, new(big.Int).Mul(n, n).Cmp(pk.N2()))

	// λ divides ϕ = (p-1)(q-1)
	pMinus1 := new(big.Int).Sub(p, one)
	qMinus1 := new(big.Int).Sub(q, one)
	phi := new(big.Int).Mul(pMinus1, qMinus1)
	lambda := sk.Lambda()
	assert.Equal(t, 0, new(big.Int).Mod(phi, lambda).Sign())

	// μ ⋅ L(g^λ mod N²) ≡ 1 (mod N)
	u := new(big.Int).Exp(pk.G(), lambda, pk.N2())
	l, exact := lFunc(u, n)
	require.True(t, exact)
	check := l.Mul(l, sk.Mu())
	check.Mod(check, n)
	assert.Equal(t, 0, check.Cmp(one))
}

func TestEncNonDeterministic(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, _ := testKeyPair(t, 512, pl)

	m := big.NewInt(42)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ct, _, err := pk.Enc(rand.Reader, m)
		require.NoError(t, err)
		s := ct.BigInt().String()
		assert.False(t, seen[s], "repeated encryption must produce fresh ciphertexts")
		seen[s] = true
	}
}

func TestHomomorphicAdd(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 512, pl)

	m1, err := rand.Int(rand.Reader, pk.N())
	require.NoError(t, err)
	m2, err := rand.Int(rand.Reader, pk.N())
	require.NoError(t, err)

	ct1, _, err := pk.Enc(rand.Reader, m1)
	require.NoError(t, err)
	ct2, _, err := pk.Enc(rand.Reader, m2)
	require.NoError(t, err)

	sum := ct1.Clone().Add(pk, ct2)
	dec, err := sk.Dec(sum)
	require.NoError(t, err)

	want := new(big.Int).Add(m1, m2)
	want.Mod(want, pk.N())
	assert.Equal(t, 0, want.Cmp(dec))
}

func TestHomomorphicScale(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	m := big.NewInt(1234)
	k := big.NewInt(99)

	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)

	scaled := ct.Clone().Mul(pk, k)
	dec, err := sk.Dec(scaled)
	require.NoError(t, err)

	want := new(big.Int).Mul(m, k)
	want.Mod(want, pk.N())
	assert.Equal(t, 0, want.Cmp(dec))
}

func TestBoundaryPlaintexts(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	for _, m := range []*big.Int{
		big.NewInt(0),
		new(big.Int).Sub(pk.N(), one),
	} {
		ct, _, err := pk.Enc(rand.Reader, m)
		require.NoError(t, err)
		dec, err := sk.Dec(ct)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(dec))
	}
}

func TestPlaintextRange(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, _ := testKeyPair(t, 256, pl)

	_, _, err := pk.Enc(rand.Reader, pk.N())
	assert.ErrorIs(t, err, ErrPlaintextRange)
	_, _, err = pk.Enc(rand.Reader, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrPlaintextRange)
}

func TestCiphertextRange(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	_, err := CiphertextFromBig(pk, pk.N2())
	assert.ErrorIs(t, err, ErrCiphertextRange)
	_, err = CiphertextFromBig(pk, big.NewInt(-1))
	assert.ErrorIs(t, err, ErrCiphertextRange)

	oversized := &Ciphertext{}
	oversized.c.Set(pk.N2())
	_, err = sk.Dec(oversized)
	assert.ErrorIs(t, err, ErrCiphertextRange)
}

func TestDecNonUnitCiphertext(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	// 0 is in [0, N²) but has no inverse mod N², so no plaintext exists
	zero, err := CiphertextFromBig(pk, big.NewInt(0))
	require.NoError(t, err)
	_, err = sk.Dec(zero)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	// a multiple of a prime factor is equally undecryptable
	shared, err := CiphertextFromBig(pk, sk.P().Big())
	require.NoError(t, err)
	_, err = sk.Dec(shared)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestEncStrictNonceIsUnit(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	m := big.NewInt(7)
	gcd := new(big.Int)
	for i := 0; i < 20; i++ {
		ct, nonce, err := pk.EncStrict(rand.Reader, m)
		require.NoError(t, err)

		gcd.GCD(nil, nil, nonce, pk.N())
		assert.Equal(t, 0, gcd.Cmp(one))

		dec, err := sk.Dec(ct)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Cmp(dec))
	}
}

func TestRandomize(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	m := big.NewInt(555)
	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)

	reblinded := ct.Clone()
	_, err = reblinded.Randomize(rand.Reader, pk)
	require.NoError(t, err)
	assert.False(t, ct.Equal(reblinded))

	dec, err := sk.Dec(reblinded)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(dec))
}

func TestCheckKeyLength(t *testing.T) {
	assert.ErrorIs(t, CheckKeyLength(0), ErrKeyBits)
	assert.ErrorIs(t, CheckKeyLength(-256), ErrKeyBits)
	assert.ErrorIs(t, CheckKeyLength(255), ErrOddBitLength)
	assert.ErrorIs(t, CheckKeyLength(384), ErrBitLenNotPow2)
	assert.NoError(t, CheckKeyLength(256))

	_, _, err := KeyGen(rand.Reader, 257, nil)
	assert.ErrorIs(t, err, ErrOddBitLength)
	_, _, err = KeyGen(rand.Reader, 0, nil)
	assert.ErrorIs(t, err, ErrKeyBits)
}

func TestPublicKeyValidation(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, _ := testKeyPair(t, 256, pl)

	rebuilt, err := NewPublicKey(pk.N(), pk.G())
	require.NoError(t, err)
	assert.True(t, pk.Equal(rebuilt))
	assert.Equal(t, 0, pk.N2().Cmp(rebuilt.N2()))

	_, err = NewPublicKey(nil, pk.G())
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = NewPublicKey(big.NewInt(256), pk.G())
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = NewPublicKey(pk.N(), one)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = NewPublicKey(pk.N(), pk.N2())
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestInjectedSecretKey(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	// a key injected as (λ, μ) decrypts without the factors
	injected, err := NewSecretKey(pk, sk.Lambda(), sk.Mu())
	require.NoError(t, err)
	assert.Nil(t, injected.P())

	m := big.NewInt(31337)
	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)
	dec, err := injected.Dec(ct)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(dec))
}

func TestMixedKeyHalvesRejected(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk1, _ := testKeyPair(t, 256, pl)
	_, sk2 := testKeyPair(t, 256, pl)

	_, err := NewSecretKey(pk1, sk2.Lambda(), sk2.Mu())
	assert.ErrorIs(t, err, ErrInvalidSecretKey)

	_, err = NewSecretKeyFromPrimes(pk1, sk2.P().Big(), sk2.Q().Big())
	assert.ErrorIs(t, err, ErrInvalidSecretKey)
}

func TestSecretKeyFromPrimes(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	rebuilt, err := NewSecretKeyFromPrimes(pk, sk.P().Big(), sk.Q().Big())
	require.NoError(t, err)
	assert.Equal(t, 0, rebuilt.Lambda().Cmp(sk.Lambda()))
	assert.Equal(t, 0, rebuilt.Mu().Cmp(sk.Mu()))
}

func TestPublicKeyJSONRoundTrip(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, _ := testKeyPair(t, 256, pl)

	data, err := json.Marshal(pk)
	require.NoError(t, err)

	restored := &PublicKey{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.True(t, pk.Equal(restored))
	assert.Equal(t, 0, pk.N2().Cmp(restored.N2()))
}

func TestSecretKeyJSONRoundTrip(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	data, err := json.Marshal(sk)
	require.NoError(t, err)

	restored := &SecretKey{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, 0, sk.Lambda().Cmp(restored.Lambda()))
	assert.Equal(t, 0, sk.Mu().Cmp(restored.Mu()))
	assert.Equal(t, 0, sk.P().Big().Cmp(restored.P().Big()))
	assert.Equal(t, 0, sk.Q().Big().Cmp(restored.Q().Big()))
	assert.True(t, sk.PublicKey.Equal(restored.PublicKey))

	m := big.NewInt(8080)
	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)
	dec, err := restored.Dec(ct)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(dec))
}

func TestCiphertextJSONRoundTrip(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	m := big.NewInt(271828)
	ct, _, err := pk.Enc(rand.Reader, m)
	require.NoError(t, err)

	data, err := json.Marshal(ct)
	require.NoError(t, err)

	restored := &Ciphertext{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.True(t, ct.Equal(restored))

	dec, err := sk.Dec(restored)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Cmp(dec))
}

func TestConcurrentUse(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	pk, sk := testKeyPair(t, 256, pl)

	g := new(errgroup.Group)
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 20; i++ {
				m, err := rand.Int(rand.Reader, pk.N())
				if err != nil {
					return err
				}
				ct, _, err := pk.Enc(rand.Reader, m)
				if err != nil {
					return err
				}
				dec, err := sk.Dec(ct)
				if err != nil {
					return err
				}
				if m.Cmp(dec) != 0 {
					return fmt.Errorf("round trip mismatch")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
