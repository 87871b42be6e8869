package arith

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nat(x *big.Int) *saferith.Nat {
	return new(saferith.Nat).SetBig(x, x.BitLen())
}

func TestExpWithFactors(t *testing.T) {
	p, _ := new(big.Int).SetString("1000003", 10)
	q, _ := new(big.Int).SetString("998244353", 10)
	n := new(big.Int).Mul(p, q)

	m := ModulusFromFactors(nat(p), nat(q))

	x := big.NewInt(123456789)
	e := big.NewInt(987654321)
	want := new(big.Int).Exp(x, e, n)

	got := m.Exp(nat(x), nat(e)).Big()
	assert.Equal(t, 0, want.Cmp(got))
}

func TestExpSquaredModulus(t *testing.T) {
	p, _ := new(big.Int).SetString("1000003", 10)
	q, _ := new(big.Int).SetString("998244353", 10)
	n := new(big.Int).Mul(p, q)
	nSquared := new(big.Int).Mul(n, n)

	m := SquaredModulusFromFactors(nat(p), nat(q))

	x := big.NewInt(271828182845)
	e := big.NewInt(314159265358)
	want := new(big.Int).Exp(x, e, nSquared)

	got := m.Exp(nat(x), nat(e)).Big()
	assert.Equal(t, 0, want.Cmp(got))
}

func TestExpWithoutFactors(t *testing.T) {
	n := big.NewInt(1<<31 - 1)
	m := ModulusFromN(saferith.ModulusFromNat(nat(n)))

	x := big.NewInt(3)
	e := big.NewInt(1000)
	want := new(big.Int).Exp(x, e, n)
	got := m.Exp(nat(x), nat(e)).Big()
	assert.Equal(t, 0, want.Cmp(got))
}

func TestSerializeRoundTrip(t *testing.T) {
	p, _ := new(big.Int).SetString("1000003", 10)
	q, _ := new(big.Int).SetString("998244353", 10)

	m := SquaredModulusFromFactors(nat(p), nat(q))
	data, err := m.Serialize()
	require.NoError(t, err)

	restored := &Modulus{}
	require.NoError(t, restored.Deserialize(data))

	x := big.NewInt(5)
	e := big.NewInt(1 << 20)
	assert.Equal(t, 0, m.Exp(nat(x), nat(e)).Big().Cmp(restored.Exp(nat(x), nat(e)).Big()))
}
