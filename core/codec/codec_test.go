package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{
		"Hello World!",
		"a",
		"héllo wörld",
		"数字化", // multi-byte runes
	} {
		out, err := ToText(ToInt(s))
		require.NoError(t, err)
		assert.Equal(t, s, out)
	}
}

func TestEmpty(t *testing.T) {
	x := ToInt("")
	assert.Equal(t, 0, x.Sign())

	out, err := ToText(x)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestKnownValue(t *testing.T) {
	// "Hi" = 0x48 0x69 big-endian
	assert.Equal(t, int64(0x4869), ToInt("Hi").Int64())
}

func TestInvalidUTF8(t *testing.T) {
	_, err := ToText(big.NewInt(0xff))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestNegative(t *testing.T) {
	_, err := ToText(big.NewInt(-5))
	assert.ErrorIs(t, err, ErrNegative)
	_, err = ToText(nil)
	assert.ErrorIs(t, err, ErrNegative)
}
