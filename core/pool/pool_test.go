package pool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeOrder(t *testing.T) {
	for _, pl := range []*Pool{nil, NewPool(0), NewPool(3)} {
		results := pl.Parallelize(100, func(i int) interface{} {
			return i * i
		})
		require.Len(t, results, 100)
		for i, r := range results {
			assert.Equal(t, i*i, r.(int))
		}
		if pl != nil {
			pl.TearDown()
		}
	}
}

func TestSearch(t *testing.T) {
	pl := NewPool(0)
	defer pl.TearDown()

	var attempts int64
	results := pl.Search(4, func() interface{} {
		n := atomic.AddInt64(&attempts, 1)
		// reject three out of four attempts
		if n%4 != 0 {
			return nil
		}
		return n
	})
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Zero(t, r.(int64)%4)
	}
}

func TestSearchNilPool(t *testing.T) {
	var pl *Pool
	results := pl.Search(1, func() interface{} { return 42 })
	require.Len(t, results, 1)
	assert.Equal(t, 42, results[0].(int))
}
