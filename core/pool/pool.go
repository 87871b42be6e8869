package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// A Pool spreads CPU-bound work over a bounded number of goroutines.
//
// A nil Pool is valid, and runs everything on the calling goroutine.
type Pool struct {
	workers int
}

// NewPool creates a Pool with a certain number of workers.
//
// If count is 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: count}
}

// TearDown releases the resources held by the pool.
//
// The pool must not be used afterwards.
func (p *Pool) TearDown() {}

func (p *Pool) workerCount() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Parallelize calls f(0), ..., f(count-1), and returns the results in order.
//
// The calls are spread across the pool's workers, so f must be safe for
// concurrent use.
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)

	workers := p.workerCount()
	if workers > count {
		workers = count
	}

	var next int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1))
				if i >= count {
					return
				}
				results[i] = f(i)
			}
		}()
	}
	wg.Wait()

	return results
}

// Search calls f repeatedly until count non-nil results have been produced,
// and returns those results.
//
// f is expected to fail often, returning nil, as in a rejection-sampling
// search. The attempts run concurrently across the pool's workers.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, 0, count)

	var mu sync.Mutex
	var found int64
	var wg sync.WaitGroup

	workers := p.workerCount()
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for atomic.LoadInt64(&found) < int64(count) {
				r := f()
				if r == nil {
					continue
				}
				mu.Lock()
				if len(results) < count {
					results = append(results, r)
					atomic.AddInt64(&found, 1)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return results
}
