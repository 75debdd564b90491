package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

type Pool struct {
	wg     sync.WaitGroup
	size   int
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		size: numWorkers,
		Do: func(f func()) {
			f()
		},
		Wait:   func(bool) {},
		Cancel: func() {},
	}

	if numWorkers > 1 {
		workChan := make(chan func(), numWorkers)

		for range numWorkers {
			pool.wg.Go(func() {
				for {
					f, ok := <-workChan
					if !ok {
						return
					}
					f()
				}
			})
		}

		pool.Do = func(f func()) {
			workChan <- f
		}

		pool.Wait = func(done bool) {
			if done {
				pool.Cancel()
			}
			pool.wg.Wait()
		}
		pool.Cancel = sync.OnceFunc(func() { close(workChan) })
	}

	return pool
}

// Size returns the number of workers, 1 for an inline pool.
func (p *Pool) Size() int {
	if p == nil {
		return 1
	}
	return p.size
}

// Rows splits [0, n) into at most Size() contiguous ranges and calls f once
// per range through the pool. It returns after every call has finished.
// Must not be called from inside a pool worker.
func (p *Pool) Rows(n int, f func(lo, hi int)) {
	chunks := min(p.Size(), n)
	if chunks < 2 {
		f(0, n)
		return
	}

	var done sync.WaitGroup
	for i := range chunks {
		lo, hi := i*n/chunks, (i+1)*n/chunks
		done.Add(1)
		p.Do(func() {
			defer done.Done()
			f(lo, hi)
		})
	}
	done.Wait()
}
