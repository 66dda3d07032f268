// File: internal/infra/worker/pool.go
package worker

import (
	"runtime"
	"sync"
)

// Pool runs submitted tasks with a fixed concurrency bound and lets the caller
// wait for all of them. Used by the expiry run to fan out per-user downgrades;
// each task touches a single user row, so ordering between tasks is free.

type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{sem: make(chan struct{}, workers)}
}

// Go blocks until a worker slot is free, then runs task in its own goroutine.
func (p *Pool) Go(task func()) {
	p.sem <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		task()
	}()
}

// Wait returns once every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
