// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed set of long-lived goroutines executing queued work.
//
// Each worker owns a queue and steals from the others when its own queue
// runs dry, which balances tiles whose pixels are more expensive to sample
// than their neighbours'.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool

	// overflow holds submitted work that did not fit in any queue. Workers
	// take from it before blocking on their own queue.
	overflowMu sync.Mutex
	overflow   []func()
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 2-4x workers hides submission latency
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if queued := p.takeOverflow(); queued != nil {
				queued()
				continue
			}
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				if work != nil {
					work()
				}
			}
		}
	}
}

// drainQueue runs everything left in a queue so that submitted work is
// never silently dropped during shutdown.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes work from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes work across workers and waits for all of it.
// Items that cannot be queued because the pool is closing are run on the
// calling goroutine, so ExecuteAll always executes every item exactly once.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var completionWG sync.WaitGroup
	completionWG.Add(len(work))

	for i, fn := range work {
		workFn := fn
		wrapped := func() {
			defer completionWG.Done()
			workFn()
		}

		select {
		case p.workQueues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}

	completionWG.Wait()
}

// Submit queues a single work item on the worker with the shortest queue.
// It returns false if the pool is closed and the work was not accepted.
// Submit never blocks: when every queue is full the item waits in an
// overflow list until a worker runs dry.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	p.overflowMu.Lock()
	pending := len(p.overflow) > 0
	p.overflowMu.Unlock()

	if !pending {
		minLen := len(p.workQueues[0])
		minIdx := 0
		for i := 1; i < p.workers; i++ {
			if qLen := len(p.workQueues[i]); qLen < minLen {
				minLen = qLen
				minIdx = i
			}
		}
		for i := range p.workers {
			select {
			case p.workQueues[(minIdx+i)%p.workers] <- fn:
				return true
			default:
			}
		}
	}

	p.overflowMu.Lock()
	if !p.running.Load() {
		p.overflowMu.Unlock()
		return false
	}
	p.overflow = append(p.overflow, fn)
	p.overflowMu.Unlock()

	p.wake()
	return true
}

// takeOverflow removes the oldest overflow item, or returns nil.
func (p *WorkerPool) takeOverflow() func() {
	p.overflowMu.Lock()
	defer p.overflowMu.Unlock()
	if len(p.overflow) == 0 {
		return nil
	}
	fn := p.overflow[0]
	p.overflow[0] = nil
	p.overflow = p.overflow[1:]
	return fn
}

// wake nudges idle workers blocked on an empty queue so they recheck the
// overflow list. Workers ignore nil work.
func (p *WorkerPool) wake() {
	for _, q := range p.workQueues {
		select {
		case q <- nil:
		default:
		}
	}
}

// Close stops accepting work, runs everything already accepted and stops
// the workers. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()

	// Workers drained their own queues; run what is left over.
	for fn := p.takeOverflow(); fn != nil; fn = p.takeOverflow() {
		fn()
	}
	for _, q := range p.workQueues {
		p.drainQueue(q)
	}
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
