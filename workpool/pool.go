// Package workpool implements the fixed-worker, work-stealing thread pool
// used to parallelise ingestion across distinct games or files (spec §5),
// ported from async/thread_pool.hh's round-robin-push-plus-cyclic-steal
// design onto goroutines, buffered "wake" signals instead of binary
// semaphores, and context.Context cancellation instead of a stop_token.
package workpool

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work submitted to a Pool.
type Task func()

// queue is a mutex-protected FIFO, the Go stand-in for the original's
// queue_with_lock<Task>.
type queue struct {
	mu    sync.Mutex
	items []Task
}

func (q *queue) push(t Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

func (q *queue) pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

type worker struct {
	id   int
	q    queue
	wake chan struct{}
}

// Pool is a fixed set of workers, each with a private queue, that steal
// from one another in cyclic order when their own queue runs dry (spec
// §5's "thread-pool contract").
type Pool struct {
	workers []*worker
	next    atomic.Uint32
	pending atomic.Int64
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
}

// New starts a Pool of n workers. Cancelling ctx (or calling Close)
// requests cooperative shutdown: workers finish their current task, then
// stop picking up new ones.
func New(ctx context.Context, n int) *Pool {
	if n < 1 {
		n = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	cctx, cancel := context.WithCancel(gctx)

	p := &Pool{
		workers: make([]*worker, n),
		ctx:     cctx,
		cancel:  cancel,
		g:       g,
	}

	for i := 0; i < n; i++ {
		w := &worker{id: i, wake: make(chan struct{}, 1)}
		p.workers[i] = w
		g.Go(func() error {
			p.run(w)
			return nil
		})
	}

	return p
}

// Push enqueues task on a round-robin worker and wakes it.
func (p *Pool) Push(task Task) {
	p.wg.Add(1)

	idx := int(p.next.Add(1)-1) % len(p.workers)
	w := p.workers[idx]

	w.q.push(task)
	p.pending.Add(1)

	select {
	case w.wake <- struct{}{}:
	default: // already woken, or about to drain its queue anyway
	}
}

// Pending returns the number of tasks that have been pushed but not yet
// started (spec §5's "atomic pending counter, decremented before each
// task invocation").
func (p *Pool) Pending() int64 { return p.pending.Load() }

// Wait blocks until every task pushed so far has run to completion
// (queued, stolen, or in-flight). Close calls Wait itself before it
// requests shutdown.
func (p *Pool) Wait() { p.wg.Wait() }

// Close drains all pushed work (see Wait), then requests cooperative
// shutdown and waits for every worker to return.
func (p *Pool) Close() error {
	p.wg.Wait()
	p.cancel()
	return p.g.Wait()
}

func (p *Pool) run(w *worker) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-w.wake:
		}

		for p.ctx.Err() == nil {
			if task, ok := w.q.pop(); ok {
				p.pending.Add(-1)
				task()
				p.wg.Done()
				continue
			}
			if task, ok := p.steal(w); ok {
				p.pending.Add(-1)
				task()
				p.wg.Done()
				continue
			}
			break
		}
	}
}

// steal tries every other worker's queue in cyclic order starting just
// after w, matching the original's "for i := id+1; i != id; ++i %= n".
func (p *Pool) steal(w *worker) (Task, bool) {
	n := len(p.workers)
	for i := 1; i < n; i++ {
		victim := p.workers[(w.id+i)%n]
		if task, ok := victim.q.pop(); ok {
			return task, true
		}
	}
	return nil, false
}
