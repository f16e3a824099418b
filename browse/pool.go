package browse

import (
	"context"
	"sync"
)

// workerPool implements WorkerPool with bounded concurrency. Submit never
// blocks: work waits in an unbounded queue until a worker is free.
type workerPool struct {
	workers  int
	mu       sync.Mutex
	queue    []func()
	ready    chan struct{}
	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) WorkerPool {
	if workers <= 0 {
		workers = 1
	}

	pool := &workerPool{
		workers: workers,
		ready:   make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// worker processes work until the pool is stopped
func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case <-p.ready:
		}

		for {
			work, ok := p.next()
			if !ok {
				break
			}
			select {
			case <-p.quit:
				return
			default:
			}
			if work != nil {
				work()
			}
		}
	}
}

// wake signals one idle worker
func (p *workerPool) wake() {
	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// next pops the oldest queued work, waking another worker if more remains
func (p *workerPool) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return nil, false
	}
	work := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	if len(p.queue) > 0 {
		p.wake()
	}
	return work, true
}

// Submit queues work for the pool without blocking
func (p *workerPool) Submit(work func()) error {
	p.mu.Lock()
	select {
	case <-p.quit:
		p.mu.Unlock()
		return ErrPoolStopped
	default:
	}
	p.queue = append(p.queue, work)
	p.mu.Unlock()

	p.wake()
	return nil
}

// pending returns the number of queued work items not yet started
func (p *workerPool) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Stop stops the pool. Queued work that has not started is dropped.
func (p *workerPool) Stop(ctx context.Context) error {
	var err error

	p.stopOnce.Do(func() {
		close(p.quit)

		p.mu.Lock()
		p.queue = nil
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	})

	return err
}
