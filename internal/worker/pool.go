package worker

import (
	"context"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produces
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Results are drained as they
// arrive, so Submit never waits on an unread result.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	wg         sync.WaitGroup
	collectWG  sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	queueOnce  sync.Once
}

// NewPool creates a pool whose jobs run under ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go func() {
		defer p.collectWG.Done()
		for result := range p.results {
			p.collected = append(p.collected, result)
		}
	}()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok || p.ctx.Err() != nil {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit queues a job. It returns false if the pool was shut down.
func (p *Pool) Submit(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Wait closes the queue, waits for every queued job and returns the results
// in completion order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancelFunc()
	return p.collected
}

// Shutdown stops the workers without running queued jobs. Jobs already
// running see a cancelled context. It returns the results that came back.
func (p *Pool) Shutdown() []Result {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	return p.collected
}

func (p *Pool) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
