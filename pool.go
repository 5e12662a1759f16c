package qshadow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

/*
Q is a bounded worker pool scoped to a single estimation. Workers offer
their job channel on q.workers, the manager hands each queued job to the
next free worker, and results come back on q.results to one reducer.
*/
type Q struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	workers   chan chan Job
	jobs      chan Job
	results   chan Result
	metrics   *Metrics
	config    *Config
	closeOnce sync.Once
}

// NewQ starts a pool of the given size. The pool stops when ctx ends or
// Close is called.
func NewQ(ctx context.Context, workers int, config *Config) *Q {
	if config == nil {
		config = NewConfig()
	}
	workers = max(workers, 1)

	ctx, cancel := context.WithCancel(ctx)
	q := &Q{
		ctx:     ctx,
		cancel:  cancel,
		workers: make(chan chan Job, workers),
		jobs:    make(chan Job, max(config.QueueDepth, 1)),
		results: make(chan Result, workers),
		metrics: NewMetrics(),
		config:  config,
	}

	for i := 0; i < workers; i++ {
		q.startWorker()
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.manage()
	}()

	errnie.Info("NewQ - workers %d, queue depth %d", workers, cap(q.jobs))
	return q
}

// Pool management
func (q *Q) manage() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			select {
			case <-q.ctx.Done():
				return
			case workerChan := <-q.workers:
				select {
				case workerChan <- job:
				case <-q.ctx.Done():
					return
				}
			}
		}
	}
}

/*
Schedule queues a job, blocking while the queue is full. It fails when the
pool is closed or, if configured, when the queue stays full for longer than
the scheduling timeout.
*/
func (q *Q) Schedule(job Job) error {
	if q.ctx.Err() != nil {
		return ErrPoolClosed
	}

	var timeout <-chan time.Time
	if q.config.SchedulingTimeout > 0 {
		timer := time.NewTimer(q.config.SchedulingTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	job.StartTime = time.Now()

	select {
	case q.jobs <- job:
		q.metrics.recordScheduled(len(q.jobs))
		return nil
	case <-q.ctx.Done():
		return ErrPoolClosed
	case <-timeout:
		return fmt.Errorf("job %d scheduling timeout after %v", job.ID, q.config.SchedulingTimeout)
	}
}

/*
MapReduce pulls jobs from next, schedules them, and merges every returned
tally into into. It returns once all scheduled jobs have reported, or with
the first error observed, in which case the remaining work is abandoned.
into is only touched from the calling goroutine.
*/
func (q *Q) MapReduce(next func() (Job, bool), into *Tally) error {
	type dispatch struct {
		count int
		err   error
	}
	done := make(chan dispatch, 1)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		count := 0
		for {
			job, ok := next()
			if !ok {
				break
			}
			if err := q.Schedule(job); err != nil {
				done <- dispatch{count: count, err: err}
				return
			}
			count++
		}
		done <- dispatch{count: count}
	}()

	received, dispatched := 0, -1
	for dispatched < 0 || received < dispatched {
		select {
		case d := <-done:
			if d.err != nil {
				if err := q.ctx.Err(); err != nil {
					return err
				}
				q.cancel()
				return d.err
			}
			dispatched = d.count
		case result := <-q.results:
			if result.Err != nil {
				q.cancel()
				return result.Err
			}
			into.Merge(result.Tally)
			received++
		case <-q.ctx.Done():
			return q.ctx.Err()
		}
	}
	return nil
}

// Metrics returns the pool statistics.
func (q *Q) Metrics() *Metrics {
	return q.metrics
}

func (q *Q) startWorker() {
	worker := &Worker{
		pool: q,
		jobs: make(chan Job),
	}
	q.metrics.workerStarted()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer q.metrics.workerStopped()
		worker.run(q.ctx)
	}()
}

// Close cancels the pool and waits for the manager, every worker and any
// MapReduce producer to exit. It is safe to call more than once.
func (q *Q) Close() {
	if q == nil {
		return
	}

	q.closeOnce.Do(func() {
		q.cancel()
		q.wg.Wait()

		errnie.Info("Close - pool stopped, %v", q.metrics.ExportMetrics())
	})
}
