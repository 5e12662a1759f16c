package qshadow

import (
	"context"
	"fmt"
	"time"
)

// Worker processes jobs
type Worker struct {
	pool *Q
	jobs chan Job
}

// run offers the worker to the pool, executes whatever job it is handed and
// reports the result, until the pool context ends.
func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case w.pool.workers <- w.jobs:
		}

		var job Job
		select {
		case <-ctx.Done():
			return
		case job = <-w.jobs:
		}

		result := w.processJob(job)

		select {
		case <-ctx.Done():
			return
		case w.pool.results <- result:
		}
	}
}

func (w *Worker) processJob(job Job) (result Result) {
	startTime := time.Now()
	result.JobID = job.ID
	if !job.StartTime.IsZero() {
		w.pool.metrics.recordQueueWait(startTime.Sub(job.StartTime))
	}

	defer func() {
		if r := recover(); r != nil {
			result.Tally = nil
			result.Err = fmt.Errorf("job %d panicked: %v", job.ID, r)
		}
		result.Duration = time.Since(startTime)
		w.pool.metrics.recordJobExecution(result.Duration, int64(job.Batch.Count), result.Err == nil)
	}()

	tally, err := job.Fn()
	if err != nil {
		result.Err = fmt.Errorf("job %d failed: %w", job.ID, err)
		return result
	}
	if tally == nil {
		result.Err = fmt.Errorf("job %d returned no tally", job.ID)
		return result
	}
	result.Tally = tally
	return result
}
