package qshadow

import "time"

// Job is one batch of pairs to be reduced into a Tally.
type Job struct {
	ID        int
	Batch     Batch
	Fn        func() (*Tally, error)
	StartTime time.Time
}

// Result is what a worker hands back for a job.
type Result struct {
	JobID    int
	Tally    *Tally
	Err      error
	Duration time.Duration
}
