package qshadow

import (
	"context"
	"fmt"
	"time"

	"github.com/theapemachine/errnie"
)

// Engine computes the pairwise trace sum over a snapshot matrix.
type Engine struct {
	config *Config
}

// NewEngine returns an engine using config, or the defaults when nil.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = NewConfig()
	}
	return &Engine{config: config}
}

type estimateOptions struct {
	strategy  Strategy
	workers   int
	batchSize int
}

// EstimateOption overrides engine settings for a single call.
type EstimateOption func(*estimateOptions)

// WithStrategy selects sequential or parallel execution.
func WithStrategy(strategy Strategy) EstimateOption {
	return func(o *estimateOptions) {
		o.strategy = strategy
	}
}

// WithWorkers sets the pool size of a parallel run.
func WithWorkers(workers int) EstimateOption {
	return func(o *estimateOptions) {
		o.workers = workers
	}
}

// WithBatchSize sets the number of pairs per batch of a parallel run.
func WithBatchSize(size int) EstimateOption {
	return func(o *estimateOptions) {
		o.batchSize = size
	}
}

/*
Estimate returns the raw sum, over every unordered pair of rows, of the
product of the per-qubit kernel across subset. subset holds 0-based qubit
positions within a row. The matrix is expected to have passed Validate and
is never modified. Normalizing the sum is left to the caller.
*/
func (e *Engine) Estimate(ctx context.Context, m Matrix, subset []int, opts ...EstimateOption) (float64, error) {
	tally, err := e.EstimateTally(ctx, m, subset, opts...)
	if err != nil {
		return 0, err
	}
	return tally.Value(), nil
}

// EstimateTally is Estimate returning the exact per-pair tally.
func (e *Engine) EstimateTally(ctx context.Context, m Matrix, subset []int, opts ...EstimateOption) (*Tally, error) {
	o := estimateOptions{
		strategy:  e.config.Strategy,
		workers:   e.config.Workers,
		batchSize: e.config.BatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkSubset(m, subset); err != nil {
		estimateRuns.WithLabelValues(string(o.strategy), "index_error").Inc()
		return nil, err
	}

	start := time.Now()
	packed := packRows(m, subset)
	tally := NewTally(len(subset))

	var err error
	switch o.strategy {
	case Sequential:
		e.sequential(packed, tally)
	case Parallel:
		err = e.parallel(ctx, packed, tally, o)
	default:
		err = fmt.Errorf("unknown strategy %q", o.strategy)
	}

	if err != nil {
		estimateRuns.WithLabelValues(string(o.strategy), "error").Inc()
		return nil, err
	}
	estimateRuns.WithLabelValues(string(o.strategy), "ok").Inc()

	errnie.Info(
		"Estimate - strategy %s, rows %d, subset size %d, pairs %d, took %v",
		o.strategy,
		len(m),
		len(subset),
		tally.Pairs(),
		time.Since(start),
	)
	return tally, nil
}

// checkSubset rejects indices outside the row's qubit range. With no rows
// the range is empty.
func checkSubset(m Matrix, subset []int) error {
	size := 0
	if len(m) > 0 {
		size = m[0].Qubits()
	}
	for _, q := range subset {
		if q < 0 || q >= size {
			return &IndexError{Index: q, Size: size}
		}
	}
	return nil
}

func (e *Engine) sequential(packed [][]uint8, tally *Tally) {
	for m1 := 0; m1 < len(packed); m1++ {
		for m2 := m1 + 1; m2 < len(packed); m2++ {
			tally.addPair(packed[m1], packed[m2])
		}
	}
	pairsEvaluated.Add(float64(tally.Pairs()))
}

func (e *Engine) parallel(ctx context.Context, packed [][]uint8, tally *Tally, o estimateOptions) error {
	n := len(packed)
	if n < 2 {
		return nil
	}

	workers := max(o.workers, 1)
	size := o.batchSize
	if size <= 0 {
		size = DefaultBatchSize(n, workers, e.config.BatchDivisor)
	}

	q := NewQ(ctx, workers, e.config)
	defer q.Close()

	qubits := len(packed[0])
	gen := NewBatchGenerator(n, size)
	id := 0

	next := func() (Job, bool) {
		batch, ok := gen.Next()
		if !ok {
			return Job{}, false
		}
		job := Job{
			ID:    id,
			Batch: batch,
			Fn: func() (*Tally, error) {
				local := NewTally(qubits)
				batch.Each(n, func(m1, m2 int) {
					local.addPair(packed[m1], packed[m2])
				})
				return local, nil
			},
		}
		id++
		return job, true
	}

	return q.MapReduce(next, tally)
}

// Trace runs the default engine over m and subset.
func Trace(ctx context.Context, m Matrix, subset []int, opts ...EstimateOption) (float64, error) {
	return NewEngine(nil).Estimate(ctx, m, subset, opts...)
}
