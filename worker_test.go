package qshadow

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const timeoutMsg = "Test timed out waiting for worker result"

func TestWorker(t *testing.T) {
	Convey("Given a worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		pool := &Q{
			ctx:     ctx,
			cancel:  cancel,
			workers: make(chan chan Job, 1),
			results: make(chan Result, 1),
			metrics: NewMetrics(),
		}

		worker := &Worker{
			pool: pool,
			jobs: make(chan Job, 1),
		}

		Reset(func() {
			cancel()
		})

		Convey("It should process a job successfully", func() {
			worker.jobs <- Job{
				ID:    1,
				Batch: Batch{Count: 3},
				Fn:    func() (*Tally, error) { return NewTally(0), nil },
			}
			go worker.run(ctx)

			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case result := <-pool.results:
				So(result.Err, ShouldBeNil)
				So(result.JobID, ShouldEqual, 1)
				So(result.Tally, ShouldNotBeNil)
			}
			So(pool.metrics.ExportMetrics()["pairs_evaluated"], ShouldEqual, int64(3))
		})

		Convey("It should wrap a job error", func() {
			cause := errors.New("bad batch")
			worker.jobs <- Job{
				ID: 2,
				Fn: func() (*Tally, error) { return nil, cause },
			}
			go worker.run(ctx)

			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case result := <-pool.results:
				So(errors.Is(result.Err, cause), ShouldBeTrue)
				So(result.Tally, ShouldBeNil)
			}
			So(pool.metrics.ExportMetrics()["batch_failures"], ShouldEqual, int64(1))
		})

		Convey("It should treat a missing tally as a failure", func() {
			worker.jobs <- Job{
				ID: 3,
				Fn: func() (*Tally, error) { return nil, nil },
			}
			go worker.run(ctx)

			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case result := <-pool.results:
				So(result.Err, ShouldNotBeNil)
				So(result.Err.Error(), ShouldContainSubstring, "no tally")
			}
		})

		Convey("It should stop when the pool context ends", func() {
			done := make(chan struct{})
			go func() {
				worker.run(ctx)
				close(done)
			}()
			cancel()

			select {
			case <-time.After(2 * time.Second):
				t.Fatal(timeoutMsg)
			case <-done:
			}
		})
	})
}
