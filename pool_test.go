package qshadow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// jobFeed hands out count jobs, each tallying one pair with the given
// same/flip split, with fail deciding which job errors.
func jobFeed(count int, fail func(id int) error) func() (Job, bool) {
	id := 0
	return func() (Job, bool) {
		if id == count {
			return Job{}, false
		}
		current := id
		id++
		return Job{
			ID:    current,
			Batch: Batch{Count: 1},
			Fn: func() (*Tally, error) {
				if err := fail(current); err != nil {
					return nil, err
				}
				t := NewTally(1)
				t.counts[tallyKey{same: 1}]++
				return t, nil
			},
		}, true
	}
}

func TestQuantumPool(t *testing.T) {
	Convey("Given a new pool", t, func(c C) {
		ctx, cancel := context.WithCancel(context.Background())
		q := NewQ(ctx, 3, &Config{QueueDepth: 2})

		Reset(func() {
			q.Close()
			cancel()
		})

		Convey("When reducing jobs that all succeed", func(c C) {
			into := NewTally(1)
			err := q.MapReduce(jobFeed(50, func(int) error { return nil }), into)

			c.So(err, ShouldBeNil)
			c.So(into.Pairs(), ShouldEqual, 50)
			c.So(into.Value(), ShouldEqual, 250.0)

			stats := q.Metrics().ExportMetrics()
			c.So(stats["batches_scheduled"], ShouldEqual, int64(50))
			c.So(stats["batches_completed"], ShouldEqual, int64(50))
			c.So(stats["queue_waits"], ShouldEqual, int64(50))
		})

		Convey("When one job fails", func(c C) {
			boom := errors.New("boom")
			into := NewTally(1)
			err := q.MapReduce(jobFeed(40, func(id int) error {
				if id == 7 {
					return boom
				}
				return nil
			}), into)

			c.So(errors.Is(err, boom), ShouldBeTrue)
			c.So(err.Error(), ShouldContainSubstring, "job 7 failed")
		})

		Convey("When one job panics", func(c C) {
			into := NewTally(1)
			err := q.MapReduce(jobFeed(10, func(id int) error {
				if id == 3 {
					panic("kernel exploded")
				}
				return nil
			}), into)

			c.So(err, ShouldNotBeNil)
			c.So(err.Error(), ShouldContainSubstring, "panicked")
		})

		Convey("When a failed run is torn down", func(c C) {
			var calls atomic.Int64
			feed := jobFeed(1000, func(id int) error {
				if id == 0 {
					return errors.New("first batch failed")
				}
				return nil
			})
			next := func() (Job, bool) {
				calls.Add(1)
				return feed()
			}

			c.So(q.MapReduce(next, NewTally(1)), ShouldNotBeNil)
			q.Close()

			settled := calls.Load()
			time.Sleep(20 * time.Millisecond)
			c.So(calls.Load(), ShouldEqual, settled)
		})

		Convey("When there is nothing to do", func(c C) {
			into := NewTally(1)
			c.So(q.MapReduce(jobFeed(0, nil), into), ShouldBeNil)
			c.So(into.Pairs(), ShouldEqual, 0)
		})

		Convey("When the pool has been closed", func(c C) {
			q.Close()
			c.So(q.Schedule(Job{}), ShouldEqual, ErrPoolClosed)
			c.So(q.Metrics().ExportMetrics()["worker_count"], ShouldEqual, 0)
		})
	})

	Convey("Given a pool whose queue stays full", t, func(c C) {
		q := NewQ(context.Background(), 1, &Config{
			QueueDepth:        1,
			SchedulingTimeout: 20 * time.Millisecond,
		})
		block := make(chan struct{})

		Reset(func() {
			close(block)
			q.Close()
		})

		slow := Job{Fn: func() (*Tally, error) {
			<-block
			return NewTally(0), nil
		}}

		Convey("Scheduling should time out instead of hanging", func(c C) {
			var err error
			for i := 0; i < 5 && err == nil; i++ {
				slow.ID = i
				err = q.Schedule(slow)
			}
			c.So(err, ShouldNotBeNil)
			c.So(err.Error(), ShouldContainSubstring, "scheduling timeout")
		})
	})
}
