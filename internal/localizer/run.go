package localizer

import (
	"context"
	"errors"
	"time"

	"github.com/banshee-data/uwbpose/internal/monitoring"
	"github.com/banshee-data/uwbpose/internal/pose"
	"github.com/banshee-data/uwbpose/internal/pozyx"
	"github.com/banshee-data/uwbpose/internal/timeutil"
)

// Poller produces one sample per call. *Session implements it.
type Poller interface {
	Poll() (PoseSample, pozyx.Status)
}

// Sink receives every published pose. *posebus.Bus implements it.
type Sink interface {
	Publish(pose.Stamped)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(pose.Stamped)

func (f SinkFunc) Publish(p pose.Stamped) { f(p) }

// DefaultFrameID is stamped on poses when Runner.FrameID is empty.
const DefaultFrameID = "uwb"

// Runner polls repeatedly and publishes each sample. Failed polls are
// published too, with their status; there is no retry or backoff.
type Runner struct {
	Session Poller
	Sink    Sink
	// Interval between polls; zero polls back to back.
	Interval time.Duration
	// Cycles stops the runner after that many polls; zero runs until ctx ends.
	Cycles  int
	Clock   timeutil.Clock
	FrameID string
	Metrics *monitoring.Collector
}

// Run polls until ctx is cancelled or Cycles polls have been made. It
// returns nil after the last cycle and ctx.Err() on cancellation. ctx is
// checked between polls only.
func (r *Runner) Run(ctx context.Context) error {
	if r.Session == nil || r.Sink == nil {
		return errors.New("runner needs a session and a sink")
	}
	clock := r.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	frame := r.FrameID
	if frame == "" {
		frame = DefaultFrameID
	}

	var tick <-chan time.Time
	if r.Interval > 0 {
		t := clock.NewTicker(r.Interval)
		defer t.Stop()
		tick = t.C()
	}

	for n := 0; r.Cycles <= 0 || n < r.Cycles; n++ {
		if n > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		start := clock.Now()
		sample, st := r.Session.Poll()
		r.Metrics.ObservePoll(outcome(st), clock.Since(start))

		r.Sink.Publish(pose.Stamped{
			Header: pose.Header{Seq: uint64(n) + 1, Stamp: start, FrameID: frame},
			Pose:   pose.FromSample(sample.Position, sample.Orientation),
			Status: st.String(),
		})
	}
	return nil
}

func outcome(st pozyx.Status) string {
	switch {
	case st.OK():
		return monitoring.OutcomeSuccess
	case errors.Is(Classify(st), ErrPositioningTimeout):
		return monitoring.OutcomeTimeout
	default:
		return monitoring.OutcomeFailure
	}
}
