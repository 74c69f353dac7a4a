package rollupz

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// driverState models the AggregationCycleDriver state machine (§4.9):
//
//	NotStarted -> Running -> ShutdownRequested -> ShutdownCompleted -> Disposed
//
// ShutdownCompleted and Disposed are given distinct values (resolving the
// Open Question in spec.md §9) and both are treated as terminal.
type driverState int32

const (
	stateNotStarted driverState = iota
	stateRunning
	stateShutdownRequested
	stateShutdownCompleted
	stateDisposed
)

func (s driverState) terminal() bool {
	return s == stateShutdownCompleted || s == stateDisposed
}

// shutdownPollSchedule is the cyclic, exponentially-widening delay schedule
// a Shutdown caller polls on while waiting for the loop goroutine to exit.
var shutdownPollSchedule = []time.Duration{
	1 * time.Millisecond, 1 * time.Millisecond, 1 * time.Millisecond,
	25 * time.Millisecond, 50 * time.Millisecond, 100 * time.Millisecond, 500 * time.Millisecond,
}

// AggregationCycleDriver runs a dedicated goroutine that wakes at each
// aggregation period boundary and invokes the CollectionManager's
// swap-and-submit cycle (§4.9). It never calls Collect and never shares
// stacks with producers.
type AggregationCycleDriver struct {
	config  CollectionConfig
	manager *CollectionManager
	clock   clockz.Clock
	logger  *slog.Logger

	state atomic.Int32
	wake  chan struct{} // auto-reset event, capacity 1
	done  chan struct{} // closed once the loop goroutine exits
}

// DriverOption configures an AggregationCycleDriver at construction time.
type DriverOption func(*AggregationCycleDriver)

// WithClock overrides the driver's time source — tests wire a
// clockz.FakeClock for deterministic slot alignment.
func WithClock(c clockz.Clock) DriverOption {
	return func(d *AggregationCycleDriver) { d.clock = c }
}

// WithLogger overrides the logger used for caught iteration errors.
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *AggregationCycleDriver) { d.logger = l }
}

// NewAggregationCycleDriver validates cfg and constructs a driver bound to
// manager. The driver does not start its goroutine until Start is called.
func NewAggregationCycleDriver(cfg CollectionConfig, manager *CollectionManager, opts ...DriverOption) (*AggregationCycleDriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &AggregationCycleDriver{
		config:  cfg,
		manager: manager,
		clock:   clockz.RealClock,
		logger:  slog.Default(),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.state.Store(int32(stateNotStarted))
	return d, nil
}

// Start transitions NotStarted -> Running and spawns the dedicated worker
// goroutine. Returns a MisuseError if the driver was already started.
func (d *AggregationCycleDriver) Start() error {
	if !d.state.CompareAndSwap(int32(stateNotStarted), int32(stateRunning)) {
		return &MisuseError{Reason: "aggregation cycle driver already started"}
	}
	go d.run()
	return nil
}

func (d *AggregationCycleDriver) run() {
	defer close(d.done)

	for driverState(d.state.Load()) == stateRunning {
		now := d.clock.Now()
		target := d.nextTarget(now)
		wait := target.Sub(now)
		if wait < time.Millisecond {
			wait = time.Millisecond
		}

		select {
		case <-d.clock.After(wait):
		case <-d.wake:
		}

		if driverState(d.state.Load()) != stateRunning {
			break
		}

		actual := d.clock.Now()
		var rounded time.Time
		if absDuration(actual.Sub(target)) <= 1500*time.Millisecond {
			rounded = target
		} else {
			rounded = actual.Truncate(time.Second)
		}
		d.runIteration(rounded)
	}

	d.state.Store(int32(stateShutdownCompleted))
}

// runIteration invokes the manager's cycle step, recovering from a panic so
// a single bad iteration never kills the loop (§4.9 step 4, §7's
// TransientInternalError policy).
func (d *AggregationCycleDriver) runIteration(rounded time.Time) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("aggregation cycle iteration failed", "panic", r, "period_start", rounded)
		}
	}()
	tickNow := d.clock.Now().UnixMilli()
	d.manager.RunCycle(rounded, tickNow)
}

// nextTarget computes the next slot-aligned cycle boundary per §4.9 step 1.
func (d *AggregationCycleDriver) nextTarget(now time.Time) time.Time {
	period := time.Duration(d.config.AggregationPeriodLengthSeconds) * time.Second
	p := d.config.AggregationPeriodLengthSeconds

	var target time.Time
	if p < 60 {
		slotSec := (now.Second() / p) * p
		base := now.Truncate(time.Minute)
		target = base.Add(time.Duration(slotSec) * time.Second).Add(period)
	} else {
		base := now.Truncate(time.Minute)
		target = base.Add(period)
	}

	if target.Sub(now) <= minInterval(p) {
		target = target.Add(period)
	}
	return target
}

// minInterval is the "too short" threshold from §4.9 step 1 below which the
// driver extends the first interval by another full period.
func minInterval(periodSeconds int) time.Duration {
	switch {
	case periodSeconds <= 5:
		return 1 * time.Second
	case periodSeconds <= 10:
		return 2 * time.Second
	case periodSeconds <= 60:
		return 5 * time.Second
	default:
		return 15 * time.Second
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Shutdown requests the loop exit and blocks until it has, or ctx is done.
// Calling Shutdown on a driver that was never started disposes it directly.
func (d *AggregationCycleDriver) Shutdown(ctx context.Context) error {
	if !d.state.CompareAndSwap(int32(stateRunning), int32(stateShutdownRequested)) {
		switch driverState(d.state.Load()) {
		case stateNotStarted:
			d.state.CompareAndSwap(int32(stateNotStarted), int32(stateDisposed))
			return nil
		case stateShutdownCompleted, stateDisposed:
			return nil
		}
		// Another goroutine already requested shutdown; fall through to poll.
	} else {
		select {
		case d.wake <- struct{}{}:
		default:
		}
	}

	for i := 0; ; i++ {
		if driverState(d.state.Load()).terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.done:
		case <-d.clock.After(shutdownPollSchedule[i%len(shutdownPollSchedule)]):
		}
	}
}

// Dispose joins the loop goroutine and transitions ShutdownCompleted ->
// Disposed, per the Design Notes' explicit-shutdown-before-disposal
// guidance. Safe to call only after Shutdown has returned.
func (d *AggregationCycleDriver) Dispose() {
	if driverState(d.state.Load()) == stateDisposed {
		return // never started, or already disposed
	}
	<-d.done
	d.state.CompareAndSwap(int32(stateShutdownCompleted), int32(stateDisposed))
}

// State returns the driver's current state, for tests and diagnostics.
func (d *AggregationCycleDriver) State() driverState {
	return driverState(d.state.Load())
}
