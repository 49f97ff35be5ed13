package sqladapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/better-auth/adaptercore/adapter"
)

// QueryStats holds cumulative call statistics for a StatsDriver.
type QueryStats struct {
	TotalCalls    atomic.Int64
	TotalDuration atomic.Int64 // nanoseconds
	SlowCalls     atomic.Int64
	Errors        atomic.Int64
}

// Stats returns a point-in-time snapshot.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalCalls:    s.TotalCalls.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowCalls:     s.SlowCalls.Load(),
		Errors:        s.Errors.Load(),
	}
}

// StatsSnapshot is an immutable copy of QueryStats for reporting.
type StatsSnapshot struct {
	TotalCalls    int64
	TotalDuration time.Duration
	SlowCalls     int64
	Errors        int64
}

// AvgCallDuration returns the mean duration across every recorded call.
func (s StatsSnapshot) AvgCallDuration() time.Duration {
	if s.TotalCalls == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalCalls)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("calls=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalCalls, s.TotalDuration, s.AvgCallDuration(), s.SlowCalls, s.Errors)
}

// SlowCallHook is invoked whenever a call exceeds the configured slow
// threshold.
type SlowCallHook func(ctx context.Context, method, model string, duration time.Duration)

// StatsDriver wraps an adapter.Driver, recording per-call latency and
// surfacing slow calls — the driver-level half of spec.md §7's
// observability story, sitting below the factory's four-phase trace.
type StatsDriver struct {
	adapter.Driver
	stats         *QueryStats
	mu            sync.RWMutex
	slowThreshold time.Duration
	slowHook      SlowCallHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a call counts as
// slow. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.slowThreshold = d }
}

// WithSlowCallHook registers a callback fired on every slow call.
func WithSlowCallHook(hook SlowCallHook) StatsOption {
	return func(s *StatsDriver) { s.slowHook = hook }
}

// WithSlowCallLog logs slow calls through log/slog, the teacher's
// structured-logging choice throughout this module.
func WithSlowCallLog() StatsOption {
	return WithSlowCallHook(func(_ context.Context, method, model string, d time.Duration) {
		slog.Warn("sqladapter: slow call", "method", method, "model", model, "duration", d)
	})
}

// NewStatsDriver wraps drv with call statistics.
func NewStatsDriver(drv adapter.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}, slowThreshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats exposes the accumulating statistics.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

func (d *StatsDriver) record(ctx context.Context, method, model string, start time.Time, err error) {
	duration := time.Since(start)
	d.stats.TotalCalls.Add(1)
	d.stats.TotalDuration.Add(int64(duration))
	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold, hook := d.slowThreshold, d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowCalls.Add(1)
		if hook != nil {
			hook(ctx, method, model, duration)
		}
	}
}

func (d *StatsDriver) Create(ctx context.Context, req adapter.CreateRequest) (adapter.Row, error) {
	start := time.Now()
	row, err := d.Driver.Create(ctx, req)
	d.record(ctx, "create", req.Model, start, err)
	return row, err
}

func (d *StatsDriver) Update(ctx context.Context, req adapter.UpdateRequest) (adapter.Row, bool, error) {
	start := time.Now()
	row, found, err := d.Driver.Update(ctx, req)
	d.record(ctx, "update", req.Model, start, err)
	return row, found, err
}

func (d *StatsDriver) UpdateMany(ctx context.Context, req adapter.UpdateRequest) (int, error) {
	start := time.Now()
	n, err := d.Driver.UpdateMany(ctx, req)
	d.record(ctx, "updateMany", req.Model, start, err)
	return n, err
}

func (d *StatsDriver) FindOne(ctx context.Context, req adapter.FindOneRequest) (adapter.Row, bool, error) {
	start := time.Now()
	row, found, err := d.Driver.FindOne(ctx, req)
	d.record(ctx, "findOne", req.Model, start, err)
	return row, found, err
}

func (d *StatsDriver) FindMany(ctx context.Context, req adapter.FindManyRequest) ([]adapter.Row, error) {
	start := time.Now()
	rows, err := d.Driver.FindMany(ctx, req)
	d.record(ctx, "findMany", req.Model, start, err)
	return rows, err
}

func (d *StatsDriver) Delete(ctx context.Context, req adapter.DeleteRequest) error {
	start := time.Now()
	err := d.Driver.Delete(ctx, req)
	d.record(ctx, "delete", req.Model, start, err)
	return err
}

func (d *StatsDriver) DeleteMany(ctx context.Context, req adapter.DeleteRequest) (int, error) {
	start := time.Now()
	n, err := d.Driver.DeleteMany(ctx, req)
	d.record(ctx, "deleteMany", req.Model, start, err)
	return n, err
}

func (d *StatsDriver) Count(ctx context.Context, req adapter.CountRequest) (int, error) {
	start := time.Now()
	n, err := d.Driver.Count(ctx, req)
	d.record(ctx, "count", req.Model, start, err)
	return n, err
}

// Transaction forwards to the wrapped driver's Transactional
// implementation when present, wrapping the inner driver passed to fn
// in its own StatsDriver so calls inside the transaction are recorded
// too.
func (d *StatsDriver) Transaction(ctx context.Context, fn func(adapter.Driver) error) error {
	t, ok := d.Driver.(adapter.Transactional)
	if !ok {
		return fn(d)
	}
	return t.Transaction(ctx, func(inner adapter.Driver) error {
		return fn(NewStatsDriver(inner, func(s *StatsDriver) {
			s.stats = d.stats
			s.slowThreshold = d.slowThreshold
			s.slowHook = d.slowHook
		}))
	})
}
