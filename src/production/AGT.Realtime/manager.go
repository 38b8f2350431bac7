// Package realtime delivers live snapshots of sensor sets and reading
// series to subscribers. Every delivery is a complete snapshot, never a
// delta, so a later delivery always fully supersedes an earlier one.
package realtime

import (
	"context"
	"sync"
	"time"

	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	telemetry "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Telemetry"
)

// DefaultSeriesWindow is the reading-series page size when the caller
// does not ask for one (roughly 24h at a 30-minute cadence).
const DefaultSeriesWindow = 48

// Principal identifies the subscriber. A zero principal is an
// anonymous caller and receives the unauthenticated contract: one empty
// snapshot plus an auth-kind error.
type Principal struct {
	UserID string
}

// Source provides snapshots of the watched sets and change
// notification channels. A watch channel delivers a signal per
// (coalesced) underlying change and closes when the feed dies or its
// context ends.
type Source interface {
	ListFarmSensors(ctx context.Context, farmID string) ([]agtmodels.Sensor, error)
	LatestReadings(ctx context.Context, sensorID string, window int) ([]agtmodels.Reading, error)
	WatchFarmSensors(ctx context.Context, farmID string) (<-chan struct{}, error)
	WatchSensorReadings(ctx context.Context, sensorID string) (<-chan struct{}, error)
}

// CancelFunc releases a subscription. Safe to call more than once; no
// callback is invoked after the first call returns.
type CancelFunc func()

// Manager owns active subscriptions. All callbacks for one
// subscription are invoked sequentially.
type Manager struct {
	source Source
	logger *logger.Logger
	now    func() time.Time
}

func NewManager(source Source, log *logger.Logger) *Manager {
	return &Manager{source: source, logger: log, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SubscribeFarmSensors streams the normalized sensor set of a farm.
// onData receives the full current set immediately and after every
// change.
func (m *Manager) SubscribeFarmSensors(
	principal Principal,
	farmID string,
	onData func([]agtmodels.SensorView),
	onError func(error),
) CancelFunc {
	if principal.UserID == "" {
		onData([]agtmodels.SensorView{})
		onError(agtmodels.E(agtmodels.KindUnauthenticated, "not signed in"))
		return func() {}
	}

	sub := newSubscription()
	go m.run(sub, func(ctx context.Context) (<-chan struct{}, error) {
		return m.source.WatchFarmSensors(ctx, farmID)
	}, func(ctx context.Context) error {
		sensors, err := m.source.ListFarmSensors(ctx, farmID)
		if err != nil {
			return err
		}
		views := telemetry.Views(m.now(), sensors)
		sub.deliver(func() { onData(views) })
		return nil
	}, onError)

	return sub.cancel
}

// SubscribeSensorSeries streams the chart-ready reading series of one
// sensor, windowSize points at most.
func (m *Manager) SubscribeSensorSeries(
	principal Principal,
	sensorID string,
	windowSize int,
	onData func([]agtmodels.ReadingPoint),
	onError func(error),
) CancelFunc {
	if principal.UserID == "" {
		onData([]agtmodels.ReadingPoint{})
		onError(agtmodels.E(agtmodels.KindUnauthenticated, "not signed in"))
		return func() {}
	}
	if windowSize <= 0 {
		windowSize = DefaultSeriesWindow
	}

	sub := newSubscription()
	go m.run(sub, func(ctx context.Context) (<-chan struct{}, error) {
		return m.source.WatchSensorReadings(ctx, sensorID)
	}, func(ctx context.Context) error {
		readings, err := m.source.LatestReadings(ctx, sensorID, windowSize)
		if err != nil {
			return err
		}
		points := telemetry.SeriesPoints(readings)
		sub.deliver(func() { onData(points) })
		return nil
	}, onError)

	return sub.cancel
}

// run drives one subscription: initial snapshot, then one snapshot per
// change signal, until cancellation or feed death.
func (m *Manager) run(
	sub *subscription,
	watch func(context.Context) (<-chan struct{}, error),
	emit func(context.Context) error,
	onError func(error),
) {
	changes, err := watch(sub.ctx)
	if err != nil {
		sub.deliver(func() { onError(agtmodels.Wrap(agtmodels.KindUnavailable, "subscription failed", err)) })
		return
	}

	if err := emit(sub.ctx); err != nil {
		sub.deliver(func() { onError(err) })
		return
	}

	for range changes {
		if err := emit(sub.ctx); err != nil {
			sub.deliver(func() { onError(err) })
			return
		}
	}

	// Channel closed. If we were not cancelled, the feed died under us.
	if sub.ctx.Err() == nil {
		sub.deliver(func() { onError(agtmodels.E(agtmodels.KindUnavailable, "subscription feed closed")) })
	}
}

// subscription pairs a context with a cancellation guard. The mutex
// makes "no callback after cancel returns" a hard guarantee even when a
// snapshot is in flight at cancellation time.
type subscription struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	mu        sync.Mutex
	cancelled bool
}

func newSubscription() *subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &subscription{ctx: ctx, ctxCancel: cancel}
}

func (s *subscription) deliver(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	fn()
}

func (s *subscription) cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	s.ctxCancel()
}
