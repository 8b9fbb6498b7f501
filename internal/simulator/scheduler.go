// scheduler.go implements the Simulator, the component that owns every timer in the
// activity-fabrication engine: the steady event cadence, the self-perpetuating spike
// on/off cycle, and the retention cleanup loop. All mutable scheduling state (the spike
// flag, the stop channel) lives on the struct; nothing here is package-global.
package simulator

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decoydrop/decoydrop/internal/safego"
	"github.com/decoydrop/decoydrop/internal/telemetry"
)

// Default timing parameters. Only the event cadence and the retention horizon
// are operator-configurable; the spike and cleanup timings are fixed behaviour
// but kept as struct fields so tests can compress them.
const (
	defaultEventsPerSecond = 2
	defaultRetentionDays   = 30

	defaultSpikeDelayMin  = 60 * time.Second
	defaultSpikeDelayMax  = 360 * time.Second
	defaultSpikeWindowMin = 15 * time.Second
	defaultSpikeWindowMax = 45 * time.Second

	defaultCleanupStartupDelay = 10 * time.Second
	defaultCleanupInterval     = time.Hour

	defaultAttackWindow = 50 * time.Second
)

// Simulator fabricates a continuous stream of plausible audit events against
// the event store, flips into spike mode on a randomized schedule, and retires
// events past the retention horizon. A single instance is assumed per process.
type Simulator struct {
	users  UserDirectory
	files  FileLinkDirectory
	events EventStore

	eventsPerSecond int
	retentionDays   int

	spikeDelayMin  time.Duration
	spikeDelayMax  time.Duration
	spikeWindowMin time.Duration
	spikeWindowMax time.Duration

	cleanupStartupDelay time.Duration
	cleanupInterval     time.Duration

	attackWindow time.Duration

	// spike is written by the spike loop and read by the generation loop and
	// attack bursts, all separate goroutines.
	spike atomic.Bool

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a Simulator writing to events and attributing activity to the
// reference data behind users and files.
// eventsPerSecond controls the steady cadence (default 2); retentionDays
// controls the cleanup horizon (default 30).
func New(users UserDirectory, files FileLinkDirectory, events EventStore, eventsPerSecond, retentionDays int) *Simulator {
	if eventsPerSecond <= 0 {
		eventsPerSecond = defaultEventsPerSecond
	}
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &Simulator{
		users:  users,
		files:  files,
		events: events,

		eventsPerSecond: eventsPerSecond,
		retentionDays:   retentionDays,

		spikeDelayMin:  defaultSpikeDelayMin,
		spikeDelayMax:  defaultSpikeDelayMax,
		spikeWindowMin: defaultSpikeWindowMin,
		spikeWindowMax: defaultSpikeWindowMax,

		cleanupStartupDelay: defaultCleanupStartupDelay,
		cleanupInterval:     defaultCleanupInterval,

		attackWindow: defaultAttackWindow,

		stopChan: make(chan struct{}),
	}
}

// Spiking reports whether a spike window is currently active.
func (s *Simulator) Spiking() bool {
	return s.spike.Load()
}

// Start launches the generation, spike, and cleanup loops. Call once at
// process boot. All loops exit when ctx is cancelled or Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	slog.Info("simulator started",
		"events_per_second", s.eventsPerSecond,
		"retention_days", s.retentionDays)

	s.wg.Add(3)
	safego.Go(func() {
		defer s.wg.Done()
		s.generationLoop(ctx)
	})
	safego.Go(func() {
		defer s.wg.Done()
		s.spikeLoop(ctx)
	})
	safego.Go(func() {
		defer s.wg.Done()
		s.cleanupLoop(ctx)
	})
}

// Stop cancels the generation, spike, and cleanup loops and waits for them to
// exit. An attack burst still in flight aborts at its next spacing check but
// is not waited on; an event write already handed to the store is allowed to
// complete. Safe to call more than once.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	slog.Info("simulator stopped")
}

// generationLoop emits one synthetic event per tick at the configured cadence.
// A failed write is logged and the loop keeps ticking; the next tick naturally
// retries the operation class.
func (s *Simulator) generationLoop(ctx context.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	interval := time.Second / time.Duration(s.eventsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateOne(ctx, rng)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// generateOne samples reference data, synthesizes an event for the current
// mode, and hands the write to the store. The write runs on its own goroutine
// so a slow store never delays the next tick; consecutive writes may complete
// out of order, which is fine because events are timestamped at creation.
func (s *Simulator) generateOne(ctx context.Context, rng *rand.Rand) {
	users, err := s.users.RecentUsers(ctx, referenceWindow)
	if err != nil {
		slog.Error("simulator: failed to sample users", "error", err)
		return
	}
	files, err := s.files.RecentFileLinks(ctx, referenceWindow)
	if err != nil {
		slog.Error("simulator: failed to sample file links", "error", err)
		return
	}

	event := synthesize(rng, s.spike.Load(), users, files)
	if event == nil {
		telemetry.SimulatorSkipsTotal.Inc()
		return
	}

	safego.Go(func() {
		if err := s.events.CreateEvent(ctx, event); err != nil {
			slog.Error("simulator: failed to persist event",
				"event_type", event.EventType, "error", err)
			return
		}
		telemetry.SimulatorEventsTotal.WithLabelValues(event.EventType).Inc()
	})
}

// spikeLoop arms a one-shot timer with a random delay; when it fires, spike
// mode turns on for a random window, then the next delay is armed. The cycle
// perpetuates itself for the life of the process.
func (s *Simulator) spikeLoop(ctx context.Context) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		delay := randomDuration(rng, s.spikeDelayMin, s.spikeDelayMax)
		select {
		case <-time.After(delay):
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}

		window := randomDuration(rng, s.spikeWindowMin, s.spikeWindowMax)
		s.spike.Store(true)
		telemetry.SimulatorSpikesTotal.Inc()
		slog.Info("simulator: activity spike started", "window", window)

		select {
		case <-time.After(window):
		case <-s.stopChan:
			s.spike.Store(false)
			return
		case <-ctx.Done():
			s.spike.Store(false)
			return
		}

		s.spike.Store(false)
		slog.Info("simulator: activity spike ended")
	}
}

// cleanupLoop runs an initial retention sweep shortly after startup, then
// repeats on a fixed interval. Sweep failures are logged and the ticker keeps
// running.
func (s *Simulator) cleanupLoop(ctx context.Context) {
	select {
	case <-time.After(s.cleanupStartupDelay):
	case <-s.stopChan:
		return
	case <-ctx.Done():
		return
	}

	s.runCleanup(ctx)

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCleanup(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCleanup deletes events older than the retention horizon.
func (s *Simulator) runCleanup(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	deleted, err := s.events.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("simulator: retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		telemetry.SimulatorRetentionDeletedTotal.Add(float64(deleted))
		slog.Info("simulator: retention sweep removed events",
			"deleted", deleted, "cutoff", cutoff)
	}
}

// randomDuration returns a uniformly random duration in [min, max].
func randomDuration(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)+1))
}

// RetentionCutoff returns the oldest timestamp the retention policy keeps,
// relative to now.
func (s *Simulator) RetentionCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.retentionDays)
}

// Status is a point-in-time snapshot of the simulator exposed to operators.
type Status struct {
	EventsPerSecond int  `json:"events_per_second"`
	RetentionDays   int  `json:"retention_days"`
	Spiking         bool `json:"spiking"`
}

// CurrentStatus reports the simulator's configuration and spike state.
func (s *Simulator) CurrentStatus() Status {
	return Status{
		EventsPerSecond: s.eventsPerSecond,
		RetentionDays:   s.retentionDays,
		Spiking:         s.spike.Load(),
	}
}
