package market

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"simarket/internal/catalog"
	"simarket/internal/clock"
)

// State is the scheduler's current phase.
type State int32

const (
	StateIdle State = iota
	StateTicking
	StateBoundaryRecovery
)

func (s State) String() string {
	switch s {
	case StateTicking:
		return "ticking"
	case StateBoundaryRecovery:
		return "boundary-recovery"
	default:
		return "idle"
	}
}

// ClockSource provides the current game-clock reading.
type ClockSource interface {
	Now() clock.Reading
}

// Verifier runs the deferred post-boundary check against a pre-update
// snapshot. Guard is the production implementation.
type Verifier interface {
	Verify(pre map[string]float64, ledger *Ledger) int
}

// Notifier receives the recalculation signal, exactly once per applied
// batch.
type Notifier interface {
	BatchApplied(batch TickBatch)
}

// NotifierFunc is a function adapter for Notifier.
type NotifierFunc func(TickBatch)

func (f NotifierFunc) BatchApplied(b TickBatch) { f(b) }

// Notifiers fans one recalculation signal out to several consumers.
type Notifiers []Notifier

func (n Notifiers) BatchApplied(b TickBatch) {
	for _, sub := range n {
		sub.BatchApplied(b)
	}
}

// SchedulerConfig holds update scheduler configuration.
type SchedulerConfig struct {
	TickEvery   time.Duration // Timer period (default: 1s)
	MinInterval time.Duration // Throttle: minimum real time between applied ticks (default: 1.5s)
	VerifyDelay time.Duration // Delay before the post-boundary verification pass (default: 300ms)
}

// DefaultSchedulerConfig returns sensible defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickEvery:   time.Second,
		MinInterval: 1500 * time.Millisecond,
		VerifyDelay: 300 * time.Millisecond,
	}
}

// SchedulerDeps are the collaborators the scheduler drives.
type SchedulerDeps struct {
	Catalog   *catalog.Catalog
	Clock     ClockSource
	Events    <-chan clock.BoundaryEvent
	Economy   *Economy
	Generator *Generator
	Ledger    *Ledger
	Guard     Verifier
	Notifier  Notifier
}

// Scheduler is the control-flow backbone of the engine. A single goroutine
// owns all ledger writes: it ticks the whole catalog on a throttled timer,
// and eagerly on calendar-boundary events (market open/close, day rollover),
// following each boundary tick with a deferred verification pass.
type Scheduler struct {
	cfg    SchedulerConfig
	deps   SchedulerDeps
	logger *slog.Logger

	state        atomic.Int32
	lastTickNano atomic.Int64

	// prevStatus is owned by the run goroutine; boundary transitions are
	// detected by comparing stored status, not by re-deriving time twice.
	prevStatus map[catalog.Class]CalendarStatus

	timersMu     sync.Mutex
	verifyTimers map[*time.Timer]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates an update scheduler.
func NewScheduler(cfg SchedulerConfig, deps SchedulerDeps, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSchedulerConfig()
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = def.TickEvery
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.VerifyDelay <= 0 {
		cfg.VerifyDelay = def.VerifyDelay
	}
	return &Scheduler{
		cfg:          cfg,
		deps:         deps,
		logger:       logger,
		verifyTimers: make(map[*time.Timer]struct{}),
	}
}

// Start begins the scheduling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.prevStatus = CalendarSnapshot(s.deps.Clock.Now())

	s.wg.Add(1)
	go s.run()

	s.logger.Info("update scheduler started",
		"tick_every", s.cfg.TickEvery,
		"min_interval", s.cfg.MinInterval,
		"assets", s.deps.Catalog.Len(),
	)
	return nil
}

// Stop shuts the scheduler down cleanly: the timer stops and any in-flight
// deferred verification is abandoned. The ledger is never left with a
// partially applied batch because batches apply as one atomic swap.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	s.timersMu.Lock()
	for t := range s.verifyTimers {
		t.Stop()
	}
	s.verifyTimers = make(map[*time.Timer]struct{})
	s.timersMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("update scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the scheduler's current phase.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// LastTick returns when the last batch was applied, or the zero time.
func (s *Scheduler) LastTick() time.Time {
	nano := s.lastTickNano.Load()
	if nano == 0 {
		return time.Time{}
	}
	return time.Unix(0, nano)
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickEvery)
	defer ticker.Stop()

	events := s.deps.Events
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.timerTick()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleBoundary(ev)
		}
	}
}

// timerTick applies one batch unless the throttle window has not elapsed.
func (s *Scheduler) timerTick() {
	elapsed := time.Since(s.LastTick())
	if elapsed < s.cfg.MinInterval {
		s.logger.Debug("tick skipped inside throttle window", "elapsed", elapsed)
		return
	}
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateTicking)) {
		s.logger.Warn("tick refused, scheduler busy", "state", s.State())
		return
	}
	s.tick("timer")
	s.state.Store(int32(StateIdle))
}

// handleBoundary reacts to a clock boundary crossing. Day rollovers roll the
// macro state and always recover; hour crossings recover only when some
// class actually transitioned between open and closed.
func (s *Scheduler) handleBoundary(ev clock.BoundaryEvent) {
	if ev.Kind == clock.BoundaryDay {
		macro := s.deps.Economy.RollDay()
		s.logger.Info("day rollover",
			"date", ev.Reading.Date().Format("2006-01-02"),
			"trend", macro.Trend,
			"health", macro.Health,
		)
	}

	changed := s.noteCalendarTransitions(ev.Reading)
	if ev.Kind != clock.BoundaryDay && !changed {
		return
	}

	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateBoundaryRecovery)) {
		s.logger.Warn("boundary recovery refused, scheduler busy", "state", s.State())
		return
	}
	pre := s.deps.Ledger.Snapshot()
	s.tick("boundary-" + string(ev.Kind))
	s.scheduleVerify(pre)
	s.state.Store(int32(StateIdle))
}

// noteCalendarTransitions compares the calendar status of every class
// against the previous observation, logging and recording any open/close
// flips. Returns true when at least one class transitioned.
func (s *Scheduler) noteCalendarTransitions(reading clock.Reading) bool {
	statuses := CalendarSnapshot(reading)
	changed := false
	for class, status := range statuses {
		prev, ok := s.prevStatus[class]
		if ok && prev.Open != status.Open {
			changed = true
			s.logger.Info("calendar transition",
				"class", class,
				"open", status.Open,
				"reason", status.Reason,
			)
		}
	}
	s.prevStatus = statuses
	return changed
}

// tick computes and applies one batch. All assets in the batch observe the
// same macro snapshot and the same calendar snapshot.
func (s *Scheduler) tick(trigger string) {
	start := time.Now()
	macro := s.deps.Economy.Snapshot()
	reading := s.deps.Clock.Now()
	statuses := CalendarSnapshot(reading)
	tilt := HealthTilt(macro.Health)

	batch := TickBatch{
		ID:      uuid.New(),
		At:      start,
		Trigger: trigger,
		Ticks:   make([]PriceTick, 0, s.deps.Catalog.Len()),
	}
	for _, a := range s.deps.Catalog.All() {
		p := Parameters(a.Class, a.Tier, macro.Trend)
		p.DriftBias += tilt
		prev := s.deps.Ledger.Get(a.ID)
		next := s.deps.Generator.Next(prev, a, statuses[a.Class], p)
		batch.Ticks = append(batch.Ticks, PriceTick{AssetID: a.ID, Price: next})
	}

	seq := s.deps.Ledger.ApplyBatch(batch)
	s.lastTickNano.Store(time.Now().UnixNano())

	if s.deps.Notifier != nil {
		s.deps.Notifier.BatchApplied(batch)
	}

	s.logger.Info("tick batch applied",
		"trigger", trigger,
		"seq", seq,
		"assets", len(batch.Ticks),
		"trend", macro.Trend,
		"duration", time.Since(start),
	)
}

// scheduleVerify arms the deferred post-boundary verification pass. The
// delay catches races between the eager boundary tick and any batch already
// in flight when the boundary fired.
func (s *Scheduler) scheduleVerify(pre map[string]float64) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	var t *time.Timer
	t = time.AfterFunc(s.cfg.VerifyDelay, func() {
		s.timersMu.Lock()
		delete(s.verifyTimers, t)
		s.timersMu.Unlock()

		if restored := s.deps.Guard.Verify(pre, s.deps.Ledger); restored > 0 {
			s.logger.Warn("boundary verification restored prices", "restored", restored)
		}
	})
	s.verifyTimers[t] = struct{}{}
}
