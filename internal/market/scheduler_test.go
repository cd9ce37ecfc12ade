package market

import (
	"context"
	"sync"
	"testing"
	"time"

	"simarket/internal/clock"
)

type fakeClock struct {
	mu sync.Mutex
	r  clock.Reading
}

func (f *fakeClock) Now() clock.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.r
}

func (f *fakeClock) set(r clock.Reading) {
	f.mu.Lock()
	f.r = r
	f.mu.Unlock()
}

type batchRecorder struct {
	mu      sync.Mutex
	batches []TickBatch
}

func (r *batchRecorder) BatchApplied(b TickBatch) {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *batchRecorder) triggers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.batches))
	for i, b := range r.batches {
		out[i] = b.Trigger
	}
	return out
}

func newTestScheduler(t *testing.T, cfg SchedulerConfig, fc *fakeClock, events chan clock.BoundaryEvent, rec *batchRecorder) (*Scheduler, *Ledger) {
	t.Helper()
	cat := testCatalog(t)
	ledger := NewLedger(cat, nil, nil)
	s := NewScheduler(cfg, SchedulerDeps{
		Catalog:   cat,
		Clock:     fc,
		Events:    events,
		Economy:   NewEconomyWithSeed(1, nil),
		Generator: NewGeneratorWithSeed(1, nil),
		Ledger:    ledger,
		Guard:     NewGuard(nil),
		Notifier:  rec,
	}, nil)
	return s, ledger
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("condition never met")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestTimerTicksAreThrottled(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)} // Monday midday, all markets open
	rec := &batchRecorder{}
	cfg := SchedulerConfig{
		TickEvery:   20 * time.Millisecond,
		MinInterval: 500 * time.Millisecond,
		VerifyDelay: time.Millisecond,
	}
	s, _ := newTestScheduler(t, cfg, fc, make(chan clock.BoundaryEvent), rec)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopScheduler(t, s)

	waitFor(t, 2*time.Second, func() bool { return rec.count() >= 1 })
	time.Sleep(200 * time.Millisecond)

	// Roughly ten timer firings landed inside the throttle window; only the
	// first may have applied.
	if got := rec.count(); got != 1 {
		t.Errorf("batches = %d, want 1 inside throttle window", got)
	}
}

func TestDayBoundaryTicksEagerly(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)}
	rec := &batchRecorder{}
	events := make(chan clock.BoundaryEvent, 1)
	cfg := SchedulerConfig{
		TickEvery:   time.Hour, // isolate boundary handling from the timer
		MinInterval: time.Millisecond,
		VerifyDelay: 10 * time.Millisecond,
	}
	s, ledger := newTestScheduler(t, cfg, fc, events, rec)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopScheduler(t, s)

	// Midnight rollover into Tuesday.
	fc.set(reading(2, 0))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryDay, Reading: reading(2, 0)}

	waitFor(t, 2*time.Second, func() bool { return rec.count() == 1 })
	if trig := rec.triggers()[0]; trig != "boundary-day" {
		t.Errorf("trigger = %q, want boundary-day", trig)
	}

	// The deferred verification leaves every tracked price positive.
	time.Sleep(50 * time.Millisecond)
	for id, price := range ledger.Snapshot() {
		if price <= 0 {
			t.Errorf("asset %s has price %.4f after boundary recovery", id, price)
		}
	}
}

func TestHourBoundaryTicksOnlyOnCalendarFlip(t *testing.T) {
	fc := &fakeClock{r: reading(1, 10)} // markets already open
	rec := &batchRecorder{}
	events := make(chan clock.BoundaryEvent, 2)
	cfg := SchedulerConfig{
		TickEvery:   time.Hour,
		MinInterval: time.Millisecond,
		VerifyDelay: time.Millisecond,
	}
	s, _ := newTestScheduler(t, cfg, fc, events, rec)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopScheduler(t, s)

	// Mid-session hour crossing: no class opens or closes, no batch.
	fc.set(reading(1, 11))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryHour, Reading: reading(1, 11)}
	time.Sleep(100 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Fatalf("mid-session hour crossing applied %d batches, want 0", got)
	}

	// Market close at 16:00 flips stocks, bonds and property to closed.
	fc.set(reading(1, 16))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryHour, Reading: reading(1, 16)}
	waitFor(t, 2*time.Second, func() bool { return rec.count() == 1 })
	if trig := rec.triggers()[0]; trig != "boundary-hour" {
		t.Errorf("trigger = %q, want boundary-hour", trig)
	}
}

func TestNotifierFiresOncePerBatch(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)}
	rec := &batchRecorder{}
	events := make(chan clock.BoundaryEvent, 1)
	cfg := SchedulerConfig{
		TickEvery:   time.Hour,
		MinInterval: time.Millisecond,
		VerifyDelay: time.Millisecond,
	}
	s, ledger := newTestScheduler(t, cfg, fc, events, rec)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopScheduler(t, s)

	fc.set(reading(2, 0))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryDay, Reading: reading(2, 0)}
	waitFor(t, 2*time.Second, func() bool { return rec.count() >= 1 })
	time.Sleep(50 * time.Millisecond)

	// One boundary, one batch, one signal covering the whole catalog.
	if got := rec.count(); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}
	rec.mu.Lock()
	ticks := len(rec.batches[0].Ticks)
	rec.mu.Unlock()
	if ticks != ledger.Len() {
		t.Errorf("batch covered %d assets, ledger tracks %d", ticks, ledger.Len())
	}
}

func TestSchedulerStopsCleanly(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)}
	rec := &batchRecorder{}
	cfg := SchedulerConfig{
		TickEvery:   10 * time.Millisecond,
		MinInterval: time.Millisecond,
		VerifyDelay: time.Millisecond,
	}
	s, _ := newTestScheduler(t, cfg, fc, make(chan clock.BoundaryEvent), rec)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool { return rec.count() >= 2 })

	stopScheduler(t, s)
	after := rec.count()
	time.Sleep(100 * time.Millisecond)
	if got := rec.count(); got != after {
		t.Errorf("batches kept applying after stop: %d -> %d", after, got)
	}
	if s.State() != StateIdle {
		t.Errorf("state after stop = %s, want idle", s.State())
	}
}

type verifyRecorder struct {
	mu    sync.Mutex
	calls []map[string]float64
}

func (v *verifyRecorder) Verify(pre map[string]float64, _ *Ledger) int {
	v.mu.Lock()
	v.calls = append(v.calls, pre)
	v.mu.Unlock()
	return 0
}

func (v *verifyRecorder) count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.calls)
}

func TestBoundaryVerificationRunsDeferred(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)}
	rec := &batchRecorder{}
	verifier := &verifyRecorder{}
	events := make(chan clock.BoundaryEvent, 1)

	cat := testCatalog(t)
	ledger := NewLedger(cat, nil, nil)
	ledger.Seed(map[string]float64{"AAA": 123.45})
	s := NewScheduler(SchedulerConfig{
		TickEvery:   time.Hour,
		MinInterval: time.Millisecond,
		VerifyDelay: 100 * time.Millisecond,
	}, SchedulerDeps{
		Catalog:   cat,
		Clock:     fc,
		Events:    events,
		Economy:   NewEconomyWithSeed(1, nil),
		Generator: NewGeneratorWithSeed(1, nil),
		Ledger:    ledger,
		Guard:     verifier,
		Notifier:  rec,
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer stopScheduler(t, s)

	fc.set(reading(2, 0))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryDay, Reading: reading(2, 0)}
	waitFor(t, 2*time.Second, func() bool { return rec.count() == 1 })

	// The eager tick applies immediately; verification waits for the delay.
	if got := verifier.count(); got != 0 {
		t.Fatalf("verification ran %d times before the delay elapsed", got)
	}
	waitFor(t, 2*time.Second, func() bool { return verifier.count() == 1 })

	verifier.mu.Lock()
	pre := verifier.calls[0]
	verifier.mu.Unlock()
	// The snapshot handed to verification predates the boundary tick.
	if pre["AAA"] != 123.45 {
		t.Errorf("verification snapshot AAA = %v, want pre-boundary 123.45", pre["AAA"])
	}
}

func TestStopCancelsPendingVerification(t *testing.T) {
	fc := &fakeClock{r: reading(1, 12)}
	rec := &batchRecorder{}
	verifier := &verifyRecorder{}
	events := make(chan clock.BoundaryEvent, 1)

	cat := testCatalog(t)
	s := NewScheduler(SchedulerConfig{
		TickEvery:   time.Hour,
		MinInterval: time.Millisecond,
		VerifyDelay: 200 * time.Millisecond,
	}, SchedulerDeps{
		Catalog:   cat,
		Clock:     fc,
		Events:    events,
		Economy:   NewEconomyWithSeed(1, nil),
		Generator: NewGeneratorWithSeed(1, nil),
		Ledger:    NewLedger(cat, nil, nil),
		Guard:     verifier,
		Notifier:  rec,
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	fc.set(reading(2, 0))
	events <- clock.BoundaryEvent{Kind: clock.BoundaryDay, Reading: reading(2, 0)}
	waitFor(t, 2*time.Second, func() bool { return rec.count() == 1 })

	stopScheduler(t, s)
	time.Sleep(300 * time.Millisecond)
	if got := verifier.count(); got != 0 {
		t.Errorf("verification ran %d times after stop", got)
	}
}

func stopScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
