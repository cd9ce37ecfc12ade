package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reading is a single observation of the game clock. HourFraction is the
// progress through the day on a 0-100 scale, mapped onto 24 hours.
type Reading struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Day          int     `json:"day"`
	HourFraction float64 `json:"hour_fraction"`
}

// Hour returns the hour of day (0-23) implied by the hour fraction. The
// epsilon keeps whole hours from truncating down on inexact fractions.
func (r Reading) Hour() int {
	h := int(r.HourFraction/100*24 + 1e-9)
	if h > 23 {
		h = 23
	}
	if h < 0 {
		h = 0
	}
	return h
}

// Weekday returns the day of week for the reading's date.
func (r Reading) Weekday() time.Weekday {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Date returns the reading's date at midnight UTC.
func (r Reading) Date() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

// BoundaryKind identifies which calendar boundary a clock event crossed.
type BoundaryKind string

const (
	BoundaryHour BoundaryKind = "hour"
	BoundaryDay  BoundaryKind = "day"
)

// BoundaryEvent is published every time the game clock crosses an hour or
// day boundary. Day events are emitted in addition to the hour event that
// caused the rollover.
type BoundaryEvent struct {
	Kind    BoundaryKind
	Reading Reading
}

// Config holds game clock configuration.
type Config struct {
	HourEvery time.Duration // Real time per game hour (default: 2s)
	StartDate time.Time     // Game start date (default: 2024-01-01, a Monday)
	StartHour int           // Hour of day at start (default: 9)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HourEvery: 2 * time.Second,
		StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		StartHour: 9,
	}
}

// GameClock advances in-game time and notifies subscribers of hour and day
// boundary crossings. It is the only source of calendar readings.
type GameClock struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	date time.Time
	hour int
	subs []chan BoundaryEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a game clock. A zero StartDate or HourEvery falls back to the
// defaults.
func New(cfg Config, logger *slog.Logger) *GameClock {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.HourEvery <= 0 {
		cfg.HourEvery = def.HourEvery
	}
	if cfg.StartDate.IsZero() {
		cfg.StartDate = def.StartDate
	}
	if cfg.StartHour < 0 || cfg.StartHour > 23 {
		cfg.StartHour = def.StartHour
	}
	return &GameClock{
		cfg:    cfg,
		logger: logger,
		date:   cfg.StartDate,
		hour:   cfg.StartHour,
	}
}

// Start begins advancing game time in the background.
func (c *GameClock) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("game clock started",
		"hour_every", c.cfg.HourEvery,
		"date", c.Now().Date().Format("2006-01-02"),
	)
	return nil
}

// Stop gracefully shuts down the clock.
func (c *GameClock) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("game clock stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *GameClock) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.HourEvery)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.AdvanceHours(1)
		}
	}
}

// Now returns the current clock reading.
func (c *GameClock) Now() Reading {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readingLocked()
}

func (c *GameClock) readingLocked() Reading {
	return Reading{
		Year:         c.date.Year(),
		Month:        int(c.date.Month()),
		Day:          c.date.Day(),
		HourFraction: float64(c.hour) / 24 * 100,
	}
}

// Subscribe returns a channel of boundary events. Events are dropped rather
// than blocking a slow subscriber.
func (c *GameClock) Subscribe() <-chan BoundaryEvent {
	ch := make(chan BoundaryEvent, 16)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// AdvanceHours moves the clock forward by n game hours, publishing an hour
// event per step and a day event on each midnight rollover.
func (c *GameClock) AdvanceHours(n int) {
	for i := 0; i < n; i++ {
		c.advanceOne()
	}
}

func (c *GameClock) advanceOne() {
	c.mu.Lock()
	c.hour++
	rolled := false
	if c.hour >= 24 {
		c.hour = 0
		c.date = c.date.AddDate(0, 0, 1)
		rolled = true
	}
	reading := c.readingLocked()
	subs := make([]chan BoundaryEvent, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	c.publish(subs, BoundaryEvent{Kind: BoundaryHour, Reading: reading})
	if rolled {
		c.publish(subs, BoundaryEvent{Kind: BoundaryDay, Reading: reading})
	}
}

func (c *GameClock) publish(subs []chan BoundaryEvent, ev BoundaryEvent) {
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			c.logger.Warn("dropping clock event for slow subscriber", "kind", ev.Kind)
		}
	}
}
