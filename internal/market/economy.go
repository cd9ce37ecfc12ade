package market

import (
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"
)

// Trend is the macro market direction biasing all price movement.
type Trend string

const (
	TrendBull   Trend = "bull"
	TrendBear   Trend = "bear"
	TrendStable Trend = "stable"
)

// MacroSnapshot is an immutable copy of the macro market state, taken once
// per tick batch so every asset in the batch sees the same macro view.
type MacroSnapshot struct {
	Trend  Trend   `json:"trend"`
	Health float64 `json:"health"`
}

const trendSwitchProb = 0.30

// Economy holds the macro market state: the trend and a 0-100 health score.
// The scheduler rolls it once per day boundary; everything else reads
// snapshots.
type Economy struct {
	mu     sync.Mutex
	trend  Trend
	health float64
	rand   *mathrand.Rand
	logger *slog.Logger
}

// NewEconomy creates an economy starting stable at health 50.
func NewEconomy(logger *slog.Logger) *Economy {
	return NewEconomyWithSeed(time.Now().UnixNano(), logger)
}

// NewEconomyWithSeed is NewEconomy with a deterministic random source.
func NewEconomyWithSeed(seed int64, logger *slog.Logger) *Economy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Economy{
		trend:  TrendStable,
		health: 50,
		rand:   mathrand.New(mathrand.NewSource(seed)),
		logger: logger,
	}
}

// Snapshot returns a consistent copy of the current macro state.
func (e *Economy) Snapshot() MacroSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MacroSnapshot{Trend: e.trend, Health: e.health}
}

// SetState overrides the macro state. Used by tests and demo seeding.
func (e *Economy) SetState(trend Trend, health float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.trend = trend
	e.health = clampHealth(health)
}

// RollDay advances the macro state by one game day: the trend may switch,
// and health drifts toward the trend with a little noise.
func (e *Economy) RollDay() MacroSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rand.Float64() < trendSwitchProb {
		old := e.trend
		e.trend = randomTrend(e.rand.Float64())
		if e.trend != old {
			e.logger.Info("market trend switched", "from", old, "to", e.trend)
		}
	}

	drift := 0.0
	switch e.trend {
	case TrendBull:
		drift = 3
	case TrendBear:
		drift = -3
	}
	e.health = clampHealth(e.health + drift + (e.rand.Float64()*8 - 4))

	return MacroSnapshot{Trend: e.trend, Health: e.health}
}

func randomTrend(seed float64) Trend {
	switch {
	case seed < 0.33:
		return TrendBear
	case seed < 0.66:
		return TrendStable
	default:
		return TrendBull
	}
}

func clampHealth(h float64) float64 {
	if h < 0 {
		return 0
	}
	if h > 100 {
		return 100
	}
	return h
}
