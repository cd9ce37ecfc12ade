package market

import (
	"log/slog"
	"math"
	mathrand "math/rand"
	"sync"
	"time"

	"simarket/internal/catalog"
)

// Exponential smoothing weight for the freshly sampled price. The remainder
// comes from the previous price, so a single tick never jumps the full move.
const smoothingNew = 0.82

// Generator produces the next price sample for an asset. It owns the only
// random source used for price movement, guarded for concurrent callers.
type Generator struct {
	mu     sync.Mutex
	rand   *mathrand.Rand
	logger *slog.Logger
}

// NewGenerator creates a generator seeded from the wall clock.
func NewGenerator(logger *slog.Logger) *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano(), logger)
}

// NewGeneratorWithSeed is NewGenerator with a deterministic seed.
func NewGeneratorWithSeed(seed int64, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		rand:   mathrand.New(mathrand.NewSource(seed)),
		logger: logger,
	}
}

func (g *Generator) nextFloat() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rand.Float64()
}

// Next computes the asset's next price from its previous price, the calendar
// status of its class, and the movement parameters for this batch.
//
// A closed market produces no price discovery: the previous price is
// returned unchanged, to the exact bit. A missing or invalid previous price
// falls back to the base price before any movement is applied. The result is
// never NaN, zero, or below the class floor.
func (g *Generator) Next(prev float64, asset catalog.Asset, status CalendarStatus, p Params) float64 {
	if math.IsNaN(prev) || math.IsInf(prev, 0) || prev <= 0 {
		prev = asset.BasePrice
	}
	if asset.Class.CalendarBound() && !status.Open {
		return prev
	}

	r := (2*g.nextFloat() - 1) * p.VarianceFactor
	candidate := prev * (1 + r + p.DriftBias)

	floor := asset.Floor()
	if candidate < floor {
		candidate = floor
	}

	next := smoothingNew*candidate + (1-smoothingNew)*prev
	next = roundTo(next, asset.Decimals())

	if math.IsNaN(next) || next <= 0 || next < floor {
		g.logger.Warn("invalid price sample clamped to floor",
			"asset", asset.ID,
			"sample", next,
			"floor", floor,
		)
		next = roundUpTo(floor, asset.Decimals())
	}
	return next
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// roundUpTo keeps floor clamps from rounding down to zero on tiny prices.
func roundUpTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Ceil(v*pow) / pow
}
