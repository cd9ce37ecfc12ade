package market

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Guard is the safety net run after boundary-crossing updates. Calendar
// transitions are exactly where naive re-initialization could replace a
// tracked price with a default, so the guard compares the ledger against a
// pre-update snapshot and writes back anything that was dropped.
type Guard struct {
	logger *slog.Logger
}

// NewGuard creates a persistence guard.
func NewGuard(logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{logger: logger}
}

// Verify restores every asset present in the pre-update snapshot but now
// missing or non-positive in the ledger, and returns the number of
// restorations. Restores go through ApplyBatch like any other write.
func (g *Guard) Verify(pre map[string]float64, ledger *Ledger) int {
	batch := TickBatch{ID: uuid.New(), At: time.Now(), Trigger: "guard-restore"}
	for id, price := range pre {
		if price <= 0 {
			continue
		}
		rec, ok := ledger.Record(id)
		if ok && rec.Price > 0 {
			continue
		}
		g.logger.Warn("restoring dropped price after boundary transition",
			"asset", id,
			"price", price,
		)
		batch.Ticks = append(batch.Ticks, PriceTick{AssetID: id, Price: price})
	}
	if len(batch.Ticks) == 0 {
		return 0
	}
	ledger.ApplyBatch(batch)
	return len(batch.Ticks)
}
