package market

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"simarket/internal/catalog"
)

// PriceRecord is the ledger's canonical entry for one asset.
type PriceRecord struct {
	AssetID   string    `json:"asset_id"`
	Price     float64   `json:"price"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceTick is one (asset, new price) pair inside a batch.
type PriceTick struct {
	AssetID string
	Price   float64
}

// TickBatch is the ephemeral unit of work produced by one scheduler
// invocation and applied atomically to the ledger.
type TickBatch struct {
	ID      uuid.UUID
	At      time.Time
	Trigger string
	Ticks   []PriceTick
}

// Holdings is the owned-assets collaborator: it supplies the last known
// price of an owned position for the ledger's read fallback chain.
type Holdings interface {
	LastKnown(assetID string) (float64, bool)
}

// Ledger is the process-wide source of truth for current prices. Writers go
// through ApplyBatch only; readers get a consistent view with no lock via an
// atomic swap of the whole map.
type Ledger struct {
	cat      *catalog.Catalog
	holdings Holdings
	logger   *slog.Logger

	mu   sync.Mutex // serializes writers
	view atomic.Pointer[map[string]PriceRecord]
	seq  atomic.Uint64
}

// NewLedger creates an empty ledger over the given catalog. holdings may be
// nil when no portfolio collaborator exists.
func NewLedger(cat *catalog.Catalog, holdings Holdings, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{cat: cat, holdings: holdings, logger: logger}
	empty := make(map[string]PriceRecord)
	l.view.Store(&empty)
	return l
}

// Get returns the current price for the asset, walking the fallback chain:
// ledger value, then the owned position's last known price, then the
// catalog base price. Unknown assets read as 0.
func (l *Ledger) Get(assetID string) float64 {
	if rec, ok := l.Record(assetID); ok && rec.Price > 0 {
		return rec.Price
	}
	if l.holdings != nil {
		if p, ok := l.holdings.LastKnown(assetID); ok && p > 0 {
			return p
		}
	}
	if a, ok := l.cat.Get(assetID); ok {
		return a.BasePrice
	}
	return 0
}

// Record returns the raw ledger entry without the fallback chain.
func (l *Ledger) Record(assetID string) (PriceRecord, bool) {
	view := *l.view.Load()
	rec, ok := view[assetID]
	return rec, ok
}

// AllPrices returns a copy of the current prices for one class, or for the
// whole catalog when class is empty.
func (l *Ledger) AllPrices(class catalog.Class) map[string]float64 {
	assets := l.cat.All()
	if class != "" {
		assets = l.cat.ByClass(class)
	}
	out := make(map[string]float64, len(assets))
	for _, a := range assets {
		out[a.ID] = l.Get(a.ID)
	}
	return out
}

// Snapshot returns a copy of every tracked price. The copy is isolated from
// later batches.
func (l *Ledger) Snapshot() map[string]float64 {
	view := *l.view.Load()
	out := make(map[string]float64, len(view))
	for id, rec := range view {
		out[id] = rec.Price
	}
	return out
}

// Seq returns the sequence number of the last applied batch.
func (l *Ledger) Seq() uint64 {
	return l.seq.Load()
}

// Len returns the number of tracked price records.
func (l *Ledger) Len() int {
	return len(*l.view.Load())
}

// ApplyBatch applies a tick batch as one atomic swap and returns the batch
// sequence number. Invalid ticks (NaN or non-positive prices, unknown
// assets) are dropped with a warning rather than poisoning the view. Readers
// never observe a partially applied batch.
func (l *Ledger) ApplyBatch(batch TickBatch) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	old := *l.view.Load()
	next := make(map[string]PriceRecord, len(old)+len(batch.Ticks))
	for id, rec := range old {
		next[id] = rec
	}

	seq := l.seq.Add(1)
	at := batch.At
	if at.IsZero() {
		at = time.Now()
	}
	for _, tick := range batch.Ticks {
		if math.IsNaN(tick.Price) || tick.Price <= 0 {
			l.logger.Warn("dropping invalid tick", "asset", tick.AssetID, "price", tick.Price)
			continue
		}
		if _, ok := l.cat.Get(tick.AssetID); !ok {
			l.logger.Warn("dropping tick for unknown asset", "asset", tick.AssetID)
			continue
		}
		next[tick.AssetID] = PriceRecord{
			AssetID:   tick.AssetID,
			Price:     tick.Price,
			Seq:       seq,
			UpdatedAt: at,
		}
	}

	l.view.Store(&next)
	return seq
}

// Seed loads an initial price map, typically a persisted snapshot. Unknown
// keys are ignored so older snapshots stay loadable.
func (l *Ledger) Seed(prices map[string]float64) int {
	batch := TickBatch{ID: uuid.New(), At: time.Now(), Trigger: "seed"}
	for id, price := range prices {
		if _, ok := l.cat.Get(id); !ok {
			continue
		}
		batch.Ticks = append(batch.Ticks, PriceTick{AssetID: id, Price: price})
	}
	if len(batch.Ticks) == 0 {
		return 0
	}
	l.ApplyBatch(batch)
	return len(batch.Ticks)
}
