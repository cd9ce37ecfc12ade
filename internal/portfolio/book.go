package portfolio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"simarket/internal/market"
)

var ErrInsufficientQuantity = errors.New("insufficient quantity held")

// Position is one owned holding. LastPrice is the most recent price the
// valuation pass observed for it, used by the ledger's fallback chain.
type Position struct {
	AssetID   string  `json:"asset_id"`
	Quantity  float64 `json:"quantity"`
	AvgPrice  float64 `json:"avg_price"`
	LastPrice float64 `json:"last_price"`
}

// Book tracks the player's owned instruments and their total valuation. It
// recomputes the valuation exactly once per applied batch, driven by the
// scheduler's recalculation signal.
type Book struct {
	mu        sync.RWMutex
	positions map[string]Position
	total     float64
	recalcAt  time.Time
	recalcSeq uint64
	logger    *slog.Logger
}

// NewBook creates an empty portfolio book.
func NewBook(logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{
		positions: make(map[string]Position),
		logger:    logger,
	}
}

// Buy adds quantity at the given price, maintaining the weighted average
// cost.
func (b *Book) Buy(assetID string, qty, price float64) error {
	if qty <= 0 || price <= 0 {
		return fmt.Errorf("quantity and price must be > 0")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[assetID]
	if !ok {
		b.positions[assetID] = Position{AssetID: assetID, Quantity: qty, AvgPrice: price, LastPrice: price}
		return nil
	}
	totalCost := pos.AvgPrice*pos.Quantity + price*qty
	pos.Quantity += qty
	pos.AvgPrice = totalCost / pos.Quantity
	pos.LastPrice = price
	b.positions[assetID] = pos
	return nil
}

// Sell removes quantity from a holding, deleting it when it reaches zero.
func (b *Book) Sell(assetID string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be > 0")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	pos, ok := b.positions[assetID]
	if !ok || pos.Quantity < qty {
		return ErrInsufficientQuantity
	}
	pos.Quantity -= qty
	if pos.Quantity == 0 {
		delete(b.positions, assetID)
		return nil
	}
	b.positions[assetID] = pos
	return nil
}

// LastKnown implements market.Holdings: the last price observed for an
// owned position.
func (b *Book) LastKnown(assetID string) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pos, ok := b.positions[assetID]
	if !ok || pos.LastPrice <= 0 {
		return 0, false
	}
	return pos.LastPrice, true
}

// Positions returns a copy of every holding.
func (b *Book) Positions() []Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, pos)
	}
	return out
}

// TotalValue returns the valuation computed by the last recalculation pass.
func (b *Book) TotalValue() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

// Recalculate revalues every holding against the ledger. It is wired as the
// scheduler's recalculation notifier, so it runs once per batch.
func (b *Book) Recalculate(ledger *market.Ledger) {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0.0
	for id, pos := range b.positions {
		price := ledger.Get(id)
		if price > 0 {
			pos.LastPrice = price
			b.positions[id] = pos
		}
		total += pos.LastPrice * pos.Quantity
	}
	b.total = total
	b.recalcAt = time.Now()
	b.recalcSeq++
}

// RecalcCount returns how many recalculation passes have run.
func (b *Book) RecalcCount() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.recalcSeq
}
