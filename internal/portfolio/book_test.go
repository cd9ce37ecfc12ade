package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"simarket/internal/catalog"
	"simarket/internal/market"
)

func testLedger(t *testing.T) *market.Ledger {
	t.Helper()
	cat, err := catalog.New([]catalog.Asset{
		{ID: "AAA", Class: catalog.ClassStock, Tier: catalog.TierLow, BasePrice: 100},
		{ID: "BBB", Class: catalog.ClassStock, Tier: catalog.TierHigh, BasePrice: 50},
	})
	if err != nil {
		t.Fatal(err)
	}
	return market.NewLedger(cat, nil, nil)
}

func TestBuyMaintainsWeightedAverage(t *testing.T) {
	b := NewBook(nil)
	if err := b.Buy("AAA", 10, 100); err != nil {
		t.Fatal(err)
	}
	if err := b.Buy("AAA", 10, 120); err != nil {
		t.Fatal(err)
	}

	positions := b.Positions()
	if len(positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(positions))
	}
	pos := positions[0]
	if pos.Quantity != 20 {
		t.Errorf("quantity = %.1f, want 20", pos.Quantity)
	}
	if math.Abs(pos.AvgPrice-110) > 1e-9 {
		t.Errorf("avg price = %.2f, want 110", pos.AvgPrice)
	}
}

func TestBuyRejectsInvalidInput(t *testing.T) {
	b := NewBook(nil)
	if err := b.Buy("AAA", 0, 100); err == nil {
		t.Error("zero quantity should be rejected")
	}
	if err := b.Buy("AAA", 5, -1); err == nil {
		t.Error("negative price should be rejected")
	}
}

func TestSell(t *testing.T) {
	b := NewBook(nil)
	if err := b.Buy("AAA", 10, 100); err != nil {
		t.Fatal(err)
	}

	if err := b.Sell("AAA", 4); err != nil {
		t.Fatal(err)
	}
	if pos := b.Positions()[0]; pos.Quantity != 6 {
		t.Errorf("quantity = %.1f, want 6", pos.Quantity)
	}

	if err := b.Sell("AAA", 7); !errors.Is(err, ErrInsufficientQuantity) {
		t.Errorf("overselling error = %v, want ErrInsufficientQuantity", err)
	}
	if err := b.Sell("GHOST", 1); !errors.Is(err, ErrInsufficientQuantity) {
		t.Errorf("unknown holding error = %v, want ErrInsufficientQuantity", err)
	}

	if err := b.Sell("AAA", 6); err != nil {
		t.Fatal(err)
	}
	if got := len(b.Positions()); got != 0 {
		t.Errorf("positions after selling out = %d, want 0", got)
	}
}

func TestLastKnown(t *testing.T) {
	b := NewBook(nil)
	if _, ok := b.LastKnown("AAA"); ok {
		t.Error("empty book should report no last known price")
	}
	if err := b.Buy("AAA", 1, 103.5); err != nil {
		t.Fatal(err)
	}
	if p, ok := b.LastKnown("AAA"); !ok || p != 103.5 {
		t.Errorf("last known = %.2f/%v, want 103.5/true", p, ok)
	}
}

func TestRecalculate(t *testing.T) {
	b := NewBook(nil)
	l := testLedger(t)
	if err := b.Buy("AAA", 10, 100); err != nil {
		t.Fatal(err)
	}
	if err := b.Buy("BBB", 4, 50); err != nil {
		t.Fatal(err)
	}

	l.ApplyBatch(market.TickBatch{ID: uuid.New(), Ticks: []market.PriceTick{
		{AssetID: "AAA", Price: 110},
		{AssetID: "BBB", Price: 45},
	}})
	b.Recalculate(l)

	if got := b.TotalValue(); math.Abs(got-(10*110+4*45)) > 1e-9 {
		t.Errorf("total = %.2f, want 1280", got)
	}
	if b.RecalcCount() != 1 {
		t.Errorf("recalc count = %d, want 1", b.RecalcCount())
	}

	// Valuation revalues LastPrice too, feeding the ledger fallback chain.
	if p, ok := b.LastKnown("AAA"); !ok || p != 110 {
		t.Errorf("last known after recalc = %.2f, want 110", p)
	}
}
