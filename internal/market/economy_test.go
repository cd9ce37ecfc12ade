package market

import "testing"

func TestEconomyStartsStable(t *testing.T) {
	e := NewEconomyWithSeed(1, nil)
	snap := e.Snapshot()
	if snap.Trend != TrendStable {
		t.Errorf("initial trend = %s, want stable", snap.Trend)
	}
	if snap.Health != 50 {
		t.Errorf("initial health = %.1f, want 50", snap.Health)
	}
}

func TestRollDayKeepsHealthInRange(t *testing.T) {
	e := NewEconomyWithSeed(42, nil)
	seen := make(map[Trend]bool)
	for i := 0; i < 500; i++ {
		snap := e.RollDay()
		if snap.Health < 0 || snap.Health > 100 {
			t.Fatalf("day %d: health %.2f out of range", i, snap.Health)
		}
		switch snap.Trend {
		case TrendBull, TrendBear, TrendStable:
			seen[snap.Trend] = true
		default:
			t.Fatalf("day %d: unknown trend %q", i, snap.Trend)
		}
	}
	// 500 rolls at a 30% switch probability visit every trend.
	if len(seen) != 3 {
		t.Errorf("trends seen = %v, want all three", seen)
	}
}

func TestSetStateClampsHealth(t *testing.T) {
	e := NewEconomyWithSeed(1, nil)
	e.SetState(TrendBull, 180)
	if snap := e.Snapshot(); snap.Health != 100 || snap.Trend != TrendBull {
		t.Errorf("snapshot = %+v, want bull at 100", snap)
	}
	e.SetState(TrendBear, -5)
	if snap := e.Snapshot(); snap.Health != 0 {
		t.Errorf("health = %.1f, want 0", snap.Health)
	}
}
