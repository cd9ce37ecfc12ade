package market

import "simarket/internal/catalog"

// Params are the per-tick price movement parameters for one asset.
type Params struct {
	DriftBias      float64
	VarianceFactor float64
}

// Parameters is a pure table lookup mapping (class, tier, trend) to the
// drift and variance used by the generator. Variance strictly increases
// across tiers for every class.
func Parameters(class catalog.Class, tier catalog.Tier, trend Trend) Params {
	scale := classScale(class)
	return Params{
		DriftBias:      trendDrift(trend) * scale,
		VarianceFactor: tierVariance(tier) * scale,
	}
}

// HealthTilt converts the macro health score (0-100) into a small extra
// drift: a sick market drags prices, a booming one lifts them.
func HealthTilt(health float64) float64 {
	return (clampHealth(health) - 50) / 50 * 0.001
}

func tierVariance(tier catalog.Tier) float64 {
	switch tier {
	case catalog.TierVeryLow:
		return 0.003
	case catalog.TierLow:
		return 0.005
	case catalog.TierMedium:
		return 0.010
	case catalog.TierHigh:
		return 0.015
	case catalog.TierVeryHigh:
		return 0.020
	case catalog.TierExtreme:
		return 0.030
	default:
		return 0.010
	}
}

func classScale(class catalog.Class) float64 {
	switch class {
	case catalog.ClassCrypto:
		return 2.5
	case catalog.ClassBond:
		return 0.6
	case catalog.ClassProperty:
		return 0.8
	case catalog.ClassOther:
		return 1.5
	default:
		return 1.0
	}
}

func trendDrift(trend Trend) float64 {
	switch trend {
	case TrendBull:
		return 0.002
	case TrendBear:
		return -0.002
	default:
		return 0
	}
}
