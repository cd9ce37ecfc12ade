package catalog

// Default returns the built-in instrument set used when no catalog file is
// configured. Prices are opening anchors, not live quotes.
func Default() *Catalog {
	c, err := New([]Asset{
		{ID: "COBOLT", DisplayName: "Cobalt Dynamics", Class: ClassStock, Tier: TierMedium, BasePrice: 130},
		{ID: "NIMBUS", DisplayName: "Nimbus Labs", Class: ClassStock, Tier: TierHigh, BasePrice: 95},
		{ID: "RUSTIC", DisplayName: "Rustic Systems", Class: ClassStock, Tier: TierLow, BasePrice: 115},
		{ID: "PYLONS", DisplayName: "Pylon Networks", Class: ClassStock, Tier: TierMedium, BasePrice: 80},
		{ID: "JAVOLT", DisplayName: "Javolt Cloud", Class: ClassStock, Tier: TierHigh, BasePrice: 105},
		{ID: "SWIFTR", DisplayName: "Swiftr Mobile", Class: ClassStock, Tier: TierVeryHigh, BasePrice: 150},
		{ID: "QUARKX", DisplayName: "Quarkx Compute", Class: ClassStock, Tier: TierMedium, BasePrice: 135},
		{ID: "VECTRA", DisplayName: "Vectra AI", Class: ClassStock, Tier: TierVeryHigh, BasePrice: 165},
		{ID: "CYBRON", DisplayName: "Cybron Secure", Class: ClassStock, Tier: TierMedium, BasePrice: 140},
		{ID: "FUSION", DisplayName: "Fusion Grid", Class: ClassStock, Tier: TierLow, BasePrice: 110},
		{ID: "ZENITH", DisplayName: "Zenith Retail", Class: ClassStock, Tier: TierVeryLow, BasePrice: 75},
		{ID: "LUMINA", DisplayName: "Lumina Health", Class: ClassStock, Tier: TierLow, BasePrice: 102},

		{ID: "BITRON", DisplayName: "Bitron", Class: ClassCrypto, Tier: TierVeryHigh, BasePrice: 42000},
		{ID: "ETHERA", DisplayName: "Ethera", Class: ClassCrypto, Tier: TierVeryHigh, BasePrice: 2400},
		{ID: "SOLARA", DisplayName: "Solara", Class: ClassCrypto, Tier: TierExtreme, BasePrice: 95},
		{ID: "DOGERZ", DisplayName: "Dogerz", Class: ClassCrypto, Tier: TierExtreme, BasePrice: 0.085},
		{ID: "PEBBLE", DisplayName: "Pebblecoin", Class: ClassCrypto, Tier: TierExtreme, BasePrice: 0.0042},
		{ID: "STABLR", DisplayName: "Stablr", Class: ClassCrypto, Tier: TierVeryLow, BasePrice: 1},

		{ID: "GOVTEN", DisplayName: "Treasury 10Y Note", Class: ClassBond, Tier: TierVeryLow, BasePrice: 1000},
		{ID: "MUNICP", DisplayName: "Municipal Bond Fund", Class: ClassBond, Tier: TierVeryLow, BasePrice: 500},
		{ID: "CORPAA", DisplayName: "Corporate AA Bond", Class: ClassBond, Tier: TierLow, BasePrice: 750},
		{ID: "JUNKYD", DisplayName: "High-Yield Bond Fund", Class: ClassBond, Tier: TierMedium, BasePrice: 320},

		{ID: "DOWNTN", DisplayName: "Downtown Apartment", Class: ClassProperty, Tier: TierLow, BasePrice: 185000},
		{ID: "SUBURB", DisplayName: "Suburban House", Class: ClassProperty, Tier: TierVeryLow, BasePrice: 240000},
		{ID: "SEASID", DisplayName: "Seaside Villa", Class: ClassProperty, Tier: TierMedium, BasePrice: 620000},
		{ID: "OFFICE", DisplayName: "Office Complex", Class: ClassProperty, Tier: TierLow, BasePrice: 1350000},

		{ID: "GOLDBR", DisplayName: "Gold Bars", Class: ClassOther, Tier: TierLow, BasePrice: 1900},
		{ID: "ARTWRK", DisplayName: "Fine Art Portfolio", Class: ClassOther, Tier: TierHigh, BasePrice: 52000},
		{ID: "VINTGE", DisplayName: "Vintage Car", Class: ClassOther, Tier: TierMedium, BasePrice: 78000},
		{ID: "WINEYD", DisplayName: "Rare Wine Collection", Class: ClassOther, Tier: TierHigh, BasePrice: 8400},
	})
	if err != nil {
		panic("default catalog invalid: " + err.Error())
	}
	return c
}
