package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Class is the asset class of a tradable instrument.
type Class string

const (
	ClassStock    Class = "stock"
	ClassCrypto   Class = "crypto"
	ClassBond     Class = "bond"
	ClassProperty Class = "property"
	ClassOther    Class = "other"
)

// Tier is the volatility tier of an instrument.
type Tier string

const (
	TierVeryLow  Tier = "very_low"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierVeryHigh Tier = "very_high"
	TierExtreme  Tier = "extreme"
)

var (
	ErrUnknownAsset = errors.New("asset not found in catalog")
	ErrDuplicateID  = errors.New("duplicate asset id")
)

// Classes lists every asset class, in display order.
func Classes() []Class {
	return []Class{ClassStock, ClassCrypto, ClassBond, ClassProperty, ClassOther}
}

// Tiers lists every volatility tier, from calmest to wildest.
func Tiers() []Tier {
	return []Tier{TierVeryLow, TierLow, TierMedium, TierHigh, TierVeryHigh, TierExtreme}
}

// ParseClass parses a class name, case-insensitively.
func ParseClass(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Classes() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown asset class %q", s)
}

// ParseTier parses a volatility tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Tiers() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown volatility tier %q", s)
}

// FloorFactor is the fraction of the base price below which a market price
// is never allowed to fall.
func (c Class) FloorFactor() float64 {
	switch c {
	case ClassCrypto:
		return 0.10
	case ClassBond:
		return 0.50
	case ClassProperty:
		return 0.40
	case ClassOther:
		return 0.20
	default:
		return 0.25
	}
}

// CalendarBound reports whether the class trades only during market hours.
// Crypto and specialty instruments trade around the clock.
func (c Class) CalendarBound() bool {
	switch c {
	case ClassCrypto, ClassOther:
		return false
	default:
		return true
	}
}

// Asset is a single tradable instrument. Assets are immutable once loaded.
type Asset struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Class       Class   `json:"class"`
	Tier        Tier    `json:"tier"`
	BasePrice   float64 `json:"base_price"`
}

// Decimals is the rounding precision for the asset's prices. Low-value crypto
// keeps sub-cent precision so prices stay distinguishable.
func (a Asset) Decimals() int {
	if a.Class == ClassCrypto && a.BasePrice < 1.0 {
		return 8
	}
	return 2
}

// Floor is the absolute minimum price for the asset.
func (a Asset) Floor() float64 {
	return a.BasePrice * a.Class.FloorFactor()
}

// Catalog is the immutable set of instruments tracked by the engine.
type Catalog struct {
	assets  []Asset
	byID    map[string]Asset
	byClass map[Class][]Asset
}

// New builds a catalog from a list of assets, validating as it goes. IDs
// are normalized to upper case so lookups stay case-insensitive.
func New(assets []Asset) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]Asset, len(assets)),
		byClass: make(map[Class][]Asset),
	}
	for _, a := range assets {
		a.ID = strings.ToUpper(strings.TrimSpace(a.ID))
		if a.ID == "" {
			return nil, fmt.Errorf("asset with empty id")
		}
		if _, ok := c.byID[a.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, a.ID)
		}
		if _, err := ParseClass(string(a.Class)); err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		if _, err := ParseTier(string(a.Tier)); err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		if a.BasePrice <= 0 {
			return nil, fmt.Errorf("asset %s: base price must be > 0", a.ID)
		}
		if a.DisplayName == "" {
			a.DisplayName = a.ID
		}
		c.assets = append(c.assets, a)
		c.byID[a.ID] = a
		c.byClass[a.Class] = append(c.byClass[a.Class], a)
	}
	if len(c.assets) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return c, nil
}

// LoadFile reads a catalog from a JSON file: a flat array of assets.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var assets []Asset
	if err := json.Unmarshal(raw, &assets); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(assets)
}

// Get returns the asset with the given id.
func (c *Catalog) Get(id string) (Asset, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// All returns every asset in load order.
func (c *Catalog) All() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// ByClass returns every asset of the given class.
func (c *Catalog) ByClass(class Class) []Asset {
	src := c.byClass[class]
	out := make([]Asset, len(src))
	copy(out, src)
	return out
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}
