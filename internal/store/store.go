// Package store persists ledger snapshots for restart continuity. A
// snapshot is a flat asset-id to price map; loaders ignore unknown keys.
package store

import "context"

// Store is the durable snapshot boundary.
type Store interface {
	Load(ctx context.Context) (map[string]float64, error)
	Save(ctx context.Context, prices map[string]float64) error
	Close()
}
