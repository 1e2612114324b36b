// Package cache stores computed layouts, rendered artifacts and fetched
// boards behind one byte-oriented interface.
//
// # Backends
//
//   - [FileCache]: one JSON envelope per key under a directory (CLI default)
//   - [RedisCache]: Redis with native key expiry (server deployments)
//   - [MongoCache]: one document per key with a TTL index on expires_at
//   - [NullCache]: caching disabled
//
// [Open] picks a backend from a [Config]; [WithHooks] reports hits, misses
// and writes to the observability cache hooks.
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect
// the cached value, so changing any layout option yields a different key:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(boardJSON), cache.LayoutKeyOpts{Width: 1200, Stretch: "fill"})
package cache

import (
	"context"
	"time"
)

// TTLs for each kind of cached value.
const (
	TTLHTTP     = time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A zero ttl means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
// Clear returns the number of entries removed, or -1 if the backend cannot
// count them.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// Keys
// =============================================================================

// LayoutKeyOpts are the options that change a computed layout.
// DesiredColumnWidth is 0 when unset.
type LayoutKeyOpts struct {
	Width              float64 `json:"width"`
	DesiredColumnWidth float64 `json:"desired_column_width"`
	Stretch            string  `json:"stretch"`
	ColumnSpacing      float64 `json:"column_spacing"`
	RowSpacing         float64 `json:"row_spacing"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Theme  string  `json:"theme"`
	Labels bool    `json:"labels"`
	Guides bool    `json:"guides"`
	Scale  float64 `json:"scale"`
}

// Keyer generates cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	LayoutKey(boardHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "kind:hash" keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) LayoutKey(boardHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", boardHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
