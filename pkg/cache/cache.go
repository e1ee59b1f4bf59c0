// Package cache stores derived board data keyed by share token.
//
// Everything cached here can be recomputed from a token, so a cache is never
// the source of truth. Three backends are provided:
//
//   - [NullCache] stores nothing (caching disabled)
//   - [FileCache] stores JSON entries under a directory, for CLI use
//   - [RedisCache] stores entries in Redis, for the HTTP server
//
// Keys are built by a [Keyer] so every backend shares the same key space.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Default TTLs for cached entries.
const (
	DecodeTTL = 7 * 24 * time.Hour
	LayoutTTL = 24 * time.Hour
)

// LayoutKeyOpts are the geometry parameters a cached pip layout depends on.
type LayoutKeyOpts struct {
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
	PipSize    float64 `json:"pip_size"`
}

// Keyer builds cache keys.
type Keyer interface {
	// DecodeKey is the key for a decoded distribution.
	DecodeKey(token string) string
	// LayoutKey is the key for the pip placements of a token.
	LayoutKey(token string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes key components so keys have a fixed length whatever
// the token.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DecodeKey returns "decode:<sha256>".
func (DefaultKeyer) DecodeKey(token string) string {
	return hashKey("decode", token)
}

// LayoutKey returns "layout:<sha256>". Different geometries give different keys.
func (DefaultKeyer) LayoutKey(token string, opts LayoutKeyOpts) string {
	return hashKey("layout", token, opts)
}
