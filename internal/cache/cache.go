// Package cache provides the prediction batch cache. The scanner stores one
// serialized batch per scan scope; entries expire on TTL or are removed by
// explicit invalidation when new stats are ingested.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Scope identifies what a cached batch covers
type Scope string

// Scan scopes. Keys from different scopes never collide; a lookup under the
// wrong scope is an intentional miss, not an error.
const (
	ScopeAll    Scope = "all"
	ScopePlayer Scope = "player"
	ScopeGame   Scope = "game"
)

// AllScanKey is the well-known key for the all-players scan, the most
// expensive path and the primary caching target.
const AllScanKey = "prop_scanner_results"

// Key builds a cache key for a scope and optional entity id
func Key(scope Scope, id int64) string {
	if scope == ScopeAll {
		return AllScanKey
	}
	return fmt.Sprintf("%s:%d", scope, id)
}

// ScopePrefix returns the key prefix matched by Invalidate for a scope
func ScopePrefix(scope Scope) string {
	if scope == ScopeAll {
		return AllScanKey
	}
	return string(scope) + ":"
}

// Cache is the capability set the prediction services depend on. Both
// implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
	Invalidate(ctx context.Context, scope Scope) error
}
