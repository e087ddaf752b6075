// Package store provides the cache store adapter consumed by the
// invalidation engine. Implementations must be idempotent: deleting a scope
// that holds no entries succeeds.
package store

import "context"

//go:generate mockgen -source=store.go -destination=../invalidation/mocks/mocks.go -package=mocks Store

// Store is the eviction surface of the derived-metrics cache. Each call is
// independently failable; a failure in one implies nothing about another.
type Store interface {
	// DeleteScope evicts a single exact key.
	DeleteScope(ctx context.Context, key string) error
	// DeletePattern evicts every key matching the wildcard pattern.
	DeletePattern(ctx context.Context, pattern string) error
}
