package core

import (
	"context"

	"github.com/slipcheck/slipcheck/internal/contract"
)

// Context keys for verification options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runIDKey          contextKey = "runID"
	cacheManagerKey   contextKey = "cacheManager"
)

// WithSuppressHeader sets whether headers should be suppressed in the context
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withRunID stores the active run tracking row ID in the context
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the active run tracking row ID from context
func getRunID(ctx context.Context) (int64, bool) {
	val := ctx.Value(runIDKey)
	if val == nil {
		return 0, false
	}
	runID, ok := val.(int64)
	return runID, ok
}

// contextWithCacheManager stores the cache manager for worker goroutines
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext returns the cache manager from context, or nil
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	val := ctx.Value(cacheManagerKey)
	if val == nil {
		return nil
	}
	mgr, ok := val.(contract.CacheManager)
	if !ok {
		return nil
	}
	return mgr
}
