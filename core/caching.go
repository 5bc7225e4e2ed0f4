package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slipcheck/slipcheck/internal/contract"
)

// currentCacheVersion defines the version of the cache entry layout
const currentCacheVersion = 1

// cacheStaleAfter bounds how long cached engine outputs are trusted.
// The key covers the full input, so the window only guards layout drift.
const cacheStaleAfter = 30 * 24 * time.Hour

// cachedRunEntry is the payload stored per engine invocation.
type cachedRunEntry struct {
	EngineVersion string                `json:"engine_version"`
	Output        contract.EngineOutput `json:"output"`
}

// generateRunCacheKey creates a deterministic key from the full engine
// input. Struct field order fixes the JSON layout, so identical inputs
// always hash to the same 16 hex characters.
func generateRunCacheKey(input *contract.EngineInput) string {
	data, err := json.Marshal(input)
	if err != nil {
		data = []byte(input.AnalysisID)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))[:16]
}

// cachedEngineRun returns the engine output for an input, serving it from
// the run cache when possible. The second return value reports a cache hit.
func cachedEngineRun(ctx context.Context, cfg *contract.Config, engine contract.Engine, store contract.CacheStore, input *contract.EngineInput, engineVersion string) (*contract.EngineOutput, bool, error) {
	if store == nil {
		out, err := engine.Run(ctx, input)
		return out, false, err
	}

	key := generateRunCacheKey(input)

	// Check for cache hit unless a recompute was forced
	if !cfg.ForceRecompute {
		if out := checkRunCacheHit(store, key, engineVersion); out != nil {
			return out, true, nil
		}
	}

	// Cache miss: compute and store
	out, err := computeAndStore(ctx, engine, store, key, input, engineVersion)
	return out, false, err
}

// checkRunCacheHit attempts to retrieve and validate a cached engine output
func checkRunCacheHit(store contract.CacheStore, key string, engineVersion string) *contract.EngineOutput {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate layout version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheStaleAfter {
			var entry cachedRunEntry
			if err := json.Unmarshal(data, &entry); err == nil && entry.EngineVersion == engineVersion {
				return &entry.Output // Cache hit
			}
		}
	}

	return nil // Cache miss (stale, layout mismatch, or different engine build)
}

// computeAndStore runs the engine and stores the output in the cache
func computeAndStore(ctx context.Context, engine contract.Engine, store contract.CacheStore, key string, input *contract.EngineInput, engineVersion string) (*contract.EngineOutput, error) {
	out, err := engine.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	entry := cachedRunEntry{EngineVersion: engineVersion, Output: *out}
	if data, err := json.Marshal(entry); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return out, nil
}
