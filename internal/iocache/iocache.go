// Package iocache persists engine run outputs: a content-hash keyed cache
// for raw engine invocations and a run store for completed run history.
package iocache

import (
	"sync"

	"github.com/slipcheck/slipcheck/internal/contract"
)

// CacheStoreManager manages the run cache and run store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	runCache     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetRunCacheStore returns the engine run CacheStore.
func (mgr *CacheStoreManager) GetRunCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runCache
}

// GetRunStore returns the run tracking RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
