// Package cmap provides a concurrent map implementation for tokfactory.
//
// The map is split into shards, each guarded by its own RWMutex, so that
// registry lookups for different batches rarely contend:
//
//   - Sharding: Configurable shard count (power of 2)
//   - Hashing: murmur3 over a per-type key encoding
//   - Insert-once: SetIfAbsent for compare-and-insert indexes
//   - Iteration: Range holds one shard read lock at a time
//
// Usage:
//
//	m := cmap.New[domain.BatchID, *domain.Token](cmap.HashUint64[domain.BatchID])
//	ok := m.SetIfAbsent(1, tok)
//	val, found := m.Get(1)
package cmap
