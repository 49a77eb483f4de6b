// Package storage provides the storage engine for tokfactory.
//
// The storage engine combines the in-memory registry index with an optional
// embedded KV engine (Badger) for durability.
//
// Architecture:
//
//   - Memory Store: registry index using sharded concurrent maps
//   - KV Engine: one JSON record per token under token/{batch id}
//
// The engine supports:
//
//   - Durability: a token is persisted before it is indexed, and every
//     committed transfer is persisted before the transfer returns
//   - Recovery: Recover rebuilds the memory index from the KV engine
//   - Memory-only mode: with no KV engine the registry lives in memory
package storage
