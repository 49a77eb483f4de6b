// Package memory provides in-memory storage for tokfactory.
//
// It implements the registry index using concurrent-safe sharded maps.
//
// Indexes:
//
//   - Primary: BatchID -> *domain.Token
//   - Secondary: TokenAddress -> BatchID
//
// Thread Safety:
//
// Create is a compare-and-insert under the store lock so that of two
// concurrent creations for one batch id exactly one succeeds. Lookups go
// straight to the sharded maps. Entries are never removed.
package memory
