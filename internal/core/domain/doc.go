// Package domain defines the core domain models for tokfactory.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Ledger: owner-keyed balances for one token with supply conservation
//   - Expiry guard: time-gated predicate for mutating operations
//   - Token: a batch-scoped fungible token composing metadata, ledger and guard
//   - Clock: injectable time source
//   - Errors: Domain-specific error definitions
//
// A Token moves from Active to Expired exactly once, lazily, when a
// mutating call observes the clock at or past its expiry timestamp.
package domain
