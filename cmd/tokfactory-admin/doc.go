// Package main provides the entry point for tokfactory-admin.
//
// tokfactory-admin inspects a registry persisted by the badger backend:
//
//   - List tokens and show their holders
//   - Look up a single balance
//   - Audit supply conservation (exit status 2 on any violation)
//   - Write an offline backup
//
// Usage:
//
//	tokfactory-admin --data-dir /var/lib/tokfactory/data tokens list
//	tokfactory-admin -d ./data -o json balance --batch 42 --owner alice
//	tokfactory-admin --config tokfactory.yaml audit
//
// The registry must not be open in another process.
package main
