// Package service provides domain services for tokfactory.
//
// Domain services contain the business orchestration on top of the domain
// models. They define interfaces for storage dependencies, allowing for
// dependency injection and testability.
//
// This package contains:
//
//   - FactoryService: token creation, batch-id lookup, balance reads,
//     batch-scoped transfers and supply audits
//
// Services are stateless apart from their injected collaborators and are
// safe for concurrent use.
package service
