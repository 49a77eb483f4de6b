// Package metric provides Prometheus metrics for tokfactory.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, ledger counters and HTTP handler
//   - collector.go: Scrape-time collector for token lifecycle states
//
// Metrics include:
//
//   - Token creations and creation failures by error code
//   - Transfers by result and transferred volume
//   - Registry size and active/expired token counts
//
// Every metric lives on a private registry so several factories can
// coexist in one process. A nil *Registry records nothing.
package metric
