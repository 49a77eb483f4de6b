// Package benchmark provides performance benchmarks for tokfactory.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run with specific registry sizes:
//
//	go test -bench=BenchmarkRegistry -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
