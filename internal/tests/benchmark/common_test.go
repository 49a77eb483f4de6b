package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/core/service"
	"github.com/yndnr/tokfactory/internal/storage"
	"github.com/yndnr/tokfactory/internal/telemetry/logger"
)

// TokenCounts defines the registry sizes for benchmarking.
var TokenCounts = []int{1000, 10000, 100000}

// SmallTokenCounts for quick benchmarks.
var SmallTokenCounts = []int{100, 1000}

var benchEpoch = time.Unix(1_700_000_000, 0)

// newService returns a factory service over an in-memory engine, or a
// badger-backed one when kv is non-nil.
func newService(kv storage.KVEngine, clock domain.Clock) *service.FactoryService {
	engine := storage.New(storage.Config{
		KV:     kv,
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return service.NewFactoryService(engine, &service.FactoryServiceConfig{
		Clock:  clock,
		Logger: logger.FromSlog(slog.New(slog.NewTextHandler(io.Discard, nil))),
	})
}

func createRequest(id domain.BatchID) *service.CreateTokenRequest {
	return &service.CreateTokenRequest{
		Name:              fmt.Sprintf("Token %d", id),
		Symbol:            "BNC",
		InitialSupply:     1 << 40,
		ExpiresAt:         benchEpoch.Add(365 * 24 * time.Hour).Unix(),
		BatchID:           id,
		CreatorAllocation: 1 << 40,
		Creator:           "alice",
	}
}

// prefill creates count tokens with batch ids 1..count.
func prefill(b *testing.B, svc *service.FactoryService, count int) []*domain.Token {
	b.Helper()
	ctx := context.Background()
	tokens := make([]*domain.Token, count)
	for i := 0; i < count; i++ {
		t, err := svc.CreateToken(ctx, createRequest(domain.BatchID(i+1)))
		if err != nil {
			b.Fatalf("CreateToken failed: %v", err)
		}
		tokens[i] = t
	}
	return tokens
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithTokenCounts runs a benchmark function with various registry sizes.
func runWithTokenCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("tokens_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
