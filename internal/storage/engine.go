// Package storage provides the storage engine for tokfactory.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/core/service"
	"github.com/yndnr/tokfactory/internal/storage/memory"
)

// Config configures the storage engine.
type Config struct {
	// KV is the optional durable engine. Nil keeps the registry in memory.
	KV KVEngine

	// ShardCount is the number of shards per memory index.
	ShardCount int

	// Clock is handed to tokens restored by Recover.
	Clock domain.Clock

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Engine is the token repository combining memory and an optional KV engine.
type Engine struct {
	store  *memory.Store
	kv     KVEngine
	clock  domain.Clock
	logger *slog.Logger

	// Serializes check, persist and index on Create
	mu sync.Mutex
}

var _ service.TokenRepository = (*Engine)(nil)

// New creates a new storage engine.
//
// This does NOT perform recovery. Call Recover() after New() to load
// existing data.
func New(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock{}
	}

	return &Engine{
		store:  memory.New(memory.WithShardCount(cfg.ShardCount)),
		kv:     cfg.KV,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
}

// Durable reports whether the engine persists tokens.
func (e *Engine) Durable() bool {
	return e.kv != nil
}

// KV returns the underlying KV engine, or nil in memory-only mode.
func (e *Engine) KV() KVEngine {
	return e.kv
}

// RecoveryFailure describes a persisted record that could not be restored.
type RecoveryFailure struct {
	Key string
	Err error
}

// RecoveryReport summarizes a Recover run.
type RecoveryReport struct {
	Loaded   int
	Failed   []RecoveryFailure
	Duration time.Duration
}

// Recover loads every persisted token into the memory index.
//
// Records that fail to decode or restore are reported and skipped; the
// error return is reserved for the scan itself.
func (e *Engine) Recover(ctx context.Context) (*RecoveryReport, error) {
	report := &RecoveryReport{}
	if e.kv == nil {
		return report, nil
	}

	startTime := time.Now()
	e.logger.Info("storage recovery started")

	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.kv.Scan(ctx, []byte(TokenKeyPrefix), func(key, value []byte) bool {
		if err := e.restore(ctx, key, value); err != nil {
			e.logger.Warn("failed to restore token", "key", string(key), "error", err)
			report.Failed = append(report.Failed, RecoveryFailure{Key: string(key), Err: err})
			return true
		}
		report.Loaded++
		return true
	})
	if err != nil {
		return report, domain.ErrStorageError.WithCause(fmt.Errorf("scan tokens: %w", err))
	}

	report.Duration = time.Since(startTime)
	e.logger.Info("recovery completed",
		"loaded", report.Loaded,
		"failed", len(report.Failed),
		"elapsed", report.Duration)

	return report, nil
}

func (e *Engine) restore(ctx context.Context, key, value []byte) error {
	id, err := ParseTokenKey(key)
	if err != nil {
		return err
	}
	state, err := DecodeTokenState(value)
	if err != nil {
		return err
	}
	if state.Metadata.BatchID != id {
		return fmt.Errorf("record batch %d does not match key batch %d", state.Metadata.BatchID, id)
	}

	token, err := domain.RestoreToken(state, e.clock)
	if err != nil {
		return err
	}
	token.SetCommitHook(e.commitHook(token.BatchID()))
	return e.store.Create(ctx, token)
}

// Create persists and indexes a new token.
func (e *Engine) Create(ctx context.Context, token *domain.Token) error {
	if token == nil {
		return domain.ErrInvalidArgument.WithDetails("nil token")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Check before persisting so a duplicate never overwrites the winner's record.
	if _, err := e.store.GetByBatch(ctx, token.BatchID()); err == nil {
		return domain.ErrDuplicateBatchID
	}
	if _, err := e.store.GetByAddress(ctx, token.Address()); err == nil {
		return domain.ErrInternal.WithDetails("token address already indexed")
	}

	if e.kv != nil {
		if err := e.persist(ctx, token.Snapshot()); err != nil {
			return err
		}
		// Installed before indexing: a token is never reachable without it.
		token.SetCommitHook(e.commitHook(token.BatchID()))
	}

	return e.store.Create(ctx, token)
}

func (e *Engine) commitHook(id domain.BatchID) domain.CommitHook {
	return func(state *domain.TokenState) error {
		if err := e.persist(context.Background(), state); err != nil {
			e.logger.Error("persist transfer failed", "batch_id", uint64(id), "error", err)
			return err
		}
		return nil
	}
}

func (e *Engine) persist(ctx context.Context, state *domain.TokenState) error {
	data, err := EncodeTokenState(state)
	if err != nil {
		return domain.ErrInternal.WithCause(err)
	}
	if err := e.kv.Set(ctx, TokenKey(state.Metadata.BatchID), data); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// GetByBatch retrieves a token by batch id.
func (e *Engine) GetByBatch(ctx context.Context, id domain.BatchID) (*domain.Token, error) {
	return e.store.GetByBatch(ctx, id)
}

// GetByAddress retrieves a token by address.
func (e *Engine) GetByAddress(ctx context.Context, addr domain.TokenAddress) (*domain.Token, error) {
	return e.store.GetByAddress(ctx, addr)
}

// List returns all indexed tokens.
func (e *Engine) List(ctx context.Context) ([]*domain.Token, error) {
	return e.store.List(ctx)
}

// Count returns the number of indexed tokens.
func (e *Engine) Count(ctx context.Context) (int, error) {
	return e.store.Count(ctx)
}

// Close gracefully shuts down the storage engine and its KV engine.
func (e *Engine) Close() error {
	e.logger.Info("shutting down storage engine")

	if e.kv != nil {
		if err := e.kv.Close(); err != nil {
			e.logger.Error("close kv engine failed", "error", err)
			return err
		}
	}

	e.logger.Info("storage engine shutdown complete")
	return nil
}
