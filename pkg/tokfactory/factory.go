package tokfactory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/tokfactory/internal/config"
	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/core/service"
	"github.com/yndnr/tokfactory/internal/infra/confloader"
	"github.com/yndnr/tokfactory/internal/storage"
	"github.com/yndnr/tokfactory/internal/telemetry/logger"
	"github.com/yndnr/tokfactory/internal/telemetry/metric"
)

// Factory is an open token registry.
type Factory struct {
	cfg      *config.Config
	svc      *service.FactoryService
	engine   *storage.Engine
	metrics  *metric.Registry
	logger   logger.Logger
	watcher  *confloader.Watcher
	recovery *storage.RecoveryReport

	closeOnce sync.Once
	closeErr  error
}

// RecoveryFailure describes a persisted token that could not be loaded.
type RecoveryFailure struct {
	Key   string `json:"key" yaml:"key"`
	Error string `json:"error" yaml:"error"`
}

// Open creates a factory from cfg. With the badger backend the persisted
// registry is loaded before Open returns; records that fail to load are
// skipped and reported by RecoveryFailures.
func Open(ctx context.Context, cfg *Config, opts ...Option) (*Factory, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := options{clock: domain.SystemClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	log, err := newLogger(cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry(cfg.Metrics.Namespace)
	}

	kv, err := openKV(cfg, log, metrics)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	engine := storage.New(storage.Config{
		KV:         kv,
		ShardCount: cfg.Registry.ShardCount,
		Clock:      o.clock,
		Logger:     logger.Slog(log),
	})

	report, err := engine.Recover(ctx)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("storage recovery: %w", err)
	}

	svc := service.NewFactoryService(engine, &service.FactoryServiceConfig{
		ReserveAddress: domain.Address(cfg.Registry.ReserveAddress),
		Clock:          o.clock,
		Metrics:        metrics,
		Logger:         log,
	})

	f := &Factory{
		cfg:      cfg,
		svc:      svc,
		engine:   engine,
		metrics:  metrics,
		logger:   log,
		recovery: report,
	}

	if metrics != nil {
		if n, err := svc.Count(ctx); err == nil {
			metrics.SetRegistryTokens(n)
		}
		err := metrics.RegisterStateCollector(func() (int, int) {
			active, expired, _ := svc.StateCounts(context.Background())
			return active, expired
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	if o.configFile != "" {
		if err := f.watchConfig(o.configFile); err != nil {
			f.Close()
			return nil, fmt.Errorf("watch config: %w", err)
		}
	}

	log.Info("token factory opened",
		"backend", cfg.Storage.Backend,
		"tokens_loaded", report.Loaded,
		"tokens_failed", len(report.Failed))

	return f, nil
}

func newLogger(cfg *config.Config, sl *slog.Logger) (logger.Logger, error) {
	if sl != nil {
		return logger.FromSlog(sl), nil
	}
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

func openKV(cfg *config.Config, log logger.Logger, metrics *metric.Registry) (storage.KVEngine, error) {
	if cfg.Storage.Backend != config.BackendBadger {
		return nil, nil
	}

	bcfg := storage.DefaultBadgerConfig(cfg.Storage.DataDir)
	bcfg.SyncWrites = cfg.Storage.SyncWrites
	bcfg.GCInterval = cfg.Storage.GCInterval

	kv, err := storage.NewBadgerEngine(bcfg, logger.Slog(log.With("component", "badger")))
	if err != nil {
		return nil, err
	}

	if metrics != nil {
		if err := kv.RegisterMetrics(metrics.Prometheus(), metrics.Namespace()); err != nil {
			kv.Close()
			return nil, err
		}
	}
	return kv, nil
}

func (f *Factory) watchConfig(path string) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(f.logger)))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return err
	}

	w.OnChange(func(string) {
		cfg, err := config.Load(path, nil)
		if err != nil {
			f.logger.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			f.logger.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	f.watcher = w
	return nil
}

// CreateToken registers a new token for req.BatchID and returns its address.
func (f *Factory) CreateToken(ctx context.Context, req *CreateTokenRequest) (TokenAddress, error) {
	token, err := f.svc.CreateToken(ctx, req)
	if err != nil {
		return "", err
	}
	return token.Address(), nil
}

// GetTokenAddress returns the address of the token registered for id.
func (f *Factory) GetTokenAddress(ctx context.Context, id BatchID) (TokenAddress, error) {
	return f.svc.GetTokenAddress(ctx, id)
}

// BalanceOf returns owner's balance of the token at addr.
func (f *Factory) BalanceOf(ctx context.Context, addr TokenAddress, owner Address) (uint64, error) {
	return f.svc.BalanceOf(ctx, addr, owner)
}

// TransferByBatch moves req.Amount from req.From to req.To. req.BatchID
// must be the token's own batch id and the token must not have expired.
func (f *Factory) TransferByBatch(ctx context.Context, req *TransferRequest) error {
	return f.svc.TransferByBatch(ctx, req)
}

// Lookup returns the token registered for id.
func (f *Factory) Lookup(ctx context.Context, id BatchID) (*Token, error) {
	return f.svc.Lookup(ctx, id)
}

// LookupByAddress returns the token at addr.
func (f *Factory) LookupByAddress(ctx context.Context, addr TokenAddress) (*Token, error) {
	return f.svc.LookupByAddress(ctx, addr)
}

// List returns every token ordered by batch id.
func (f *Factory) List(ctx context.Context) ([]*Token, error) {
	return f.svc.ListTokens(ctx)
}

// Count returns the number of registered tokens.
func (f *Factory) Count(ctx context.Context) (int, error) {
	return f.svc.Count(ctx)
}

// Audit checks supply conservation for every token.
func (f *Factory) Audit(ctx context.Context) ([]AuditResult, error) {
	return f.svc.Audit(ctx)
}

// RecoveryFailures lists persisted records skipped by Open, ordered by key.
func (f *Factory) RecoveryFailures() []RecoveryFailure {
	if f.recovery == nil {
		return nil
	}
	out := make([]RecoveryFailure, 0, len(f.recovery.Failed))
	for _, rf := range f.recovery.Failed {
		out = append(out, RecoveryFailure{Key: rf.Key, Error: rf.Err.Error()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Durable reports whether the factory persists its registry.
func (f *Factory) Durable() bool {
	return f.engine.Durable()
}

// Backup writes a backup of the persisted registry to w.
func (f *Factory) Backup(ctx context.Context, w io.Writer) error {
	kv := f.engine.KV()
	if kv == nil {
		return domain.ErrStorageError.WithDetails("backup requires the badger backend")
	}
	if err := kv.Backup(ctx, w); err != nil {
		return domain.ErrStorageError.WithCause(err)
	}
	return nil
}

// MetricsHandler serves the factory's Prometheus metrics. It returns nil
// when metrics are disabled.
func (f *Factory) MetricsHandler() http.Handler {
	if f.metrics == nil {
		return nil
	}
	return f.metrics.Handler()
}

// Metrics returns the gatherer behind MetricsHandler, for hosts that
// merge it into their own registry. It returns nil when metrics are
// disabled.
func (f *Factory) Metrics() prometheus.Gatherer {
	if f.metrics == nil {
		return nil
	}
	return f.metrics.Prometheus()
}

// Config returns the configuration the factory was opened with.
func (f *Factory) Config() *Config {
	return f.cfg
}

// Close stops the config watcher and closes storage. Safe to call more
// than once.
func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		if f.watcher != nil {
			f.watcher.Stop()
		}
		f.closeErr = f.engine.Close()
	})
	return f.closeErr
}
