package tokfactory

import (
	"context"

	"github.com/yndnr/tokfactory/internal/config"
	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/core/service"
	"github.com/yndnr/tokfactory/internal/telemetry/logger"
)

// Domain types.
type (
	BatchID      = domain.BatchID
	Address      = domain.Address
	TokenAddress = domain.TokenAddress
	Metadata     = domain.Metadata
	Token        = domain.Token
	TokenState   = domain.TokenState
	State        = domain.State
	Clock        = domain.Clock
	SystemClock  = domain.SystemClock
	ManualClock  = domain.ManualClock
	DomainError  = domain.DomainError
)

// Request and result types.
type (
	CreateTokenRequest = service.CreateTokenRequest
	TransferRequest    = service.TransferRequest
	AuditResult        = service.AuditResult
)

// Config is the factory configuration.
type Config = config.Config

// Token states.
const (
	StateActive  = domain.StateActive
	StateExpired = domain.StateExpired
)

// Errors returned by factory operations. Match with errors.Is.
var (
	ErrInvalidAmount       = domain.ErrInvalidAmount
	ErrInsufficientBalance = domain.ErrInsufficientBalance
	ErrSupplyViolation     = domain.ErrSupplyViolation
	ErrTokenExpired        = domain.ErrTokenExpired
	ErrUnknownToken        = domain.ErrUnknownToken
	ErrBatchMismatch       = domain.ErrBatchMismatch
	ErrUnknownBatchID      = domain.ErrUnknownBatchID
	ErrDuplicateBatchID    = domain.ErrDuplicateBatchID
	ErrInvalidAddress      = domain.ErrInvalidAddress
	ErrInvalidArgument     = domain.ErrInvalidArgument
	ErrInvalidExpiry       = domain.ErrInvalidExpiry
	ErrStorageError        = domain.ErrStorageError
	ErrInternal            = domain.ErrInternal
)

// NewManualClock returns a settable clock starting at t.
var NewManualClock = domain.NewManualClock

// DefaultConfig returns the default configuration: an in-memory registry
// with JSON logs at info level.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig loads configuration from an optional YAML file, TOKFACTORY_*
// environment variables and overrides keyed by dotted path.
func LoadConfig(path string, overrides map[string]any) (*Config, error) {
	return config.Load(path, overrides)
}

// WithRequestID tags ctx so that factory log lines for calls made with it
// carry request_id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return logger.WithRequestID(ctx, id)
}
