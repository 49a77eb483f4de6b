// Package service provides domain services for tokfactory.
package service

import (
	"context"
	"sort"

	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/telemetry/logger"
	"github.com/yndnr/tokfactory/internal/telemetry/metric"
)

// DefaultReserveAddress receives the part of an initial supply that is not
// allocated to the creator.
const DefaultReserveAddress domain.Address = "factory"

// TokenRepository defines the registry index the factory writes to.
//
// Create must be a compare-and-insert on the batch id: of two concurrent
// creates for one batch id exactly one succeeds and the other returns
// domain.ErrDuplicateBatchID. There is no delete.
type TokenRepository interface {
	// Create indexes a new token under its batch id and address.
	Create(ctx context.Context, token *domain.Token) error

	// GetByBatch returns the token for a batch id or domain.ErrUnknownBatchID.
	GetByBatch(ctx context.Context, id domain.BatchID) (*domain.Token, error)

	// GetByAddress returns the token for an address or domain.ErrUnknownToken.
	GetByAddress(ctx context.Context, addr domain.TokenAddress) (*domain.Token, error)

	// List returns all tokens in no particular order.
	List(ctx context.Context) ([]*domain.Token, error)

	// Count returns the number of indexed tokens.
	Count(ctx context.Context) (int, error)
}

// FactoryService creates batch tokens and routes operations to them.
type FactoryService struct {
	repo    TokenRepository
	clock   domain.Clock
	reserve domain.Address
	metrics *metric.Registry
	logger  logger.Logger
}

// FactoryServiceConfig holds configuration for FactoryService.
type FactoryServiceConfig struct {
	// ReserveAddress is credited with supply not allocated to the creator.
	ReserveAddress domain.Address

	// Clock is the time source for expiry checks (default: SystemClock).
	Clock domain.Clock

	// Metrics records creations and transfers (optional).
	Metrics *metric.Registry

	// Logger is used when the request context carries none.
	Logger logger.Logger
}

// DefaultFactoryServiceConfig returns default configuration.
func DefaultFactoryServiceConfig() *FactoryServiceConfig {
	return &FactoryServiceConfig{
		ReserveAddress: DefaultReserveAddress,
		Clock:          domain.SystemClock{},
	}
}

// NewFactoryService creates a new FactoryService.
func NewFactoryService(repo TokenRepository, config *FactoryServiceConfig) *FactoryService {
	if config == nil {
		config = DefaultFactoryServiceConfig()
	}

	s := &FactoryService{
		repo:    repo,
		clock:   config.Clock,
		reserve: config.ReserveAddress,
		metrics: config.Metrics,
		logger:  config.Logger,
	}
	if s.clock == nil {
		s.clock = domain.SystemClock{}
	}
	if s.reserve == "" {
		s.reserve = DefaultReserveAddress
	}
	if s.logger == nil {
		s.logger = logger.Default()
	}
	return s
}

// Clock returns the service time source.
func (s *FactoryService) Clock() domain.Clock {
	return s.clock
}

// CreateTokenRequest contains parameters for token creation.
type CreateTokenRequest struct {
	Name              string
	Symbol            string
	InitialSupply     uint64
	ExpiresAt         int64 // Unix seconds
	BatchID           domain.BatchID
	Creator           domain.Address // Authenticated caller

	// CreatorAllocation is the share of InitialSupply credited to Creator;
	// the rest goes to the reserve address. Zero credits Creator with the
	// whole supply. To park the whole supply in reserve, create the token
	// with the reserve address as Creator.
	CreatorAllocation uint64
}

// CreateToken creates a token for a new batch and indexes it.
//
// InitialSupply is the token's total supply. CreatorAllocation of it is
// credited to Creator and the remainder to the reserve address.
func (s *FactoryService) CreateToken(ctx context.Context, req *CreateTokenRequest) (*domain.Token, error) {
	if req == nil {
		s.metrics.TokenCreateFailed(domain.ErrInvalidArgument.Code)
		return nil, domain.ErrInvalidArgument.WithDetails("nil request")
	}
	ctx = logger.WithCaller(ctx, string(req.Creator))
	log := s.log(ctx).With("batch_id", uint64(req.BatchID), "symbol", req.Symbol)

	token, err := s.createToken(ctx, req)
	if err != nil {
		s.metrics.TokenCreateFailed(domain.GetErrorCode(err))
		log.Warn("token creation rejected", "error", err)
		return nil, err
	}

	s.metrics.TokenCreated()
	if n, err := s.repo.Count(ctx); err == nil {
		s.metrics.SetRegistryTokens(n)
	}

	log.Info("token created",
		"address", string(token.Address()),
		"supply", req.InitialSupply,
		"creator_allocation", req.CreatorAllocation,
		"expires_at", req.ExpiresAt)

	return token, nil
}

func (s *FactoryService) createToken(ctx context.Context, req *CreateTokenRequest) (*domain.Token, error) {
	// Reject early without allocating an address; Create still arbitrates
	// concurrent callers.
	if _, err := s.repo.GetByBatch(ctx, req.BatchID); err == nil {
		return nil, domain.ErrDuplicateBatchID
	}

	meta := domain.Metadata{
		Name:      req.Name,
		Symbol:    req.Symbol,
		BatchID:   req.BatchID,
		ExpiresAt: req.ExpiresAt,
	}
	var opts []domain.TokenOption
	if req.CreatorAllocation > 0 {
		opts = append(opts, domain.WithCreatorAllocation(req.CreatorAllocation, s.reserve))
	}
	token, err := domain.NewToken(meta, req.InitialSupply, req.Creator, s.clock, opts...)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// GetTokenAddress returns the address of the token for a batch id.
func (s *FactoryService) GetTokenAddress(ctx context.Context, id domain.BatchID) (domain.TokenAddress, error) {
	token, err := s.repo.GetByBatch(ctx, id)
	if err != nil {
		return "", err
	}
	return token.Address(), nil
}

// Lookup returns the token for a batch id.
func (s *FactoryService) Lookup(ctx context.Context, id domain.BatchID) (*domain.Token, error) {
	return s.repo.GetByBatch(ctx, id)
}

// LookupByAddress returns the token for an address.
func (s *FactoryService) LookupByAddress(ctx context.Context, addr domain.TokenAddress) (*domain.Token, error) {
	return s.byAddress(ctx, addr)
}

// byAddress resolves addr, rejecting malformed handles without touching
// the index.
func (s *FactoryService) byAddress(ctx context.Context, addr domain.TokenAddress) (*domain.Token, error) {
	if !domain.IsValidTokenAddress(string(addr)) {
		return nil, domain.ErrUnknownToken.WithDetails("malformed token address")
	}
	return s.repo.GetByAddress(ctx, addr)
}

// BalanceOf returns owner's balance of the token at addr.
func (s *FactoryService) BalanceOf(ctx context.Context, addr domain.TokenAddress, owner domain.Address) (uint64, error) {
	token, err := s.byAddress(ctx, addr)
	if err != nil {
		return 0, err
	}
	return token.BalanceOf(owner), nil
}

// TransferRequest contains parameters for a batch transfer.
type TransferRequest struct {
	Token   domain.TokenAddress
	From    domain.Address // Authenticated caller
	To      domain.Address
	Amount  uint64
	BatchID domain.BatchID
}

// TransferByBatch moves Amount of the token at Token from From to To.
// BatchID must match the token's own batch id.
func (s *FactoryService) TransferByBatch(ctx context.Context, req *TransferRequest) error {
	if req == nil {
		return domain.ErrInvalidArgument.WithDetails("nil request")
	}
	ctx = logger.WithCaller(ctx, string(req.From))
	log := s.log(ctx).With("token", string(req.Token), "batch_id", uint64(req.BatchID))

	token, err := s.byAddress(ctx, req.Token)
	if err == nil {
		err = token.TransferByBatch(req.From, req.To, req.Amount, req.BatchID)
	}
	if err != nil {
		s.metrics.TransferFailed(domain.GetErrorCode(err))
		log.Warn("transfer rejected", "to", string(req.To), "amount", req.Amount, "error", err)
		return err
	}

	s.metrics.TransferCompleted(req.Amount)
	log.Debug("transfer committed", "to", string(req.To), "amount", req.Amount)
	return nil
}

// ListTokens returns all tokens ordered by batch id.
func (s *FactoryService) ListTokens(ctx context.Context) ([]*domain.Token, error) {
	tokens, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].BatchID() < tokens[j].BatchID() })
	return tokens, nil
}

// Count returns the registry size.
func (s *FactoryService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// StateCounts returns how many tokens are active and expired now.
func (s *FactoryService) StateCounts(ctx context.Context) (active, expired int, err error) {
	tokens, err := s.repo.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, t := range tokens {
		if t.IsExpired() {
			expired++
		} else {
			active++
		}
	}
	return active, expired, nil
}

// AuditResult is the conservation check outcome for one token.
type AuditResult struct {
	BatchID domain.BatchID      `json:"batch_id" yaml:"batch_id"`
	Address domain.TokenAddress `json:"address" yaml:"address"`
	State   domain.State        `json:"state" yaml:"state"`
	Supply  uint64              `json:"supply" yaml:"supply"`
	Holders int                 `json:"holders" yaml:"holders"`
	OK      bool                `json:"ok" yaml:"ok"`
	Error   string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Audit checks supply conservation for every token, ordered by batch id.
func (s *FactoryService) Audit(ctx context.Context) ([]AuditResult, error) {
	tokens, err := s.ListTokens(ctx)
	if err != nil {
		return nil, err
	}

	log := s.log(ctx)
	results := make([]AuditResult, 0, len(tokens))
	for _, t := range tokens {
		state := t.Snapshot()
		r := AuditResult{
			BatchID: t.BatchID(),
			Address: t.Address(),
			State:   t.State(),
			Supply:  state.Supply,
			Holders: len(state.Balances),
			OK:      true,
		}
		if err := t.Verify(); err != nil {
			r.OK = false
			r.Error = err.Error()
			log.Error("supply conservation violated", "batch_id", uint64(r.BatchID), "error", err)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *FactoryService) log(ctx context.Context) logger.Logger {
	if !logger.HasLogger(ctx) {
		ctx = logger.WithLogger(ctx, s.logger)
	}
	return logger.L(ctx)
}
