// Package memory provides in-memory storage for tokfactory.
package memory

import (
	"context"
	"sync"

	"github.com/yndnr/tokfactory/internal/core/domain"
	"github.com/yndnr/tokfactory/internal/core/service"
	"github.com/yndnr/tokfactory/pkg/cmap"
)

// Store provides in-memory token storage with a secondary address index.
type Store struct {
	// Primary index: BatchID -> Token
	tokens *cmap.Map[domain.BatchID, *domain.Token]

	// Secondary index: TokenAddress -> BatchID
	addresses *cmap.Map[domain.TokenAddress, domain.BatchID]

	// Serializes inserts across both indexes
	mu sync.Mutex
}

var _ service.TokenRepository = (*Store)(nil)

// Option configures the Store.
type Option func(*options)

type options struct {
	shardCount int
}

// WithShardCount sets the number of shards per index.
// Values that are not a power of two keep the cmap default.
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		tokens:    cmap.NewWithShards[domain.BatchID, *domain.Token](o.shardCount, cmap.HashUint64[domain.BatchID]),
		addresses: cmap.NewWithShards[domain.TokenAddress, domain.BatchID](o.shardCount, cmap.HashString[domain.TokenAddress]),
	}
}

// Create indexes a new token.
func (s *Store) Create(_ context.Context, token *domain.Token) error {
	if token == nil {
		return domain.ErrInvalidArgument.WithDetails("nil token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.addresses.Has(token.Address()) && !s.tokens.Has(token.BatchID()) {
		// Generated addresses are unique; a collision means the caller reused one.
		return domain.ErrInternal.WithDetails("token address already indexed")
	}
	if !s.tokens.SetIfAbsent(token.BatchID(), token) {
		return domain.ErrDuplicateBatchID
	}
	s.addresses.Set(token.Address(), token.BatchID())
	return nil
}

// GetByBatch retrieves a token by batch id.
func (s *Store) GetByBatch(_ context.Context, id domain.BatchID) (*domain.Token, error) {
	token, ok := s.tokens.Get(id)
	if !ok {
		return nil, domain.ErrUnknownBatchID
	}
	return token, nil
}

// GetByAddress retrieves a token by its address.
func (s *Store) GetByAddress(_ context.Context, addr domain.TokenAddress) (*domain.Token, error) {
	id, ok := s.addresses.Get(addr)
	if !ok {
		return nil, domain.ErrUnknownToken
	}
	token, ok := s.tokens.Get(id)
	if !ok {
		return nil, domain.ErrUnknownToken
	}
	return token, nil
}

// List returns all tokens in no particular order.
func (s *Store) List(_ context.Context) ([]*domain.Token, error) {
	return s.tokens.Values(), nil
}

// Count returns the number of tokens.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.tokens.Count(), nil
}

// ShardCount returns the number of shards of the primary index.
func (s *Store) ShardCount() int {
	return s.tokens.ShardCount()
}
