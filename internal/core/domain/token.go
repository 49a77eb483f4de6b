// Package domain defines the core domain models for tokfactory.
package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// TokenAddressPrefix is the prefix of registry-assigned token handles.
const TokenAddressPrefix = "tkn-"

// BatchID identifies a cohort of tokens created together. It is the sole
// lookup key of the registry.
type BatchID uint64

// TokenAddress is the handle the registry returns for a token.
// Format: tkn-{ulid_lowercase}, 30 characters total.
type TokenAddress string

// GenerateTokenAddress generates a new token address stamped with now.
func GenerateTokenAddress(now time.Time) (TokenAddress, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return TokenAddress(TokenAddressPrefix + strings.ToLower(id.String())), nil
}

// IsValidTokenAddress checks if a string has valid token address format.
func IsValidTokenAddress(addr string) bool {
	if len(addr) != len(TokenAddressPrefix)+ulid.EncodedSize {
		return false
	}
	if !strings.HasPrefix(addr, TokenAddressPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.ToUpper(addr[len(TokenAddressPrefix):]))
	return err == nil
}

// Metadata is the immutable description of a token.
type Metadata struct {
	Name      string       `json:"name"`
	Symbol    string       `json:"symbol"`
	BatchID   BatchID      `json:"batch_id"`
	ExpiresAt int64        `json:"expires_at"` // Unix seconds
	Address   TokenAddress `json:"address"`
}

// ExpiresAtTime returns the expiry as time.Time.
func (m Metadata) ExpiresAtTime() time.Time {
	return time.Unix(m.ExpiresAt, 0)
}

// Validate checks the caller-supplied metadata fields.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrInvalidArgument.WithDetails("name is required")
	}
	if strings.TrimSpace(m.Symbol) == "" {
		return ErrInvalidArgument.WithDetails("symbol is required")
	}
	return nil
}

// TokenState is a consistent copy of a token, used for persistence and
// inspection.
type TokenState struct {
	Metadata Metadata           `json:"metadata"`
	Supply   uint64             `json:"supply"`
	Balances map[Address]uint64 `json:"balances"`
	Version  uint64             `json:"version"`
	Expired  bool               `json:"expired,omitempty"`
}

// CommitHook is called with the post-transfer state while the token is
// still locked. A non-nil error rolls the transfer back.
type CommitHook func(state *TokenState) error

// Token is a batch-scoped fungible token with an expiry.
//
// All ledger access goes through the token's lock: transfers are
// serialized against each other and against reads.
//
// Expiry latches: once any call observes the token expired it stays
// expired, even if the clock later reads an earlier time.
type Token struct {
	meta    Metadata
	clock   Clock
	expired atomic.Bool

	mu      sync.RWMutex
	ledger  *Ledger
	version uint64
	commit  CommitHook
}

// TokenOption configures NewToken.
type TokenOption func(*tokenOptions)

type tokenOptions struct {
	reserve    Address
	allocation uint64
	hasAlloc   bool
}

// WithCreatorAllocation credits only allocation of the initial supply to
// the creator; the remainder goes to reserve.
func WithCreatorAllocation(allocation uint64, reserve Address) TokenOption {
	return func(o *tokenOptions) {
		o.allocation = allocation
		o.reserve = reserve
		o.hasAlloc = true
	}
}

// NewToken creates a token and seeds its ledger with initialSupply.
// A zero meta.Address is filled with a generated one.
func NewToken(meta Metadata, initialSupply uint64, creator Address, clock Clock, opts ...TokenOption) (*Token, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if initialSupply == 0 {
		return nil, ErrInvalidAmount.WithDetails("initial supply must be positive")
	}
	if creator == "" {
		return nil, ErrInvalidAddress.WithDetails("creator is required")
	}

	now := clock.Now()
	if IsExpired(now.Unix(), meta.ExpiresAt) {
		return nil, ErrInvalidExpiry.WithDetails(fmt.Sprintf("expires_at %d <= now %d", meta.ExpiresAt, now.Unix()))
	}

	o := tokenOptions{allocation: initialSupply}
	for _, opt := range opts {
		opt(&o)
	}
	if o.allocation > initialSupply {
		return nil, ErrInvalidAmount.WithDetails(
			fmt.Sprintf("creator allocation %d exceeds initial supply %d", o.allocation, initialSupply))
	}
	remainder := initialSupply - o.allocation
	if remainder > 0 && o.reserve == "" {
		return nil, ErrInvalidAddress.WithDetails("reserve address is required for a partial allocation")
	}

	if meta.Address == "" {
		addr, err := GenerateTokenAddress(now)
		if err != nil {
			return nil, err
		}
		meta.Address = addr
	}

	ledger := NewLedger()
	if o.allocation > 0 {
		if err := ledger.Credit(creator, o.allocation); err != nil {
			return nil, err
		}
	}
	if remainder > 0 {
		if err := ledger.Credit(o.reserve, remainder); err != nil {
			return nil, err
		}
	}

	return &Token{
		meta:    meta,
		clock:   clock,
		ledger:  ledger,
		version: 1,
	}, nil
}

// RestoreToken rebuilds a token from a persisted state.
// Expiry is not checked: expired tokens are restored as expired.
func RestoreToken(state *TokenState, clock Clock) (*Token, error) {
	if state == nil {
		return nil, ErrInvalidArgument.WithDetails("nil token state")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if err := state.Metadata.Validate(); err != nil {
		return nil, err
	}
	if state.Metadata.Address == "" {
		return nil, ErrInvalidArgument.WithDetails("token address is required")
	}

	ledger := NewLedger()
	for owner, amount := range state.Balances {
		if amount == 0 {
			continue
		}
		if err := ledger.Credit(owner, amount); err != nil {
			return nil, err
		}
	}
	if ledger.Supply() != state.Supply {
		return nil, ErrSupplyViolation.WithDetails(
			fmt.Sprintf("batch %d: balances sum to %d, supply %d", state.Metadata.BatchID, ledger.Supply(), state.Supply))
	}

	t := &Token{
		meta:    state.Metadata,
		clock:   clock,
		ledger:  ledger,
		version: state.Version,
	}
	if state.Expired {
		t.expired.Store(true)
	}
	return t, nil
}

// Metadata returns the token's immutable metadata.
func (t *Token) Metadata() Metadata {
	return t.meta
}

// BatchID returns the token's batch id.
func (t *Token) BatchID() BatchID {
	return t.meta.BatchID
}

// Address returns the token's registry handle.
func (t *Token) Address() TokenAddress {
	return t.meta.Address
}

// IsExpired reports whether the token is expired now.
func (t *Token) IsExpired() bool {
	return t.observeExpired(t.clock.Now().Unix())
}

// State returns the lifecycle state observed now.
func (t *Token) State() State {
	if t.IsExpired() {
		return StateExpired
	}
	return StateActive
}

// observeExpired latches the expired flag the first time now reaches the
// expiry and reports the latched value.
func (t *Token) observeExpired(now int64) bool {
	if t.expired.Load() {
		return true
	}
	if IsExpired(now, t.meta.ExpiresAt) {
		t.expired.Store(true)
		return true
	}
	return false
}

// SetCommitHook installs the hook invoked after every transfer.
func (t *Token) SetCommitHook(hook CommitHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commit = hook
}

// BalanceOf returns owner's balance.
func (t *Token) BalanceOf(owner Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.BalanceOf(owner)
}

// TotalSupply returns the token's supply.
func (t *Token) TotalSupply() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.Supply()
}

// Version returns the number of committed states (1 after creation).
func (t *Token) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// TransferByBatch moves amount from the caller to another owner.
//
// Checks run in order: batchID must equal the token's own batch id, the
// token must not be expired at the time of the call, the caller must hold
// amount. No check failure leaves a partial mutation behind.
func (t *Token) TransferByBatch(from, to Address, amount uint64, batchID BatchID) error {
	if batchID != t.meta.BatchID {
		return ErrBatchMismatch.WithDetails(fmt.Sprintf("token batch %d, got %d", t.meta.BatchID, batchID))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now().Unix()
	if t.observeExpired(now) {
		return expiredError(t.meta.ExpiresAt)
	}

	return Guard(now, t.meta.ExpiresAt, func() error {
		if err := t.ledger.Transfer(from, to, amount); err != nil {
			return err
		}
		t.version++

		if t.commit == nil {
			return nil
		}
		if err := t.commit(t.stateLocked()); err != nil {
			// Reverse leg cannot fail: to just received amount.
			_ = t.ledger.Transfer(to, from, amount)
			t.version--
			return ErrStorageError.WithCause(err)
		}
		return nil
	})
}

// Snapshot returns a consistent copy of the token.
func (t *Token) Snapshot() *TokenState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stateLocked()
}

// Verify checks supply conservation for the token.
func (t *Token) Verify() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.VerifyConservation()
}

func (t *Token) stateLocked() *TokenState {
	return &TokenState{
		Metadata: t.meta,
		Supply:   t.ledger.Supply(),
		Balances: t.ledger.Balances(),
		Version:  t.version,
		Expired:  t.expired.Load(),
	}
}
