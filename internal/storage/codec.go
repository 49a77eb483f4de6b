package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/yndnr/tokfactory/internal/core/domain"
)

// TokenKeyPrefix prefixes every persisted token record.
const TokenKeyPrefix = "token/"

// TokenKey returns the KV key of a batch. The batch id is zero-padded to
// 20 digits so that a prefix scan returns records in batch order.
func TokenKey(id domain.BatchID) []byte {
	return []byte(fmt.Sprintf("%s%020d", TokenKeyPrefix, uint64(id)))
}

// ParseTokenKey extracts the batch id from a token key.
func ParseTokenKey(key []byte) (domain.BatchID, error) {
	s := string(key)
	if !strings.HasPrefix(s, TokenKeyPrefix) {
		return 0, fmt.Errorf("not a token key: %q", s)
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(s, TokenKeyPrefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token key %q: %w", s, err)
	}
	return domain.BatchID(id), nil
}

// EncodeTokenState serializes a token state record.
func EncodeTokenState(state *domain.TokenState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode token state: %w", err)
	}
	return data, nil
}

// DecodeTokenState deserializes a token state record.
func DecodeTokenState(data []byte) (*domain.TokenState, error) {
	var state domain.TokenState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode token state: %w", err)
	}
	if state.Balances == nil {
		state.Balances = map[domain.Address]uint64{}
	}
	return &state, nil
}
