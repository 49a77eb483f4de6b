// Package domain defines the core domain models for tokfactory.
package domain

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a token.
type State string

const (
	// StateActive means mutating operations are permitted.
	StateActive State = "active"

	// StateExpired means the expiry timestamp has passed. Terminal.
	StateExpired State = "expired"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// IsExpired reports whether now (unix seconds) is at or past expiresAt.
func IsExpired(now, expiresAt int64) bool {
	return now >= expiresAt
}

// StateAt returns the token state observed at now.
func StateAt(now, expiresAt int64) State {
	if IsExpired(now, expiresAt) {
		return StateExpired
	}
	return StateActive
}

// Guard runs op only if the token is not expired at now.
// An expired token fails with ErrTokenExpired and op is never invoked.
func Guard(now, expiresAt int64, op func() error) error {
	if IsExpired(now, expiresAt) {
		return expiredError(expiresAt)
	}
	return op()
}

func expiredError(expiresAt int64) error {
	return ErrTokenExpired.WithDetails(fmt.Sprintf("expired at %s",
		time.Unix(expiresAt, 0).UTC().Format(time.RFC3339)))
}
