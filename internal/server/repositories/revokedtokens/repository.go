// Package revokedtokens declares the server-side repository contract for the
// access token denylist consulted on every authenticated request.
package revokedtokens

import (
	"context"
	"time"
)

// Repository records revoked token ids until their natural expiry.
type Repository interface {
	// Revoke marks jti as revoked until expiresAt. Revoking the same jti
	// twice is not an error.
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error

	// IsRevoked reports whether jti is on the list and not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpired drops entries whose expiry is before the given time and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
