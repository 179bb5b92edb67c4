// Package sessions declares the session store: one row per issued bearer
// token, deleted on logout.
package sessions

import (
	"context"
	"time"
)

// Repository defines operations for recording, checking and revoking
// sessions.
type Repository interface {
	// Create records a session for token and returns its id.
	Create(ctx context.Context, userID, token string, createdAt, expiresAt time.Time) (string, error)

	// DeleteByToken removes the session with exactly this token and returns the
	// number of rows removed (0 or 1).
	DeleteByToken(ctx context.Context, token string) (int64, error)

	// Exists reports whether a session for token is still stored.
	Exists(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
