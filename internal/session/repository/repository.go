package repository

import (
	"context"
	"time"

	"token-session-service/internal/session/domain"
)

// Repository defines persistence for sessions. Rotate and the remove
// operations are single conditional statements: the WHERE clause carries the
// liveness check so concurrent callers serialize on the row without explicit
// locking, and losers observe "no row matched" rather than an error.
type Repository interface {
	// Create persists a new session and returns the store-assigned id.
	Create(ctx context.Context, s *domain.Session) (int64, error)
	// GetByID returns the session for id, or nil if not found.
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	// RotateRefreshToken replaces oldToken with newToken on the active row
	// holding oldToken and returns that row's id. Returns 0 when no active row
	// matched (already rotated or revoked).
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, now time.Time) (int64, error)
	// RemoveByID soft-deletes the active session with the given id.
	// Returns the number of rows affected (0 or 1); revoking twice affects 0.
	RemoveByID(ctx context.Context, id int64, now time.Time) (int64, error)
	// RemoveAllByUser soft-deletes every active session owned by userID and
	// returns the number of rows affected.
	RemoveAllByUser(ctx context.Context, userID int64, now time.Time) (int64, error)
}
