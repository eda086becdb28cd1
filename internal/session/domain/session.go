package domain

import "time"

// Session tracks the currently-live refresh token for one login.
// A row is created by establish, its RefreshToken is replaced in place by
// rotate, and RemovedAt is set by revoke. Rows are never hard-deleted:
// RemovedAt distinguishes "was issued" from "currently valid" and preserves
// the audit trail. At most one row with a given RefreshToken has RemovedAt nil.
type Session struct {
	ID           int64
	UserID       int64
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	RemovedAt    *time.Time // nil while the session is active
}

// Active reports whether the session has not been revoked.
func (s *Session) Active() bool {
	return s.RemovedAt == nil
}
