package domain

import "time"

// AuditLog is one recorded auth event (establish, rotate, revoke).
// UserID is 0 when the event could not be attributed to an account.
// IP is the caller address as seen at the transport edge, empty when the
// event did not originate from a request.
type AuditLog struct {
	ID        string
	UserID    int64
	Action    string
	Detail    string
	IP        string
	CreatedAt time.Time
}
