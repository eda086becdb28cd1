package domain

import "time"

// User is an account record. The session engine treats it as read-only:
// lookups and the active check only. Account management lives elsewhere.
type User struct {
	ID           int64
	Email        string
	RoleID       int64
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
}
