package repository

import (
	"context"

	"token-session-service/internal/user/domain"
)

// Repository defines persistence for user accounts. The session engine only
// reads; Create exists for seeding and tests.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) (int64, error)
}
