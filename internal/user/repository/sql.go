package repository

import (
	"context"
	"database/sql"
	"errors"

	"token-session-service/internal/user/domain"
)

// SQLRepository is a user repository over database/sql. The statements are
// portable across the Postgres and SQLite backends.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository returns a user repository that uses the given db for persistence.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// GetByEmail returns the user with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, role_id, active, password_hash, created_at FROM users WHERE email = $1`,
		email,
	)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.RoleID, &u.Active, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create persists the user and returns the store-assigned id.
func (r *SQLRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, role_id, active, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		u.Email, u.RoleID, u.Active, u.PasswordHash, u.CreatedAt,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
