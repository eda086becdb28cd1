package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"token-session-service/internal/session/domain"
)

// SQLRepository implements Repository over database/sql. The statements are
// portable across the Postgres and SQLite backends; both support
// UPDATE ... RETURNING, which keeps rotation a single round trip.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository returns a session repository that uses the given db for persistence.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create persists the session and returns the store-assigned id.
func (r *SQLRepository) Create(ctx context.Context, s *domain.Session) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO sessions (user_id, refresh_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		s.UserID, s.RefreshToken, s.CreatedAt, s.UpdatedAt,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, refresh_token, created_at, updated_at, removed_at
		 FROM sessions WHERE id = $1`,
		id,
	)
	var s domain.Session
	var removedAt sql.NullTime
	if err := row.Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.CreatedAt, &s.UpdatedAt, &removedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if removedAt.Valid {
		s.RemovedAt = &removedAt.Time
	}
	return &s, nil
}

// RotateRefreshToken overwrites the refresh token on the active row holding
// oldToken. Matching on the exact stored string is the anti-replay check: a
// token that was already rotated out no longer matches any active row, so of
// two concurrent rotations of the same token exactly one sees a matched row.
func (r *SQLRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string, now time.Time) (int64, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET refresh_token = $1, updated_at = $2
		 WHERE refresh_token = $3 AND removed_at IS NULL
		 RETURNING id`,
		newToken, now, oldToken,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

// RemoveByID sets removed_at on the active session with the given id.
// The removed_at IS NULL guard makes double-revoke affect zero rows.
func (r *SQLRepository) RemoveByID(ctx context.Context, id int64, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET removed_at = $1 WHERE id = $2 AND removed_at IS NULL`,
		now, id,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemoveAllByUser sets removed_at on every active session owned by userID.
func (r *SQLRepository) RemoveAllByUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET removed_at = $1 WHERE user_id = $2 AND removed_at IS NULL`,
		now, userID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
