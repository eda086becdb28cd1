package repository

import (
	"context"
	"database/sql"

	"token-session-service/internal/audit/domain"
)

// SQLRepository persists audit entries over database/sql (Postgres or SQLite).
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository returns an audit repository that uses the given db for persistence.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts one audit entry.
func (r *SQLRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, detail, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.Action, entry.Detail, entry.IP, entry.CreatedAt,
	)
	return err
}
