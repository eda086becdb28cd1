package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"token-session-service/internal/audit/domain"
	auditrepo "token-session-service/internal/audit/repository"
)

// Actions recorded by the session engine.
const (
	ActionEstablish       = "session.establish"
	ActionEstablishDenied = "session.establish_denied"
	ActionRotate          = "session.rotate"
	ActionRotateDenied    = "session.rotate_denied"
	ActionRevoke          = "session.revoke"
	ActionRevokeAll       = "session.revoke_all"
)

// Recorder writes a single audit event. Used by the session lifecycle code paths.
// Record is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, userID int64, action, detail string)
}

type clientIPKey struct{}

// WithClientIP returns a context carrying the caller's address, set at the
// transport edge so audit entries can attribute events without the engine
// knowing about HTTP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the caller address stored by WithClientIP, or "".
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Recorder that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// Record writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, userID int64, action, detail string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IP:        ClientIP(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}
