// Package service implements the session lifecycle: credential verification,
// token issuance, refresh-token rotation, and revocation. The engine is
// stateless between calls; all durable state lives in the session store, and
// serialization is delegated to the store's conditional updates.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"token-session-service/internal/audit"
	"token-session-service/internal/metrics"
	"token-session-service/internal/security"
	sessiondomain "token-session-service/internal/session/domain"
	userdomain "token-session-service/internal/user/domain"
)

var tracer = otel.Tracer("session/service")

// ErrUnauthorized is the base sentinel for every credential or token
// rejection. Cause-specific errors below wrap it, so callers check
// errors.Is(err, ErrUnauthorized) while the message stays distinct per cause.
// Collapsing not-found, inactive, and bad-password into one kind avoids an
// account-existence oracle at the boundary.
var ErrUnauthorized = errors.New("unauthorized")

// ErrStoreUnavailable wraps any collaborator failure unrelated to business
// logic. Fatal: the engine does not retry.
var ErrStoreUnavailable = errors.New("session store unavailable")

var (
	ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrUnauthorized)
	ErrAccountInactive = fmt.Errorf("%w: account inactive", ErrUnauthorized)
	ErrBadCredentials  = fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	ErrInvalidToken    = fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	ErrWrongTokenKind  = fmt.Errorf("%w: wrong token kind", ErrUnauthorized)
	ErrSessionNotLive  = fmt.Errorf("%w: session no longer active", ErrUnauthorized)
)

// TokenPair is the outcome of Establish and Rotate. ExpiresIn is the access
// token lifetime in seconds; whether rotate responses expose it is a
// transport-level choice.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// UserStore is the minimal credential-store capability the engine needs.
type UserStore interface {
	// GetByEmail returns the user for email, or nil if not found.
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
}

// SessionStore is the minimal session persistence the engine needs. Rotate
// and the remove operations must be conditional single statements so that
// concurrent callers on the same row serialize in the store.
type SessionStore interface {
	Create(ctx context.Context, s *sessiondomain.Session) (int64, error)
	RotateRefreshToken(ctx context.Context, oldToken, newToken string, now time.Time) (int64, error)
	RemoveByID(ctx context.Context, id int64, now time.Time) (int64, error)
	RemoveAllByUser(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// PasswordVerifier compares a plaintext secret against a stored hash.
// security.Hasher satisfies it.
type PasswordVerifier interface {
	Compare(hash string, password []byte) error
}

// TokenCodec signs and verifies bearer tokens. security.TokenCodec satisfies it.
type TokenCodec interface {
	IssueAccess(userID, roleID, sessionID int64) (string, time.Time, error)
	IssueRefresh(userID, roleID int64) (string, time.Time, error)
	Parse(token string) (*security.TokenClaims, error)
	AccessTTL() time.Duration
}

// Engine orchestrates establish, rotate, and revoke over the injected
// collaborators. Configuration (TTLs, secret) is fixed at construction.
type Engine struct {
	users    UserStore
	sessions SessionStore
	verifier PasswordVerifier
	codec    TokenCodec
	auditor  audit.Recorder // may be nil
}

// NewEngine returns an Engine with the given dependencies. auditor may be nil
// to disable audit recording.
func NewEngine(users UserStore, sessions SessionStore, verifier PasswordVerifier, codec TokenCodec, auditor audit.Recorder) *Engine {
	return &Engine{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		codec:    codec,
		auditor:  auditor,
	}
}

// Establish verifies the credentials, persists a new session row holding the
// signed refresh token, and returns the token pair. No row is written when
// any verification step fails.
func (e *Engine) Establish(ctx context.Context, email, password string) (*TokenPair, error) {
	ctx, span := tracer.Start(ctx, "Establish")
	defer span.End()

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("establish", "error").Inc()
		return nil, fmt.Errorf("%w: lookup user: %v", ErrStoreUnavailable, err)
	}
	if user == nil {
		e.record(ctx, 0, audit.ActionEstablishDenied, "account not found")
		metrics.OperationsTotal.WithLabelValues("establish", "unauthorized").Inc()
		return nil, ErrAccountNotFound
	}
	if !user.Active {
		e.record(ctx, user.ID, audit.ActionEstablishDenied, "account inactive")
		metrics.OperationsTotal.WithLabelValues("establish", "unauthorized").Inc()
		return nil, ErrAccountInactive
	}
	if err := e.verifier.Compare(user.PasswordHash, []byte(password)); err != nil {
		e.record(ctx, user.ID, audit.ActionEstablishDenied, "bad credentials")
		metrics.OperationsTotal.WithLabelValues("establish", "unauthorized").Inc()
		return nil, ErrBadCredentials
	}

	refresh, _, err := e.codec.IssueRefresh(user.ID, user.RoleID)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("establish", "error").Inc()
		return nil, fmt.Errorf("%w: sign refresh: %v", ErrStoreUnavailable, err)
	}

	now := time.Now().UTC()
	sessionID, err := e.sessions.Create(ctx, &sessiondomain.Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("establish", "error").Inc()
		return nil, fmt.Errorf("%w: create session: %v", ErrStoreUnavailable, err)
	}

	access, _, err := e.codec.IssueAccess(user.ID, user.RoleID, sessionID)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("establish", "error").Inc()
		return nil, fmt.Errorf("%w: sign access: %v", ErrStoreUnavailable, err)
	}

	e.record(ctx, user.ID, audit.ActionEstablish, fmt.Sprintf("session %d", sessionID))
	metrics.OperationsTotal.WithLabelValues("establish", "ok").Inc()
	metrics.IssuedTokens.WithLabelValues(security.KindAccess).Inc()
	metrics.IssuedTokens.WithLabelValues(security.KindRefresh).Inc()

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(e.codec.AccessTTL().Seconds()),
	}, nil
}

// Rotate exchanges a live refresh token for a new token pair, overwriting the
// stored token value in place. Identity (user, role) comes from the decoded
// claims; the store lookup only proves liveness. A token that no longer
// matches any active row — already rotated, revoked, or tampered — is
// rejected, which closes the replay window.
func (e *Engine) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := tracer.Start(ctx, "Rotate")
	defer span.End()

	claims, err := e.codec.Parse(refreshToken)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("rotate", "unauthorized").Inc()
		return nil, ErrInvalidToken
	}
	if claims.Kind != security.KindRefresh {
		metrics.OperationsTotal.WithLabelValues("rotate", "unauthorized").Inc()
		return nil, ErrWrongTokenKind
	}

	newRefresh, _, err := e.codec.IssueRefresh(claims.UserID, claims.RoleID)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("rotate", "error").Inc()
		return nil, fmt.Errorf("%w: sign refresh: %v", ErrStoreUnavailable, err)
	}

	now := time.Now().UTC()
	sessionID, err := e.sessions.RotateRefreshToken(ctx, refreshToken, newRefresh, now)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("rotate", "error").Inc()
		return nil, fmt.Errorf("%w: rotate session: %v", ErrStoreUnavailable, err)
	}
	if sessionID == 0 {
		e.record(ctx, claims.UserID, audit.ActionRotateDenied, "refresh token not live")
		metrics.OperationsTotal.WithLabelValues("rotate", "unauthorized").Inc()
		return nil, ErrSessionNotLive
	}

	access, _, err := e.codec.IssueAccess(claims.UserID, claims.RoleID, sessionID)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("rotate", "error").Inc()
		return nil, fmt.Errorf("%w: sign access: %v", ErrStoreUnavailable, err)
	}

	e.record(ctx, claims.UserID, audit.ActionRotate, fmt.Sprintf("session %d", sessionID))
	metrics.OperationsTotal.WithLabelValues("rotate", "ok").Inc()
	metrics.IssuedTokens.WithLabelValues(security.KindAccess).Inc()
	metrics.IssuedTokens.WithLabelValues(security.KindRefresh).Inc()

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(e.codec.AccessTTL().Seconds()),
	}, nil
}

// RevokeSession soft-deletes the session embedded in the access token.
// Idempotent: a second call affects zero rows and returns 0 without error.
func (e *Engine) RevokeSession(ctx context.Context, accessToken string) (int64, error) {
	ctx, span := tracer.Start(ctx, "RevokeSession")
	defer span.End()

	claims, err := e.parseAccess(accessToken)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("revoke", "unauthorized").Inc()
		return 0, err
	}

	removed, err := e.sessions.RemoveByID(ctx, claims.SessionID, time.Now().UTC())
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("revoke", "error").Inc()
		return 0, fmt.Errorf("%w: remove session: %v", ErrStoreUnavailable, err)
	}

	e.record(ctx, claims.UserID, audit.ActionRevoke, fmt.Sprintf("session %d, removed %d", claims.SessionID, removed))
	metrics.OperationsTotal.WithLabelValues("revoke", "ok").Inc()
	return removed, nil
}

// RevokeAllForUser soft-deletes every active session owned by the access
// token's user ("log out everywhere"). Returns the number of rows affected.
func (e *Engine) RevokeAllForUser(ctx context.Context, accessToken string) (int64, error) {
	ctx, span := tracer.Start(ctx, "RevokeAllForUser")
	defer span.End()

	claims, err := e.parseAccess(accessToken)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("revoke_all", "unauthorized").Inc()
		return 0, err
	}

	removed, err := e.sessions.RemoveAllByUser(ctx, claims.UserID, time.Now().UTC())
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("revoke_all", "error").Inc()
		return 0, fmt.Errorf("%w: remove sessions: %v", ErrStoreUnavailable, err)
	}

	e.record(ctx, claims.UserID, audit.ActionRevokeAll, fmt.Sprintf("removed %d", removed))
	metrics.OperationsTotal.WithLabelValues("revoke_all", "ok").Inc()
	return removed, nil
}

func (e *Engine) parseAccess(accessToken string) (*security.TokenClaims, error) {
	claims, err := e.codec.Parse(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Kind != security.KindAccess {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func (e *Engine) record(ctx context.Context, userID int64, action, detail string) {
	if e.auditor != nil {
		e.auditor.Record(ctx, userID, action, detail)
	}
}
