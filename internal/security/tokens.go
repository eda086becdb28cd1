package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token is malformed, expired, or carries a bad signature.
var ErrInvalidToken = errors.New("invalid token")

// Token kinds. A token is only accepted by the operation that matches its kind:
// rotate consumes refresh tokens, revoke consumes access tokens.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// TokenClaims holds the JWT claims for both token kinds. SessionID is set on
// access tokens only; refresh tokens are resolved to their session through the
// store, since the session id may change identity across the row's lifetime.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId"`
	RoleID    int64  `json:"roleId"`
	SessionID int64  `json:"sessionId,omitempty"`
	Kind      string `json:"kind"`
}

// TokenCodec issues and parses HS256-signed access and refresh tokens with a shared secret.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec returns a TokenCodec signing with secret. accessTTL and
// refreshTTL set the exp claim of the respective token kinds.
func NewTokenCodec(secret []byte, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccess issues a short-lived access token embedding the session id.
// Returns the signed token and its expiration time.
func (c *TokenCodec) IssueAccess(userID, roleID, sessionID int64) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.accessTTL)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		RoleID:    roleID,
		SessionID: sessionID,
		Kind:      KindAccess,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh token. It carries no session id;
// the signed value itself is the store's lookup key while the session is active.
// The jti claim makes every issued token distinct even within the same second,
// which the store's active-token uniqueness relies on.
func (c *TokenCodec) IssueRefresh(userID, roleID int64) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.refreshTTL)
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		RoleID: roleID,
		Kind:   KindRefresh,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	return token, expiresAt, err
}

// Parse verifies the signature and expiry of tokenString and returns its claims.
// Only HS256 is accepted. Returns ErrInvalidToken for any verification failure;
// callers branch on the returned claims' Kind, not on the error.
func (c *TokenCodec) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AccessTTL reports the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}
