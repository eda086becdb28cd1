package security

import (
	"testing"
	"time"
)

func newTestCodec() *TokenCodec {
	return NewTokenCodec([]byte("test-secret"), 15*time.Minute, 24*time.Hour)
}

func TestTokenCodec_IssueAccess(t *testing.T) {
	c := newTestCodec()

	token, exp, err := c.IssueAccess(1, 2, 10)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("access token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := c.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 1 || claims.RoleID != 2 || claims.SessionID != 10 {
		t.Errorf("claims: got userID=%d roleID=%d sessionID=%d", claims.UserID, claims.RoleID, claims.SessionID)
	}
	if claims.Kind != KindAccess {
		t.Errorf("Kind = %q, want %q", claims.Kind, KindAccess)
	}
}

func TestTokenCodec_IssueRefresh(t *testing.T) {
	c := newTestCodec()

	token, exp, err := c.IssueRefresh(1, 2)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := c.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 1 || claims.RoleID != 2 {
		t.Errorf("claims: got userID=%d roleID=%d", claims.UserID, claims.RoleID)
	}
	if claims.SessionID != 0 {
		t.Errorf("refresh token should not carry a session id, got %d", claims.SessionID)
	}
	if claims.Kind != KindRefresh {
		t.Errorf("Kind = %q, want %q", claims.Kind, KindRefresh)
	}
}

func TestTokenCodec_ParseMalformed(t *testing.T) {
	c := newTestCodec()
	if _, err := c.Parse("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Parse malformed: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_ParseWrongSecret(t *testing.T) {
	c := newTestCodec()
	other := NewTokenCodec([]byte("other-secret"), 15*time.Minute, 24*time.Hour)

	token, _, err := c.IssueAccess(1, 2, 10)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := other.Parse(token); err != ErrInvalidToken {
		t.Errorf("Parse with wrong secret: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_ParseExpired(t *testing.T) {
	c := NewTokenCodec([]byte("test-secret"), -time.Minute, -time.Minute)

	token, _, err := c.IssueAccess(1, 2, 10)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := c.Parse(token); err != ErrInvalidToken {
		t.Errorf("Parse expired: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_AccessTTL(t *testing.T) {
	c := newTestCodec()
	if got := c.AccessTTL(); got != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want %v", got, 15*time.Minute)
	}
}
