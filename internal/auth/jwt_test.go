package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

func testSessions(ttl time.Duration) *Sessions {
	return NewSessions(SessionConfig{
		Secret: []byte(testSecret),
		Issuer: "blogd-test",
		TTL:    ttl,
	})
}

func TestSessions_RoundTrip(t *testing.T) {
	sessions := testSessions(time.Minute)
	user := &domain.User{
		ID:          uuid.New(),
		Email:       "author@example.com",
		Username:    "author",
		IsVerified:  true,
		IsSuperuser: false,
	}

	raw, err := sessions.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}

	claims, err := sessions.ValidateAccessToken(raw)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email || claims.Username != user.Username {
		t.Errorf("claims = %+v, want user attributes carried over", claims)
	}
	if !claims.Verified {
		t.Error("verified flag should be carried over")
	}
}

func TestSessions_Expired(t *testing.T) {
	sessions := testSessions(-time.Minute)
	raw, err := sessions.IssueAccessToken(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	if _, err := sessions.ValidateAccessToken(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateAccessToken = %v, want ErrInvalidToken", err)
	}
}

func TestSessions_WrongIssuer(t *testing.T) {
	issued := NewSessions(SessionConfig{Secret: []byte(testSecret), Issuer: "other-service", TTL: time.Minute})
	raw, err := issued.IssueAccessToken(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	if _, err := testSessions(time.Minute).ValidateAccessToken(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateAccessToken = %v, want ErrInvalidToken", err)
	}
}

func TestSessions_WrongKey(t *testing.T) {
	issued := NewSessions(SessionConfig{Secret: []byte("another-secret-key-entirely-0002"), Issuer: "blogd-test", TTL: time.Minute})
	raw, err := issued.IssueAccessToken(&domain.User{ID: uuid.New()})
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	if _, err := testSessions(time.Minute).ValidateAccessToken(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateAccessToken = %v, want ErrInvalidToken", err)
	}
}

func TestSessions_Garbage(t *testing.T) {
	if _, err := testSessions(time.Minute).ValidateAccessToken("not.a.jwt"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("ValidateAccessToken = %v, want ErrInvalidToken", err)
	}
}
