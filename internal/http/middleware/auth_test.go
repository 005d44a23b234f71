package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/auth"
	"github.com/blogosphere/blogd/internal/domain"
)

func testSessions() *auth.Sessions {
	return auth.NewSessions(auth.SessionConfig{
		Secret: []byte("middleware-test-secret-key-000001"),
		Issuer: "blogd-test",
		TTL:    time.Minute,
	})
}

func bearerFor(t *testing.T, sessions *auth.Sessions, user *domain.User) string {
	t.Helper()
	raw, err := sessions.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("IssueAccessToken failed: %v", err)
	}
	return "Bearer " + raw
}

func TestAuth(t *testing.T) {
	sessions := testSessions()
	user := &domain.User{ID: uuid.New(), Email: "a@example.com", Username: "a", IsVerified: true}

	var gotID uuid.UUID
	handler := Auth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", bearerFor(t, sessions, user), http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotID = uuid.Nil
			r := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			if tc.authHeader != "" {
				r.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusNoContent && gotID != user.ID {
				t.Errorf("context user = %v, want %v", gotID, user.ID)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	sessions := testSessions()
	user := &domain.User{ID: uuid.New(), IsVerified: true, IsSuperuser: true}

	var actorSeen bool
	handler := OptionalAuth(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, actorSeen = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous request passes through with no actor.
	r := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if actorSeen {
		t.Error("anonymous request should carry no actor")
	}

	// Authenticated request resolves the actor.
	r = httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	r.Header.Set("Authorization", bearerFor(t, sessions, user))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !actorSeen {
		t.Error("bearer request should carry an actor")
	}

	// A bad token degrades to anonymous rather than failing the request.
	r = httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	r.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequireVerified(t *testing.T) {
	sessions := testSessions()
	verified := &domain.User{ID: uuid.New(), IsVerified: true}
	unverified := &domain.User{ID: uuid.New()}

	handler := Auth(sessions)(RequireVerified()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name       string
		user       *domain.User
		wantStatus int
	}{
		{"verified", verified, http.StatusNoContent},
		{"unverified", unverified, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/v1/password/change", nil)
			r.Header.Set("Authorization", bearerFor(t, sessions, tc.user))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestGetActor_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	actor, ok := GetActor(r.Context())
	if ok {
		t.Error("ok = true for a bare context")
	}
	if actor.ID != uuid.Nil || actor.IsVerified || actor.IsSuperuser {
		t.Errorf("actor = %+v, want zero value", actor)
	}
}
