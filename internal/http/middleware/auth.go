package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/auth"
	"github.com/blogosphere/blogd/internal/httputil"
	"github.com/blogosphere/blogd/internal/policy"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// ClaimsKey is the context key for the access token claims.
	ClaimsKey contextKey = "claims"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func withClaims(r *http.Request, claims *auth.AccessClaims) (*http.Request, bool) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return r, false
	}
	ctx := context.WithValue(r.Context(), UserIDKey, userID)
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return r.WithContext(ctx), true
}

// Auth creates middleware that requires a valid bearer access token.
func Auth(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				httputil.Error(w, http.StatusUnauthorized, "missing authorization")
				return
			}

			claims, err := sessions.ValidateAccessToken(tokenString)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r, ok := withClaims(r, claims)
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "invalid token subject")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth resolves a bearer token when present but lets anonymous
// requests through. Read endpoints use it so the policy predicates see the
// real actor when there is one.
func OptionalAuth(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := bearerToken(r); tokenString != "" {
				if claims, err := sessions.ValidateAccessToken(tokenString); err == nil {
					r, _ = withClaims(r, claims)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerified rejects actors without a confirmed email. Must run after
// Auth.
func RequireVerified() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !policy.Verified(actor) {
				httputil.Error(w, http.StatusForbidden, "email verification required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return id, ok
}

// GetClaims retrieves the access token claims from the context.
func GetClaims(ctx context.Context) (*auth.AccessClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.AccessClaims)
	return claims, ok
}

// GetActor builds the policy actor for the request. Anonymous requests get
// the zero actor and ok is false.
func GetActor(ctx context.Context) (policy.Actor, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return policy.Actor{}, false
	}
	id, ok := GetUserID(ctx)
	if !ok {
		return policy.Actor{}, false
	}
	return policy.Actor{
		ID:          id,
		IsVerified:  claims.Verified,
		IsSuperuser: claims.Superuser,
	}, true
}
