package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogosphere/blogd/internal/domain"
)

// AccessClaims is the payload of a login access token. Distinct from the
// verification/reset token claims: access tokens are stateless and carry
// the attributes the policy predicates consume.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Verified  bool   `json:"is_verified"`
	Superuser bool   `json:"is_superuser,omitempty"`
}

// SessionConfig holds access-token settings.
type SessionConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Sessions issues and validates stateless login access tokens.
type Sessions struct {
	config SessionConfig
}

// NewSessions creates a session token issuer.
func NewSessions(config SessionConfig) *Sessions {
	if config.TTL == 0 {
		config.TTL = 15 * time.Minute
	}
	return &Sessions{config: config}
}

// IssueAccessToken signs a short-lived access token for user.
func (s *Sessions) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
		Email:     user.Email,
		Username:  user.Username,
		Verified:  user.IsVerified,
		Superuser: user.IsSuperuser,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// ValidateAccessToken verifies signature, issuer and expiry.
func (s *Sessions) ValidateAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
