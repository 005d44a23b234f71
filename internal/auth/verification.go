package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/repository"
)

// TokenStore issues and validates single-use tokens. Implemented by
// token.Store.
type TokenStore interface {
	Issue(ctx context.Context, user *domain.User, purpose domain.TokenPurpose) (*domain.Token, error)
	Validate(ctx context.Context, raw string, purpose domain.TokenPurpose, consume bool) (*domain.User, error)
	ValidateAndConsume(ctx context.Context, raw string, purpose domain.TokenPurpose, apply func(ctx context.Context, q repository.Querier, user *domain.User) error) (*domain.User, error)
}

// UserWriter persists the side effects of a successful validation. The Tx
// variants run against the consuming transaction's Querier. Implemented by
// repository.UsersRepository.
type UserWriter interface {
	MarkVerifiedTx(ctx context.Context, q repository.Querier, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordTx(ctx context.Context, q repository.Querier, id uuid.UUID, passwordHash string) error
}

// VerificationService issues and confirms email verification tokens.
type VerificationService struct {
	store TokenStore
	users UserWriter
}

// NewVerificationService creates a new verification service.
func NewVerificationService(store TokenStore, users UserWriter) *VerificationService {
	return &VerificationService{store: store, users: users}
}

// IssueVerification mints a verification token for an unverified user. The
// caller is responsible for delivering the raw string out-of-band.
func (s *VerificationService) IssueVerification(ctx context.Context, user *domain.User) (string, error) {
	if user.IsVerified {
		return "", domain.ErrAlreadyVerified
	}
	t, err := s.store.Issue(ctx, user, domain.PurposeVerify)
	if err != nil {
		return "", err
	}
	return t.Raw, nil
}

// Confirm consumes a verification token and marks its owner verified, both
// in one transaction: a failed write leaves the token consumable. The token
// is still burned when the owner turns out to be verified already, the same
// way a reused link is.
func (s *VerificationService) Confirm(ctx context.Context, rawToken string) (*domain.User, error) {
	var alreadyVerified bool
	user, err := s.store.ValidateAndConsume(ctx, rawToken, domain.PurposeVerify,
		func(ctx context.Context, q repository.Querier, u *domain.User) error {
			if u.IsVerified {
				alreadyVerified = true
				return nil
			}
			return s.users.MarkVerifiedTx(ctx, q, u.ID)
		})
	if err != nil {
		return nil, err
	}
	if alreadyVerified {
		return nil, domain.ErrAlreadyVerified
	}
	user.IsVerified = true
	return user, nil
}
