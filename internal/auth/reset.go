package auth

import (
	"context"
	"fmt"

	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/repository"
)

// PasswordResetService issues and confirms password reset tokens. Only
// verified accounts may reset; an unverified account must confirm its email
// first.
type PasswordResetService struct {
	store TokenStore
	users UserWriter
}

// NewPasswordResetService creates a new password reset service.
func NewPasswordResetService(store TokenStore, users UserWriter) *PasswordResetService {
	return &PasswordResetService{store: store, users: users}
}

// IssueReset mints a reset token for a verified user.
func (s *PasswordResetService) IssueReset(ctx context.Context, user *domain.User) (string, error) {
	if !user.IsVerified {
		return "", domain.ErrNotVerified
	}
	t, err := s.store.Issue(ctx, user, domain.PurposePasswordReset)
	if err != nil {
		return "", err
	}
	return t.Raw, nil
}

// Peek validates a reset token without burning it, for the form-render step
// of the two-step flow.
func (s *PasswordResetService) Peek(ctx context.Context, rawToken string) (*domain.User, error) {
	return s.store.Validate(ctx, rawToken, domain.PurposePasswordReset, false)
}

// ConfirmReset validates a reset token and stores the new password on its
// owner. With consume true the token is burned atomically with the password
// write; the peek step of the legacy two-step flow passes false. The new
// password is vetted before the token is touched: a rejected password must
// not burn the user's only reset link.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, rawToken, newPassword string, consume bool) (*domain.User, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return nil, err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	if !consume {
		user, err := s.store.Validate(ctx, rawToken, domain.PurposePasswordReset, false)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
		user.PasswordHash = hash
		return user, nil
	}

	user, err := s.store.ValidateAndConsume(ctx, rawToken, domain.PurposePasswordReset,
		func(ctx context.Context, q repository.Querier, u *domain.User) error {
			return s.users.UpdatePasswordTx(ctx, q, u.ID, hash)
		})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}
