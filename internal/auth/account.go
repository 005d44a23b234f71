package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/repository"
)

// AccountService handles signup, login and password changes. Verification
// state is only ever mutated through the token services.
type AccountService struct {
	users *repository.UsersRepository
}

// NewAccountService creates a new account service.
func NewAccountService(users *repository.UsersRepository) *AccountService {
	return &AccountService{users: users}
}

// Signup creates an unverified user with a hashed password. The email is
// normalized before storage.
func (s *AccountService) Signup(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !exists {
		exists, err = s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
		DateJoined:   now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies email and password.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces the password of a logged-in user after checking
// the old one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(oldPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
