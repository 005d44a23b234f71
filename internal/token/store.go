package token

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
	"github.com/blogosphere/blogd/internal/metrics"
	"github.com/blogosphere/blogd/internal/repository"
)

// Repo persists token rows. Consume must be atomic with the active check:
// of two concurrent consumers only one may see the row active.
type Repo interface {
	Create(ctx context.Context, t *domain.Token) error
	// GetByRaw returns domain.ErrTokenNotFound when no row matches.
	GetByRaw(ctx context.Context, raw string) (*domain.Token, error)
	// Consume flips active to false iff it is currently true, returning
	// domain.ErrTokenInactive when the latch was already down. A non-nil
	// apply runs in the same transaction as the flip; its error rolls the
	// flip back.
	Consume(ctx context.Context, id uuid.UUID, apply func(ctx context.Context, q repository.Querier) error) error
	// Deactivate latches the row unconditionally (lazy expiry observation).
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// UserGetter resolves token owners.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// Store is the single source of truth for token issuance and one-shot
// consumption. Issuance never revokes earlier still-active tokens for the
// same user, so several valid links may be outstanding at once.
type Store struct {
	codec  *Codec
	tokens Repo
	users  UserGetter
	now    func() time.Time
}

// NewStore creates a token store.
func NewStore(codec *Codec, tokens Repo, users UserGetter) *Store {
	return &Store{codec: codec, tokens: tokens, users: users, now: time.Now}
}

// Issue mints a token for user with the fixed TTL, persists the row active,
// and returns it with Raw populated.
func (s *Store) Issue(ctx context.Context, user *domain.User, purpose domain.TokenPurpose) (*domain.Token, error) {
	now := s.now()
	id := uuid.New()

	raw, err := s.codec.Encode(id, user.ID, purpose, now, now.Add(domain.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}

	t := &domain.Token{
		ID:        id,
		Raw:       raw,
		OwnerID:   user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TokenTTL),
		Active:    true,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(string(purpose)).Inc()
	return t, nil
}

// resolve runs every check short of consumption, in order: row existence,
// the active latch, payload integrity, purpose, owner agreement between
// payload and row, and expiry.
func (s *Store) resolve(ctx context.Context, raw string, purpose domain.TokenPurpose) (*domain.Token, *domain.User, error) {
	row, err := s.tokens.GetByRaw(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	if !row.Active {
		return nil, nil, domain.ErrTokenInactive
	}

	claims, err := s.codec.Decode(raw)
	if err != nil {
		return nil, nil, err
	}
	if claims.Purpose != purpose {
		return nil, nil, domain.ErrWrongPurpose
	}
	owner, err := claims.Owner()
	if err != nil {
		return nil, nil, domain.ErrInvalidToken
	}
	if owner != row.OwnerID {
		return nil, nil, domain.ErrOwnerMismatch
	}

	// Expiry is checked from the payload, not just the row; both were
	// written from the same instant at issuance and must agree. An expired
	// row still marked active is latched here so later reads short-circuit
	// without waiting for the janitor.
	now := s.now()
	if !now.Before(claims.ExpiresAt.Time) || row.Expired(now) {
		if err := s.tokens.Deactivate(ctx, row.ID); err != nil {
			return nil, nil, fmt.Errorf("failed to deactivate expired token: %w", err)
		}
		return nil, nil, domain.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, row.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	return row, user, nil
}

// Validate resolves raw to its row and owner. With consume set the active
// latch is flipped atomically before returning; a concurrent consumer that
// loses the race observes ErrTokenInactive.
func (s *Store) Validate(ctx context.Context, raw string, purpose domain.TokenPurpose, consume bool) (*domain.User, error) {
	row, user, err := s.resolve(ctx, raw, purpose)
	if err != nil {
		return nil, err
	}

	if consume {
		if err := s.tokens.Consume(ctx, row.ID, nil); err != nil {
			return nil, err
		}
		metrics.TokensConsumed.WithLabelValues(string(purpose)).Inc()
	}
	return user, nil
}

// ValidateAndConsume is consuming validation with a side effect: apply runs
// in the same transaction as the latch flip, so the consumption and apply's
// writes commit or roll back together. An apply error leaves the token
// consumable.
func (s *Store) ValidateAndConsume(ctx context.Context, raw string, purpose domain.TokenPurpose, apply func(ctx context.Context, q repository.Querier, user *domain.User) error) (*domain.User, error) {
	row, user, err := s.resolve(ctx, raw, purpose)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Consume(ctx, row.ID, func(ctx context.Context, q repository.Querier) error {
		return apply(ctx, q, user)
	}); err != nil {
		return nil, err
	}
	metrics.TokensConsumed.WithLabelValues(string(purpose)).Inc()
	return user, nil
}
