package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

// TokensRepository handles token row persistence. The active column is a
// one-way latch: it is only ever flipped from TRUE to FALSE.
type TokensRepository struct {
	db *sql.DB
}

// NewTokensRepository creates a new tokens repository.
func NewTokensRepository(db *sql.DB) *TokensRepository {
	return &TokensRepository{db: db}
}

// Create inserts a new token row.
func (r *TokensRepository) Create(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (id, raw, owner_id, created_at, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Raw, t.OwnerID, t.CreatedAt, t.ExpiresAt, t.Active,
	)
	return err
}

// GetByRaw retrieves a token row by its unique wire string.
func (r *TokensRepository) GetByRaw(ctx context.Context, raw string) (*domain.Token, error) {
	query := `
		SELECT id, raw, owner_id, created_at, expires_at, active
		FROM tokens
		WHERE raw = $1
	`
	t := &domain.Token{}
	err := r.db.QueryRowContext(ctx, query, raw).Scan(
		&t.ID, &t.Raw, &t.OwnerID, &t.CreatedAt, &t.ExpiresAt, &t.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Consume flips the active latch, guarded by its current value so that of
// two concurrent consumers exactly one succeeds. The loser gets
// domain.ErrTokenInactive. When apply is non-nil it runs in the same
// transaction as the flip, so the latch and apply's writes commit or roll
// back together.
func (r *TokensRepository) Consume(ctx context.Context, id uuid.UUID, apply func(ctx context.Context, q Querier) error) error {
	query := `
		UPDATE tokens
		SET active = FALSE
		WHERE id = $1 AND active = TRUE
	`
	return Tx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrTokenInactive
		}
		if apply != nil {
			return apply(ctx, tx)
		}
		return nil
	})
}

// Deactivate latches the row unconditionally. Used when a read observes the
// row past its expiry.
func (r *TokensRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tokens SET active = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// DeleteSpent removes every row that is inactive or past its expiry,
// returning the number deleted. Safe to run concurrently with issuance.
func (r *TokensRepository) DeleteSpent(ctx context.Context) (int64, error) {
	query := `DELETE FROM tokens WHERE active = FALSE OR expires_at < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
