package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

// CommentsRepository handles comment persistence.
type CommentsRepository struct {
	db *sql.DB
}

// NewCommentsRepository creates a new comments repository.
func NewCommentsRepository(db *sql.DB) *CommentsRepository {
	return &CommentsRepository{db: db}
}

// Create inserts a new comment.
func (r *CommentsRepository) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.PostID, c.AuthorID, c.Content, c.CreatedAt)
	return err
}

// GetByID retrieves a comment by ID.
func (r *CommentsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE id = $1
	`
	c := &domain.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPost returns a post's comments, oldest first.
func (r *CommentsRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes a comment.
func (r *CommentsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
