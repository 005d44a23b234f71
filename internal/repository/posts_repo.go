package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

// PostsRepository handles blog post persistence.
type PostsRepository struct {
	db *sql.DB
}

// NewPostsRepository creates a new posts repository.
func NewPostsRepository(db *sql.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

const postColumns = `id, title, content, author_id, category_id, published, created_at, updated_at`

// Create inserts a new post.
func (r *PostsRepository) Create(ctx context.Context, p *domain.Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id, category_id, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Content, p.AuthorID, p.CategoryID, p.Published, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a post by ID.
func (r *PostsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	p := &domain.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CategoryID,
		&p.Published, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublished returns published posts, newest first.
func (r *PostsRepository) ListPublished(ctx context.Context) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE published = TRUE ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p := &domain.Post{}
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CategoryID,
			&p.Published, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Update rewrites the mutable fields of a post.
func (r *PostsRepository) Update(ctx context.Context, p *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, category_id = $4, published = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Content, p.CategoryID, p.Published, time.Now(),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// Delete removes a post and, via FK cascade, its comments.
func (r *PostsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
