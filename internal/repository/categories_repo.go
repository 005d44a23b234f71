package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/blogosphere/blogd/internal/domain"
)

// CategoriesRepository handles category persistence.
type CategoriesRepository struct {
	db *sql.DB
}

// NewCategoriesRepository creates a new categories repository.
func NewCategoriesRepository(db *sql.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// Create inserts a new category.
func (r *CategoriesRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `INSERT INTO categories (id, name, color) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Color)
	return err
}

// GetByID retrieves a category by ID.
func (r *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, name, color FROM categories WHERE id = $1`
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all categories ordered by name.
func (r *CategoriesRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c := &domain.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Update renames a category.
func (r *CategoriesRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `UPDATE categories SET name = $2, color = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Color)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category; posts keep existing with a null category.
func (r *CategoriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
