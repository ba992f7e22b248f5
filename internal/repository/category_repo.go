package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"anniversary-api/internal/domain"
)

// CategoryRepository expone solo operaciones acotadas al dueño.
type CategoryRepository interface {
	List(ctx context.Context, ownerID int64) ([]domain.Category, error)
	Get(ctx context.Context, ownerID, id int64) (domain.Category, error)
	Create(ctx context.Context, ownerID int64, name string) (domain.Category, error)
	Update(ctx context.Context, ownerID, id int64, name string) (domain.Category, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type PgCategoryRepository struct {
	db DBTX
}

func NewPgCategoryRepository(db DBTX) *PgCategoryRepository {
	return &PgCategoryRepository{db: db}
}

func (r *PgCategoryRepository) List(ctx context.Context, ownerID int64) ([]domain.Category, error) {
	const query = `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *PgCategoryRepository) Get(ctx context.Context, ownerID, id int64) (domain.Category, error) {
	const query = `
		SELECT id, user_id, name, created_at, updated_at
		FROM categories
		WHERE id = $1 AND user_id = $2
	`
	return r.one(r.db.QueryRow(ctx, query, id, ownerID), "get category")
}

func (r *PgCategoryRepository) Create(ctx context.Context, ownerID int64, name string) (domain.Category, error) {
	const query = `
		INSERT INTO categories (user_id, name)
		VALUES ($1, $2)
		RETURNING id, user_id, name, created_at, updated_at
	`
	return r.one(r.db.QueryRow(ctx, query, ownerID, name), "create category")
}

func (r *PgCategoryRepository) Update(ctx context.Context, ownerID, id int64, name string) (domain.Category, error) {
	const query = `
		UPDATE categories
		SET name = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, created_at, updated_at
	`
	return r.one(r.db.QueryRow(ctx, query, id, ownerID, name), "update category")
}

func (r *PgCategoryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	const query = `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgCategoryRepository) one(row pgx.Row, op string) (domain.Category, error) {
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, ErrNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
