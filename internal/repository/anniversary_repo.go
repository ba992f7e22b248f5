package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"anniversary-api/internal/domain"
)

// AnniversaryInput agrupa los campos editables de un aniversario.
type AnniversaryInput struct {
	CategoryID  int64
	Name        string
	Date        time.Time
	Description *string
}

// AnniversaryRepository expone solo operaciones acotadas al dueño.
type AnniversaryRepository interface {
	List(ctx context.Context, ownerID int64) ([]domain.Anniversary, error)
	Get(ctx context.Context, ownerID, id int64) (domain.Anniversary, error)
	Create(ctx context.Context, ownerID int64, in AnniversaryInput) (domain.Anniversary, error)
	Update(ctx context.Context, ownerID, id int64, in AnniversaryInput) (domain.Anniversary, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type PgAnniversaryRepository struct {
	db DBTX
}

func NewPgAnniversaryRepository(db DBTX) *PgAnniversaryRepository {
	return &PgAnniversaryRepository{db: db}
}

const anniversaryWithCategory = `
	SELECT a.id, a.user_id, a.category_id, a.name, a.date, a.description, a.created_at, a.updated_at,
	       c.id, c.user_id, c.name, c.created_at, c.updated_at
	FROM anniversaries a
	JOIN categories c ON c.id = a.category_id AND c.user_id = a.user_id
`

func (r *PgAnniversaryRepository) List(ctx context.Context, ownerID int64) ([]domain.Anniversary, error) {
	const query = anniversaryWithCategory + `
	WHERE a.user_id = $1
	ORDER BY a.date, a.id
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list anniversaries: %w", err)
	}
	defer rows.Close()

	anniversaries := make([]domain.Anniversary, 0)
	for rows.Next() {
		a, err := scanAnniversaryWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan anniversary: %w", err)
		}
		anniversaries = append(anniversaries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list anniversaries: %w", err)
	}
	return anniversaries, nil
}

func (r *PgAnniversaryRepository) Get(ctx context.Context, ownerID, id int64) (domain.Anniversary, error) {
	const query = anniversaryWithCategory + `
	WHERE a.id = $1 AND a.user_id = $2
	`
	a, err := scanAnniversaryWithCategory(r.db.QueryRow(ctx, query, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Anniversary{}, ErrNotFound
	}
	if err != nil {
		return domain.Anniversary{}, fmt.Errorf("get anniversary: %w", err)
	}
	return a, nil
}

// Create solo inserta si la categoria pertenece al mismo dueño.
func (r *PgAnniversaryRepository) Create(ctx context.Context, ownerID int64, in AnniversaryInput) (domain.Anniversary, error) {
	const query = `
		INSERT INTO anniversaries (user_id, category_id, name, date, description)
		SELECT $1::bigint, c.id, $3::text, $4::timestamptz, $5::text
		FROM categories c
		WHERE c.id = $2 AND c.user_id = $1
		RETURNING id, user_id, category_id, name, date, description, created_at, updated_at
	`
	a, err := scanAnniversary(r.db.QueryRow(ctx, query, ownerID, in.CategoryID, in.Name, in.Date, in.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Anniversary{}, ErrCategoryNotFound
	}
	if err != nil {
		return domain.Anniversary{}, fmt.Errorf("create anniversary: %w", err)
	}
	return a, nil
}

func (r *PgAnniversaryRepository) Update(ctx context.Context, ownerID, id int64, in AnniversaryInput) (domain.Anniversary, error) {
	const query = `
		UPDATE anniversaries
		SET category_id = $3, name = $4, date = $5, description = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		  AND EXISTS (SELECT 1 FROM categories c WHERE c.id = $3 AND c.user_id = $2)
		RETURNING id, user_id, category_id, name, date, description, created_at, updated_at
	`
	a, err := scanAnniversary(r.db.QueryRow(ctx, query, id, ownerID, in.CategoryID, in.Name, in.Date, in.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		// Sin filas: o el aniversario no es del dueño, o la categoria no lo es.
		if _, getErr := r.Get(ctx, ownerID, id); getErr != nil {
			return domain.Anniversary{}, getErr
		}
		return domain.Anniversary{}, ErrCategoryNotFound
	}
	if err != nil {
		return domain.Anniversary{}, fmt.Errorf("update anniversary: %w", err)
	}
	return a, nil
}

func (r *PgAnniversaryRepository) Delete(ctx context.Context, ownerID, id int64) error {
	const query = `DELETE FROM anniversaries WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete anniversary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnniversary(row pgx.Row) (domain.Anniversary, error) {
	var a domain.Anniversary
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CategoryID,
		&a.Name,
		&a.Date,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func scanAnniversaryWithCategory(row pgx.Row) (domain.Anniversary, error) {
	var (
		a domain.Anniversary
		c domain.Category
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CategoryID,
		&a.Name,
		&a.Date,
		&a.Description,
		&a.CreatedAt,
		&a.UpdatedAt,
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Anniversary{}, err
	}
	a.Category = &c
	return a, nil
}
