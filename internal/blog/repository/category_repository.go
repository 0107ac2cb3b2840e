package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/common/db"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
)

type CategoryRepository interface {
	Create(ctx context.Context, category domain.Category) error
	FindByID(ctx context.Context, id string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

var ErrCategoryNotFound = pgx.ErrNoRows

type PgCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgCategoryRepository(pool *pgxpool.Pool) *PgCategoryRepository {
	return &PgCategoryRepository{pool: pool}
}

func (r *PgCategoryRepository) Create(ctx context.Context, category domain.Category) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO categories (id, name, description)
		 VALUES ($1, $2, NULLIF($3, ''))`,
		category.ID,
		category.Name,
		category.Description,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return commonerrors.ErrCategoryAlreadyExists
		}
		return db.HandleExecError(err, "create category", start)
	}
	db.MeasureQueryDuration("create category", start)
	return nil
}

func (r *PgCategoryRepository) FindByID(ctx context.Context, id string) (domain.Category, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE id = $1`,
		id,
	)

	var category domain.Category
	err := row.Scan(&category.ID, &category.Name, &category.Description)
	if err := db.HandleQueryError(err, ErrCategoryNotFound, "find category", start); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (r *PgCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list categories", start)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, db.HandleQueryError(err, nil, "list categories", start)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list categories", start)
	}
	db.MeasureQueryDuration("list categories", start)
	return categories, nil
}
