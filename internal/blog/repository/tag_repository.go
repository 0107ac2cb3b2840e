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

type TagRepository interface {
	Create(ctx context.Context, tag domain.Tag) error
	FindByIDs(ctx context.Context, ids []string) ([]domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

var ErrTagNotFound = pgx.ErrNoRows

type PgTagRepository struct {
	pool *pgxpool.Pool
}

func NewPgTagRepository(pool *pgxpool.Pool) *PgTagRepository {
	return &PgTagRepository{pool: pool}
}

func (r *PgTagRepository) Create(ctx context.Context, tag domain.Tag) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO tags (id, name) VALUES ($1, $2)`,
		tag.ID,
		tag.Name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return commonerrors.ErrTagAlreadyExists
		}
		return db.HandleExecError(err, "create tag", start)
	}
	db.MeasureQueryDuration("create tag", start)
	return nil
}

func (r *PgTagRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}

	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, name FROM tags WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "find tags", start)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, db.HandleQueryError(err, nil, "find tags", start)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "find tags", start)
	}
	db.MeasureQueryDuration("find tags", start)
	return tags, nil
}

func (r *PgTagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	start := time.Now()
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list tags", start)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, db.HandleQueryError(err, nil, "list tags", start)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list tags", start)
	}
	db.MeasureQueryDuration("list tags", start)
	return tags, nil
}
