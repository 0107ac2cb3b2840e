package repository

import (
	"context"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/common/db"
)

type CommentRepository interface {
	Create(ctx context.Context, comment domain.Comment) error
	FindByID(ctx context.Context, id string) (domain.Comment, error)
	ListByPostID(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error)
	Update(ctx context.Context, comment domain.Comment) error
	Delete(ctx context.Context, id string) error
}

var ErrCommentNotFound = pgx.ErrNoRows

type PgCommentRepository struct {
	pool *pgxpool.Pool
}

func NewPgCommentRepository(pool *pgxpool.Pool) *PgCommentRepository {
	return &PgCommentRepository{pool: pool}
}

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

func (r *PgCommentRepository) Create(ctx context.Context, comment domain.Comment) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	return db.HandleExecError(err, "create comment", start)
}

func (r *PgCommentRepository) FindByID(ctx context.Context, id string) (domain.Comment, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`,
		id,
	)

	comment, err := scanComment(row)
	if err := db.HandleQueryError(err, ErrCommentNotFound, "find comment", start); err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

func (r *PgCommentRepository) ListByPostID(ctx context.Context, postID string, limit, offset int) ([]domain.Comment, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+commentColumns+`
		 FROM comments
		 WHERE post_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`,
		postID,
		limit,
		offset,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list comments", start)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "list comments", start)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list comments", start)
	}
	db.MeasureQueryDuration("list comments", start)
	return comments, nil
}

func (r *PgCommentRepository) Update(ctx context.Context, comment domain.Comment) error {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1`,
		comment.ID,
		comment.Content,
		comment.UpdatedAt,
	)
	if err != nil {
		return db.HandleExecError(err, "update comment", start)
	}
	db.MeasureQueryDuration("update comment", start)
	if res.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (r *PgCommentRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return db.HandleExecError(err, "delete comment", start)
	}
	db.MeasureQueryDuration("delete comment", start)
	if res.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func scanComment(row pgx.Row) (domain.Comment, error) {
	var comment domain.Comment
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	return comment, err
}
