package repository

import (
	"context"
	"strconv"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inkwell/blog-backend/internal/blog/domain"
	"github.com/inkwell/blog-backend/internal/common/db"
)

type PostFilter struct {
	AuthorID      string
	CategoryID    string
	TagID         string
	OnlyPublished bool
	Limit         int
	Offset        int
}

type PostRepository interface {
	Create(ctx context.Context, post domain.Post, tagIDs []string) error
	FindByID(ctx context.Context, id string) (domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]domain.Post, error)
	Update(ctx context.Context, post domain.Post, tagIDs []string) error
	Delete(ctx context.Context, id string) error
}

var ErrPostNotFound = pgx.ErrNoRows

type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

const postColumns = `id, author_id, COALESCE(category_id::text, ''), title, content, is_published, created_at, updated_at`

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post, tagIDs []string) error {
	start := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.HandleExecError(err, "create post", start)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(
		ctx,
		`INSERT INTO posts (id, author_id, category_id, title, content, is_published, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8)`,
		post.ID,
		post.AuthorID,
		post.CategoryID,
		post.Title,
		post.Content,
		post.IsPublished,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return db.HandleExecError(err, "create post", start)
	}

	if err := replaceTags(ctx, tx, post.ID, tagIDs); err != nil {
		return db.HandleExecError(err, "create post", start)
	}

	if err := tx.Commit(ctx); err != nil {
		return db.HandleExecError(err, "create post", start)
	}
	db.MeasureQueryDuration("create post", start)
	return nil
}

func (r *PgPostRepository) FindByID(ctx context.Context, id string) (domain.Post, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = $1`,
		id,
	)

	post, err := scanPost(row)
	if err := db.HandleQueryError(err, ErrPostNotFound, "find post", start); err != nil {
		return domain.Post{}, err
	}

	tags, err := r.tagsForPost(ctx, id)
	if err != nil {
		return domain.Post{}, db.HandleQueryError(err, nil, "find post tags", start)
	}
	post.Tags = tags
	return post, nil
}

func (r *PgPostRepository) List(ctx context.Context, filter PostFilter) ([]domain.Post, error) {
	start := time.Now()

	query := `SELECT ` + postColumns + ` FROM posts WHERE 1=1`
	args := []interface{}{}

	if filter.OnlyPublished {
		query += ` AND is_published = TRUE`
	}
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		query += ` AND author_id = $` + strconv.Itoa(len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args)) + `::uuid`
	}
	if filter.TagID != "" {
		args = append(args, filter.TagID)
		query += ` AND id IN (SELECT post_id FROM post_tags WHERE tag_id = $` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY created_at DESC`

	args = append(args, filter.Limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list posts", start)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "list posts", start)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list posts", start)
	}

	for i := range posts {
		tags, err := r.tagsForPost(ctx, posts[i].ID)
		if err != nil {
			return nil, db.HandleQueryError(err, nil, "list post tags", start)
		}
		posts[i].Tags = tags
	}

	db.MeasureQueryDuration("list posts", start)
	return posts, nil
}

func (r *PgPostRepository) Update(ctx context.Context, post domain.Post, tagIDs []string) error {
	start := time.Now()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return db.HandleExecError(err, "update post", start)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(
		ctx,
		`UPDATE posts
		 SET category_id = NULLIF($2, '')::uuid, title = $3, content = $4, is_published = $5, updated_at = $6
		 WHERE id = $1`,
		post.ID,
		post.CategoryID,
		post.Title,
		post.Content,
		post.IsPublished,
		post.UpdatedAt,
	)
	if err != nil {
		return db.HandleExecError(err, "update post", start)
	}
	if res.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	if err := replaceTags(ctx, tx, post.ID, tagIDs); err != nil {
		return db.HandleExecError(err, "update post", start)
	}

	if err := tx.Commit(ctx); err != nil {
		return db.HandleExecError(err, "update post", start)
	}
	db.MeasureQueryDuration("update post", start)
	return nil
}

func (r *PgPostRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return db.HandleExecError(err, "delete post", start)
	}
	db.MeasureQueryDuration("delete post", start)
	if res.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PgPostRepository) tagsForPost(ctx context.Context, postID string) ([]domain.Tag, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT t.id, t.name
		 FROM tags t
		 JOIN post_tags pt ON pt.tag_id = t.id
		 WHERE pt.post_id = $1
		 ORDER BY t.name`,
		postID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func replaceTags(ctx context.Context, tx pgx.Tx, postID string, tagIDs []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			postID,
			tagID,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.CategoryID,
		&post.Title,
		&post.Content,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	return post, err
}

