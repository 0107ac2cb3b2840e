package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inkwell/blog-backend/internal/common/db"
	commonerrors "github.com/inkwell/blog-backend/internal/common/errors"
	"github.com/inkwell/blog-backend/internal/user/domain"
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Delete(ctx context.Context, id domain.ID) error
}

var ErrUserNotFound = pgx.ErrNoRows

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, role, COALESCE(full_name, ''), COALESCE(bio, ''), created_at`

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO users (id, username, email, password_hash, role, full_name, bio, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`,
		string(user.ID),
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.FullName,
		user.Bio,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_email_key" {
				return commonerrors.ErrEmailAlreadyExists
			}
			return commonerrors.ErrUsernameAlreadyExists
		}
		return db.HandleExecError(err, "create user", start)
	}
	db.MeasureQueryDuration("create user", start)
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		string(id),
	)
	return scanUser(row, "find user by id", start)
}

// FindByIdentifier matches either the username or the email in one query, so
// login does not reveal which of the two existed.
func (r *PgRepository) FindByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		identifier,
	)
	return scanUser(row, "find user by identifier", start)
}

func (r *PgRepository) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list users", start)
	}
	defer rows.Close()

	users := make([]domain.User, 0, limit)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.FullName,
			&user.Bio,
			&user.CreatedAt,
		); err != nil {
			return nil, db.HandleQueryError(err, nil, "list users", start)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, db.HandleQueryError(err, nil, "list users", start)
	}
	db.MeasureQueryDuration("list users", start)
	return users, nil
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM users WHERE id = $1`,
		string(id),
	)
	if err != nil {
		return db.HandleExecError(err, "delete user", start)
	}
	db.MeasureQueryDuration("delete user", start)
	if res.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row, operation string, start time.Time) (domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.FullName,
		&user.Bio,
		&user.CreatedAt,
	)
	if err := db.HandleQueryError(err, ErrUserNotFound, operation, start); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
